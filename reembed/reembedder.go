// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
)

// CheckpointName identifies the re-embedding job's checkpoint.
const CheckpointName = "reembed"

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Model names the embedding model. A checkpoint is only resumed when it
	// was written for the same model.
	Model string

	// Resume continues from the last checkpoint instead of starting over.
	Resume bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Resume:         true,
	}
}

// Reembedder re-embeds every document in a repository.
type Reembedder struct {
	repo        storage.DocumentRepository
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *DocumentIterator
	logger      *slog.Logger
}

// NewReembedder creates a new reembedder.
// checkpoints may be nil, in which case every run starts from the beginning.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.DocumentRepository, checkpoints storage.CheckpointRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		repo:        repo,
		checkpoints: checkpoints,
		config:      config,
		progress:    progress,
		processor:   NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:    NewDocumentIterator(repo, config.BatchSize),
		logger:      slog.Default().With("component", "reembed"),
	}
}

// Run re-embeds all documents. After each batch the position is saved to the
// checkpoint repository; a completed run removes the checkpoint.
func (r *Reembedder) Run(ctx context.Context) error {
	total, err := r.repo.CountDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found in knowledge base (0 documents)\n")
		return nil
	}

	afterID, processed, err := r.resumePoint(ctx)
	if err != nil {
		return err
	}
	if afterID != "" {
		fmt.Fprintf(r.progress, "Resuming after %s (%d documents already processed)\n", afterID, processed)
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d)\n",
		total, r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start(processed)

	err = r.iterator.ForEach(ctx, afterID, func(docs []*core.KnowledgeDocument) error {
		if err := r.processor.Process(ctx, docs); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(docs)
		tracker.Update(processed)
		return r.saveCheckpoint(ctx, docs[len(docs)-1].ID, processed)
	})
	if err != nil {
		return err
	}

	tracker.Finish()
	if r.checkpoints != nil {
		if err := r.checkpoints.DeleteCheckpoint(ctx, CheckpointName); err != nil {
			r.logger.Warn("failed to remove checkpoint", "err", err)
		}
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d documents in %v\n",
		processed, elapsed.Round(time.Millisecond))
	return nil
}

// resumePoint returns where a previous run stopped, or "" to start over.
func (r *Reembedder) resumePoint(ctx context.Context) (string, int, error) {
	if r.checkpoints == nil {
		return "", 0, nil
	}
	if !r.config.Resume {
		if err := r.checkpoints.DeleteCheckpoint(ctx, CheckpointName); err != nil {
			return "", 0, fmt.Errorf("failed to clear checkpoint: %w", err)
		}
		return "", 0, nil
	}

	cp, err := r.checkpoints.LoadCheckpoint(ctx, CheckpointName)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if cp == nil || cp.LastDocumentID == "" {
		return "", 0, nil
	}
	if cp.Model != r.config.Model {
		r.logger.Info("ignoring checkpoint for another model", "checkpoint_model", cp.Model, "model", r.config.Model)
		return "", 0, nil
	}

	if _, err := r.repo.GetDocument(ctx, cp.LastDocumentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("checkpoint document no longer exists, starting over", "document", cp.LastDocumentID)
			return "", 0, nil
		}
		return "", 0, err
	}
	return cp.LastDocumentID, cp.Processed, nil
}

func (r *Reembedder) saveCheckpoint(ctx context.Context, lastID string, processed int) error {
	if r.checkpoints == nil {
		return nil
	}
	err := r.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		Name:           CheckpointName,
		LastDocumentID: lastID,
		Processed:      processed,
		Model:          r.config.Model,
		UpdatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}
