// Package reembed re-embeds every stored knowledge document with a new or
// updated embedding model.
//
// Documents are processed in insertion order and in batches. Embedding calls
// are retried with exponential backoff, progress is reported to a writer, and
// when a checkpoint repository is supplied an interrupted run can resume after
// the last completed batch.
package reembed
