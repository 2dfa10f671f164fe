package curation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/mock"
	"github.com/poiesic/curator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingGenerator parks dialogue turns and summaries until released.
func blockingGenerator(t *testing.T) (gen *mock.MockGenerator, started <-chan struct{}, release func()) {
	t.Helper()
	startedCh := make(chan struct{}, 8)
	releaseCh := make(chan struct{})
	var once sync.Once
	release = func() { once.Do(func() { close(releaseCh) }) }
	t.Cleanup(release)

	gen = mock.NewMockGenerator()
	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
		startedCh <- struct{}{}
		<-releaseCh
		return &ai.DialogueReply{Reply: "ok"}, nil
	}
	gen.SummarizeFunc = func(ctx context.Context, text, sourceLabel string) (string, error) {
		startedCh <- struct{}{}
		<-releaseCh
		return "summary", nil
	}
	return gen, startedCh, release
}

func TestSessionBusy(t *testing.T) {
	ctx := context.Background()
	gen, started, release := blockingGenerator(t)
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := discussing(t, o)

	done := make(chan error, 1)
	go func() {
		_, err := o.SendMessage(ctx, id, "slow message")
		done <- err
	}()
	<-started

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.True(t, snap.Busy)

	_, err = o.SendMessage(ctx, id, "second message")
	assert.ErrorIs(t, err, ErrSessionBusy)
	assert.Equal(t, KindSessionBusy, KindOf(err))
	_, err = o.ConfirmPoint(ctx, id, 0)
	assert.ErrorIs(t, err, ErrSessionBusy)
	_, err = o.ResetSession(ctx, id)
	assert.ErrorIs(t, err, ErrSessionBusy)

	release()
	require.NoError(t, <-done)

	snap, err = o.Snapshot(id)
	require.NoError(t, err)
	assert.False(t, snap.Busy)
	assert.Equal(t, 2, snap.HistoryLength)
	assert.Equal(t, "slow message", snap.HistoryTail[0].Text)
}

func TestSummarize_TransformingWhileInFlight(t *testing.T) {
	ctx := context.Background()
	gen, started, release := blockingGenerator(t)
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := uploaded(t, o)

	done := make(chan error, 1)
	go func() {
		_, err := o.Summarize(ctx, id)
		done <- err
	}()
	<-started

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, core.StageTransforming, snap.Stage)
	assert.True(t, snap.Busy)

	_, err = o.Approve(ctx, id, "anything")
	assert.ErrorIs(t, err, ErrSessionBusy)

	release()
	require.NoError(t, <-done)

	snap, err = o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, core.StageAwaitingApproval, snap.Stage)
}

func TestGenerationTimeout(t *testing.T) {
	ctx := context.Background()
	gen, _, _ := blockingGenerator(t)
	o := newTestOrchestrator(t, gen, &storeStub{}, WithGenerationTimeout(50*time.Millisecond))
	id := discussing(t, o)

	start := time.Now()
	_, err := o.SendMessage(ctx, id, "never answered")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.False(t, snap.Busy)
	assert.Equal(t, core.StageTopicActive, snap.Stage)
	assert.Zero(t, snap.HistoryLength)
}

func TestWorkersSaturated(t *testing.T) {
	ctx := context.Background()
	gen, started, release := blockingGenerator(t)
	o := newTestOrchestrator(t, gen, &storeStub{}, WithWorkers(1))
	first := discussing(t, o)
	second := discussing(t, o)

	done := make(chan error, 1)
	go func() {
		_, err := o.SendMessage(ctx, first, "occupies the only worker")
		done <- err
	}()
	<-started

	_, err := o.SendMessage(ctx, second, "no worker left")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.True(t, errors.Is(err, errWorkersSaturated))

	release()
	require.NoError(t, <-done)
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	ids := make([]string, 8)
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{}, WithWorkers(len(ids)*2))

	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := o.StartTopic(ctx, "", "topic", "")
			if !assert.NoError(t, err) {
				return
			}
			ids[i] = snap.SessionID
			for j := 0; j < 3; j++ {
				_, err := o.SendMessage(ctx, snap.SessionID, "claim")
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(ids), o.SessionCount())
	for _, id := range ids {
		snap, err := o.Snapshot(id)
		require.NoError(t, err)
		assert.Len(t, snap.ConsensusPoints, 3)
		assert.Equal(t, 6, snap.HistoryLength)
	}
}

func TestSessionExpiry(t *testing.T) {
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{}, WithSessionTTL(40*time.Millisecond))
	id := discussing(t, o)

	_, err := o.Snapshot(id)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	_, err = o.Snapshot(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseSession(t *testing.T) {
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})
	id := discussing(t, o)
	assert.Equal(t, 1, o.SessionCount())

	require.NoError(t, o.CloseSession(id))
	assert.Zero(t, o.SessionCount())

	_, err := o.SendMessage(context.Background(), id, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunner_RecoversPanics(t *testing.T) {
	ctx := context.Background()
	gen := mock.NewMockGenerator()
	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
		panic("generator exploded")
	}
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := discussing(t, o)

	_, err := o.SendMessage(ctx, id, "hello")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "generator exploded")

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.False(t, snap.Busy)
}
