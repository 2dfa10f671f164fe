package curation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_JSONShape(t *testing.T) {
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})
	id := discussing(t, o, "Fat is the primary fuel in ketosis")

	snap, err := o.Snapshot(id)
	require.NoError(t, err)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{
		"sessionId", "pipeline", "stage", "topic", "historyLength", "historyTail",
		"consensusPoints", "confirmedCount", "canGenerateArticle", "hasDraft", "busy",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "discussing", decoded["stage"])
	assert.NotContains(t, decoded, "documentId")

	points := decoded["consensusPoints"].([]any)
	require.Len(t, points, 1)
	point := points[0].(map[string]any)
	assert.Equal(t, "strong", point["evidenceLevel"])
	assert.Equal(t, false, point["confirmed"])
}

func TestSnapshot_IsACopy(t *testing.T) {
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})
	id := discussing(t, o, "claim")

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	snap.ConsensusPoints[0].Confirmed = true
	snap.HistoryTail[0].Text = "changed"

	fresh, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.False(t, fresh.ConsensusPoints[0].Confirmed)
	assert.Equal(t, "claim", fresh.HistoryTail[0].Text)
}
