package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/curator/core"
)

// Key prefixes for different data types
const (
	documentPrefix      = "docrec"
	documentOrderPrefix = "docord"
	documentHashPrefix  = "dochash"
	checkpointSuffix    = "chkpt"
)

// makeDocumentKey generates a key for a document by id.
// Format: prefix:id
func makeDocumentKey(id string) []byte {
	return []byte(documentPrefix + ":" + id)
}

// makeDocumentOrderKey generates a composite key for the insertion-order index.
// Format: prefix:createdAt:id
func makeDocumentOrderKey(createdAt time.Time, id string) []byte {
	prefix := []byte(documentOrderPrefix + ":")
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makeDocumentHashKey generates a key for the content-fingerprint index.
// Format: prefix:hash
func makeDocumentHashKey(hash core.ID) []byte {
	prefix := []byte(documentHashPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(hash))
	return buf
}

// makeCheckpointKey generates a key for job checkpoints.
func makeCheckpointKey(name string) []byte {
	return []byte(name + ":" + checkpointSuffix)
}
