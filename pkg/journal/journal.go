package journal

import (
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/snapfs/snapfs/pkg/object"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the
// same record always serializes to identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("journal: CBOR encoder initialization failed: " + err.Error())
	}
}

// ChangeRecord describes one observable working-copy mutation.
type ChangeRecord struct {
	ChangedPaths []object.RelativePath `cbor:"changed,omitempty"`
	RemovedPaths []object.RelativePath `cbor:"removed,omitempty"`
	FromCommit   object.Hash           `cbor:"from"`
	ToCommit     object.Hash           `cbor:"to"`
	Time         time.Time             `cbor:"time"`
}

// SequencedRecord is a ChangeRecord with its assigned sequence number.
type SequencedRecord struct {
	Seq    uint64       `cbor:"seq"`
	Record ChangeRecord `cbor:"record"`
}

// Journal is the monotonic log of working-copy changes. Every append
// is assigned the next sequence number, starting at 1; status caching
// uses these numbers to detect staleness.
//
// The journal keeps at most limit records in memory, discarding the
// oldest. Sequence numbers keep growing regardless.
type Journal struct {
	mu      sync.Mutex
	limit   int
	records []SequencedRecord
	latest  uint64
}

// New creates a Journal retaining up to limit records; limit <= 0
// means unbounded.
func New(limit int) *Journal {
	return &Journal{limit: limit}
}

// Append assigns the next sequence number to rec and stores it.
func (j *Journal) Append(rec ChangeRecord) uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.latest++
	j.records = append(j.records, SequencedRecord{Seq: j.latest, Record: rec})
	if j.limit > 0 && len(j.records) > j.limit {
		drop := len(j.records) - j.limit
		j.records = append(j.records[:0:0], j.records[drop:]...)
	}
	return j.latest
}

// Latest returns the most recently assigned sequence number, or 0
// when nothing has been appended.
func (j *Journal) Latest() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.latest
}

// Since returns all retained records with a sequence greater than seq,
// oldest first.
func (j *Journal) Since(seq uint64) []SequencedRecord {
	j.mu.Lock()
	defer j.mu.Unlock()

	idx := len(j.records)
	for i, r := range j.records {
		if r.Seq > seq {
			idx = i
			break
		}
	}
	out := make([]SequencedRecord, len(j.records)-idx)
	copy(out, j.records[idx:])
	return out
}

// Marshal serializes records to deterministic CBOR.
func Marshal(records []SequencedRecord) ([]byte, error) {
	data, err := encMode.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("journal marshal: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes records produced by Marshal.
func Unmarshal(data []byte) ([]SequencedRecord, error) {
	var records []SequencedRecord
	if err := cbor.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("journal unmarshal: %w", err)
	}
	return records, nil
}
