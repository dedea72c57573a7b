package evidence

import (
	"encoding/json"
	"sync"
)

// Ledger is a convenience container that makes "read the latest hashes,
// append a linked record" atomic. The pure functions in this package do not
// own the record collection; Ledger exists for callers that want the lock
// handled for them.
type Ledger struct {
	mu        sync.Mutex
	sessionID string
	key       string
	records   []Record
}

// NewLedger creates an empty ledger for one session. The same key must be
// used for construction and verification.
func NewLedger(sessionID, key string) *Ledger {
	return &Ledger{sessionID: sessionID, key: key}
}

// Append constructs the next record, threading the previous record's two
// hashes, and returns it.
func (l *Ledger) Append(source Source, eventType string, payload json.RawMessage) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	var prevHash, prevStructureHash string
	if n := len(l.records); n > 0 {
		prevHash = l.records[n-1].Hash
		prevStructureHash = l.records[n-1].StructureHash
	}

	r := NewRecord(source, eventType, payload, prevHash, prevStructureHash, l.sessionID, l.key)
	l.records = append(l.records, r)
	return r
}

// Records returns a copy of all records.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Verify runs the simple chain verifier over the current records.
func (l *Ledger) Verify() ChainResult {
	return VerifyChain(l.Records(), l.key)
}

// Integrity runs the detailed integrity reporter over the current records.
func (l *Ledger) Integrity() IntegrityReport {
	return ChainIntegrity(l.Records(), l.key)
}
