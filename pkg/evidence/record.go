// Package evidence implements the dual-chain tamper-evident record ledger:
// every record carries two independent keyed hashes — a content hash over
// what happened and a structure hash over where it sits in the session —
// each chained to its predecessor, so edits, reorders, and splices are
// detectable on either chain independently.
package evidence

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Source identifies which monitoring adapter produced a record.
type Source string

const (
	SourceProcess Source = "process"
	SourceWindow  Source = "window"
	SourceInput   Source = "input"
	SourceNetwork Source = "network"
	SourceScore   Source = "score"
	SourceSystem  Source = "system"
)

// Record is one immutable link in the evidence ledger. No field is mutated
// after construction by ledger code; any observed change is tampering by
// definition. PreviousHash and PreviousStructureHash are empty on the
// genesis record.
type Record struct {
	ID                    string          `json:"id"`
	Hash                  string          `json:"hash"`
	PreviousHash          string          `json:"previous_hash"`
	StructureHash         string          `json:"structure_hash"`
	PreviousStructureHash string          `json:"previous_structure_hash"`
	VaultPosition         uint32          `json:"vault_position"`
	Timestamp             string          `json:"timestamp"` // RFC 3339, nanosecond precision, UTC
	SessionID             string          `json:"session_id"`
	Source                Source          `json:"source"`
	EventType             string          `json:"event_type"`
	Payload               json.RawMessage `json:"payload"`
	Verified              bool            `json:"verified"` // always false at creation; computed on demand
}

// NewRecord builds a fully linked record: it generates the identifier and
// timestamp, computes the content hash, derives the vault position from it,
// and computes the structure hash. The caller threads through the previous
// record's two hashes (empty strings for genesis); no lookups happen here.
// The payload is an opaque serialized blob — hashed, never parsed.
func NewRecord(source Source, eventType string, payload json.RawMessage,
	previousHash, previousStructureHash, sessionID, key string) Record {

	id := uuid.New().String()
	ts := time.Now().UTC().Format(time.RFC3339Nano)

	hash := hashContent(id, previousHash, ts, source, eventType, payload, key)
	position := vaultPosition(hash, sessionID, ts, source, key)
	structureHash := hashStructure(id, position, previousStructureHash, ts, source, eventType, key)

	return Record{
		ID:                    id,
		Hash:                  hash,
		PreviousHash:          previousHash,
		StructureHash:         structureHash,
		PreviousStructureHash: previousStructureHash,
		VaultPosition:         position,
		Timestamp:             ts,
		SessionID:             sessionID,
		Source:                source,
		EventType:             eventType,
		Payload:               payload,
		Verified:              false,
	}
}
