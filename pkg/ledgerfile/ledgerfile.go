// Package ledgerfile reads and writes ledger files — portable JSON
// envelopes holding one session's evidence records. Persistence is a caller
// concern; this is the caller-side format the CLI and exporters share.
package ledgerfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sentinelworks/helix-ledger/pkg/evidence"
)

// Version is stamped into every written file.
const Version = "1.0.0"

// File is the on-disk envelope.
type File struct {
	Version   string            `json:"version"`
	SessionID string            `json:"session_id"`
	Records   []evidence.Record `json:"records"`
}

// Write persists a record set as <session_id>.ledger.json under dir and
// returns the path.
func Write(dir, sessionID string, records []evidence.Record) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("ledgerfile: create dir: %w", err)
	}

	f := File{Version: Version, SessionID: sessionID, Records: records}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ledgerfile: marshal: %w", err)
	}

	path := filepath.Join(dir, sessionID+".ledger.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("ledgerfile: write %s: %w", path, err)
	}
	return path, nil
}

// Load reads a ledger file from a path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("ledgerfile: read %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("ledgerfile: parse %s: %w", path, err)
	}
	return f, nil
}
