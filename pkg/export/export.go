// Package export produces signed certificate packages: self-contained JSON
// documents bundling an ordered record set, its integrity diagnosis, and the
// two signature-chain fingerprints, attested with an HMAC so the receiving
// side can detect a tampered export.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sentinelworks/helix-ledger/pkg/cryptoutil"
	"github.com/sentinelworks/helix-ledger/pkg/evidence"
)

// Package is the exportable certificate document.
type Package struct {
	ExportedAt         time.Time                `json:"exported_at"`
	SessionID          string                   `json:"session_id"`
	Length             int                      `json:"length"`
	Report             evidence.IntegrityReport `json:"report"`
	Records            []evidence.Record        `json:"records"`
	ContentSignature   string                   `json:"content_signature"`
	StructureSignature string                   `json:"structure_signature"`
	TimeRange          TimeRange                `json:"time_range"`
	Attestation        string                   `json:"attestation"` // HMAC of package contents
}

// TimeRange captures the earliest and latest record timestamps in canonical
// order.
type TimeRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// Generate orders the records, runs the integrity reporter, computes both
// chain fingerprints over the canonical order, and signs the whole package.
// A broken chain still exports — the report says so; refusing to export
// tampered evidence would defeat the point. An error means the package could
// not be serialized for signing, not that the chain is invalid.
func Generate(records []evidence.Record, sessionID, key string) (*Package, error) {
	ordered := evidence.OrderRecords(records)
	report := evidence.ChainIntegrity(ordered, key)

	tr := TimeRange{}
	if len(ordered) > 0 {
		tr.Earliest = ordered[0].Timestamp
		tr.Latest = ordered[len(ordered)-1].Timestamp
	}

	pkg := &Package{
		ExportedAt:         time.Now().UTC(),
		SessionID:          sessionID,
		Length:             len(ordered),
		Report:             report,
		Records:            ordered,
		ContentSignature:   evidence.SignatureChain(ordered, key),
		StructureSignature: evidence.StructureSignatureChain(ordered, key),
		TimeRange:          tr,
	}

	// Sign with the attestation field empty.
	att, err := sign(pkg, key)
	if err != nil {
		return nil, fmt.Errorf("export: sign package: %w", err)
	}
	pkg.Attestation = att
	return pkg, nil
}

// VerifyAttestation checks that a package's attestation matches its
// contents. Returns false if anything in the document changed after signing,
// including a package that can no longer be serialized.
func VerifyAttestation(pkg *Package, key string) bool {
	saved := pkg.Attestation
	pkg.Attestation = ""
	expected, err := sign(pkg, key)
	pkg.Attestation = saved
	if err != nil {
		return false
	}
	return cryptoutil.ConstantTimeEqualHex(saved, expected)
}

func sign(pkg *Package, key string) (string, error) {
	data, err := json.Marshal(pkg)
	if err != nil {
		return "", err
	}
	return cryptoutil.HMACHex(string(data), key), nil
}
