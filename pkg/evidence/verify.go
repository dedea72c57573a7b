package evidence

import (
	"fmt"

	"github.com/sentinelworks/helix-ledger/pkg/cryptoutil"
)

// Verification is the dual-path result for a single record. The two paths
// are independent: a record can pass one and fail the other.
type Verification struct {
	ContentValid   bool `json:"content_valid"`
	StructureValid bool `json:"structure_valid"`
	FullyVerified  bool `json:"fully_verified"`
}

// ChainResult is the simple whole-chain verdict.
type ChainResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// IntegrityReport is the detailed whole-chain diagnosis. ContentChainValid
// and StructureChainValid are independent so callers can tell "payload was
// edited" apart from "records were reordered or spliced". BrokenAt is the
// canonical index of the first detected problem, nil when the chain is
// intact.
type IntegrityReport struct {
	Length              int      `json:"length"`
	Valid               bool     `json:"valid"`
	ContentChainValid   bool     `json:"content_chain_valid"`
	StructureChainValid bool     `json:"structure_chain_valid"`
	BrokenAt            *int     `json:"broken_at,omitempty"`
	Issues              []string `json:"issues"`
}

// VerifyRecord recomputes both hashes from the record's own fields and
// reports each chain's verdict independently. Comparisons are constant-time.
func VerifyRecord(r Record, key string) Verification {
	expectedHash := hashContent(r.ID, r.PreviousHash, r.Timestamp, r.Source, r.EventType, r.Payload, key)
	contentValid := cryptoutil.ConstantTimeEqualHex(expectedHash, r.Hash)

	// The structure path starts from the stored content hash on purpose:
	// a hand-edited VaultPosition must fail here even when the content
	// path still passes.
	expectedPosition := vaultPosition(r.Hash, r.SessionID, r.Timestamp, r.Source, key)
	expectedStructure := hashStructure(r.ID, expectedPosition, r.PreviousStructureHash,
		r.Timestamp, r.Source, r.EventType, key)
	structureValid := expectedPosition == r.VaultPosition &&
		cryptoutil.ConstantTimeEqualHex(expectedStructure, r.StructureHash)

	return Verification{
		ContentValid:   contentValid,
		StructureValid: structureValid,
		FullyVerified:  contentValid && structureValid,
	}
}

// VerifyChain orders the records, verifies every record and every link, and
// returns the flat verdict. Tampering is a result, not an error: the
// function is total over arbitrary input.
func VerifyChain(records []Record, key string) ChainResult {
	findings := inspectChain(records, key)
	errs := make([]string, 0, len(findings))
	for _, f := range findings {
		errs = append(errs, f.message)
	}
	return ChainResult{Valid: len(errs) == 0, Errors: errs}
}

// ChainIntegrity produces the detailed per-chain diagnosis for an unordered
// record set. An empty set is trivially valid.
func ChainIntegrity(records []Record, key string) IntegrityReport {
	findings := inspectChain(records, key)

	report := IntegrityReport{
		Length:              len(records),
		Valid:               len(findings) == 0,
		ContentChainValid:   true,
		StructureChainValid: true,
		Issues:              make([]string, 0, len(findings)),
	}

	for _, f := range findings {
		report.Issues = append(report.Issues, f.message)
		if f.content {
			report.ContentChainValid = false
		} else {
			report.StructureChainValid = false
		}
		if report.BrokenAt == nil || f.index < *report.BrokenAt {
			idx := f.index
			report.BrokenAt = &idx
		}
	}
	return report
}

// finding is one localized problem: which canonical index, which chain.
type finding struct {
	index   int
	content bool // true for the content chain, false for the structure chain
	message string
}

func inspectChain(records []Record, key string) []finding {
	if len(records) == 0 {
		return nil
	}

	ordered := OrderRecords(records)
	var findings []finding

	if ordered[0].PreviousHash != "" {
		findings = append(findings, finding{0, true,
			fmt.Sprintf("record 0 (%s): no genesis — previous hash is set", ordered[0].ID)})
	}
	if ordered[0].PreviousStructureHash != "" {
		findings = append(findings, finding{0, false,
			fmt.Sprintf("record 0 (%s): no genesis — previous structure hash is set", ordered[0].ID)})
	}

	for i, r := range ordered {
		v := VerifyRecord(r, key)
		if !v.ContentValid {
			findings = append(findings, finding{i, true,
				fmt.Sprintf("record %d (%s): content hash mismatch", i, r.ID)})
		}
		if !v.StructureValid {
			findings = append(findings, finding{i, false,
				fmt.Sprintf("record %d (%s): structure hash mismatch", i, r.ID)})
		}

		if i == 0 {
			continue
		}
		prev := ordered[i-1]
		if r.PreviousHash != prev.Hash {
			findings = append(findings, finding{i, true,
				fmt.Sprintf("record %d (%s): content chain link broken", i, r.ID)})
		}
		if r.PreviousStructureHash != prev.StructureHash {
			findings = append(findings, finding{i, false,
				fmt.Sprintf("record %d (%s): structure chain link broken", i, r.ID)})
		}
	}
	return findings
}
