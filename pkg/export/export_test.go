package export

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sentinelworks/helix-ledger/pkg/evidence"
)

const testKey = "certificate-signing-key"

func buildRecords(n int) []evidence.Record {
	ledger := evidence.NewLedger("session-cert", testKey)
	for i := 0; i < n; i++ {
		ledger.Append(evidence.SourceSystem, "snapshot",
			json.RawMessage(fmt.Sprintf(`{"i":%d}`, i)))
	}
	return ledger.Records()
}

func mustGenerate(t *testing.T, records []evidence.Record, sessionID string) *Package {
	t.Helper()
	pkg, err := Generate(records, sessionID, testKey)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return pkg
}

func TestGeneratePackage(t *testing.T) {
	pkg := mustGenerate(t, buildRecords(3), "session-cert")

	if pkg.Length != 3 || len(pkg.Records) != 3 {
		t.Errorf("length = %d records = %d, want 3", pkg.Length, len(pkg.Records))
	}
	if !pkg.Report.Valid {
		t.Errorf("valid chain exported as broken: %v", pkg.Report.Issues)
	}
	if pkg.ContentSignature == "" || pkg.StructureSignature == "" {
		t.Error("signature fingerprints missing")
	}
	if pkg.ContentSignature == pkg.StructureSignature {
		t.Error("fingerprints match — domain separation broken")
	}
	if pkg.Attestation == "" {
		t.Error("attestation missing")
	}
	if pkg.TimeRange.Earliest == "" || pkg.TimeRange.Latest == "" {
		t.Error("time range missing")
	}
}

func TestGenerateOrdersRecords(t *testing.T) {
	records := buildRecords(4)
	shuffled := []evidence.Record{records[2], records[0], records[3], records[1]}

	pkg := mustGenerate(t, shuffled, "session-cert")
	if !pkg.Report.Valid {
		t.Errorf("shuffled input should still export a valid chain: %v", pkg.Report.Issues)
	}
	for i := range records {
		if pkg.Records[i].ID != records[i].ID {
			t.Fatalf("package position %d out of canonical order", i)
		}
	}
}

func TestGenerateBrokenChainStillExports(t *testing.T) {
	records := buildRecords(3)
	records[1].Payload = json.RawMessage(`{"i":99}`)

	pkg := mustGenerate(t, records, "session-cert")
	if pkg.Report.Valid {
		t.Error("tampered chain exported as valid")
	}
	if pkg.Length != 3 {
		t.Error("broken chain should still export all records")
	}
}

func TestGenerateUnserializablePayload(t *testing.T) {
	records := buildRecords(2)
	records[1].Payload = json.RawMessage(`{"i":`) // truncated, fails to marshal

	if _, err := Generate(records, "session-cert", testKey); err == nil {
		t.Error("expected error signing a package that cannot be serialized")
	}
}

func TestVerifyAttestation(t *testing.T) {
	pkg := mustGenerate(t, buildRecords(2), "session-cert")

	if !VerifyAttestation(pkg, testKey) {
		t.Error("attestation should verify with the signing key")
	}
	if VerifyAttestation(pkg, "other-key") {
		t.Error("attestation should fail with the wrong key")
	}
}

func TestVerifyAttestationTamperedPackage(t *testing.T) {
	pkg := mustGenerate(t, buildRecords(2), "session-cert")
	pkg.SessionID = "forged-session"

	if VerifyAttestation(pkg, testKey) {
		t.Error("tampered package passed attestation")
	}
}

func TestPackageJSONRoundTrip(t *testing.T) {
	pkg := mustGenerate(t, buildRecords(2), "session-cert")

	data, err := json.Marshal(pkg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Package
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !VerifyAttestation(&decoded, testKey) {
		t.Error("attestation broke across a JSON round trip")
	}
}

func TestEmptyPackage(t *testing.T) {
	pkg := mustGenerate(t, nil, "session-empty")
	if pkg.Length != 0 {
		t.Errorf("length = %d, want 0", pkg.Length)
	}
	if !pkg.Report.Valid {
		t.Error("empty chain should export as valid")
	}
	if !VerifyAttestation(pkg, testKey) {
		t.Error("empty package attestation should verify")
	}
}
