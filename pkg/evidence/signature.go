package evidence

import (
	"strings"

	"github.com/sentinelworks/helix-ledger/pkg/cryptoutil"
)

// SignatureChain compresses the content chain into one fixed-length
// fingerprint: the keyed HMAC of the pipe-joined content hashes, in the
// order given. Any change to record order, count, or any single hash
// changes the output. Callers order the set first (see OrderRecords) when
// they want the canonical fingerprint.
func SignatureChain(records []Record, key string) string {
	hashes := make([]string, len(records))
	for i, r := range records {
		hashes[i] = r.Hash
	}
	return cryptoutil.HMACHex(strings.Join(hashes, "|"), key)
}

// StructureSignatureChain is the structure-chain counterpart, under its own
// domain key — it never equals SignatureChain over the same record set.
func StructureSignatureChain(records []Record, key string) string {
	hashes := make([]string, len(records))
	for i, r := range records {
		hashes[i] = r.StructureHash
	}
	return cryptoutil.HMACHex(strings.Join(hashes, "|"), key+structureSignatureSuffix)
}
