package evidence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sentinelworks/helix-ledger/pkg/cryptoutil"
)

// Genesis sentinels substituted for the empty previous-hash fields before
// hashing. Hex digests can never equal these, so a forged "first" record
// cannot splice onto a real hash.
const (
	genesisSentinel          = "genesis"
	structureGenesisSentinel = "structure-genesis"
)

// Domain-separation suffixes appended to the shared key. A digest computed
// for one domain is never valid in another. These are internal constants,
// not caller-configurable.
const (
	vaultPositionSuffix      = ":vault-position"
	structureChainSuffix     = ":structure-chain"
	structureSignatureSuffix = ":structure-signature"
)

// hashContent computes the content-chain ("Helix A") digest: a keyed HMAC
// over the canonical pipe-joined content fields.
func hashContent(id, previousHash, timestamp string, source Source,
	eventType string, payload []byte, key string) string {

	prev := previousHash
	if prev == "" {
		prev = genesisSentinel
	}
	canonical := strings.Join([]string{
		id, prev, timestamp, string(source), eventType, string(payload),
	}, "|")
	return cryptoutil.HMACHex(canonical, key)
}

// hashStructure computes the structure-chain ("Helix B") digest over the
// positional fields, under the structure-chain domain key.
func hashStructure(id string, position uint32, previousStructureHash,
	timestamp string, source Source, eventType, key string) string {

	prev := previousStructureHash
	if prev == "" {
		prev = structureGenesisSentinel
	}
	canonical := strings.Join([]string{
		id, fmt.Sprintf("%08x", position), prev, timestamp, string(source), eventType,
	}, "|")
	return cryptoutil.HMACHex(canonical, key+structureChainSuffix)
}

// vaultPosition binds a record to where it occurred in session-space: the
// first 32 bits of a domain-keyed digest over the content hash, session,
// timestamp, and source. The full unsigned 32-bit range is used.
func vaultPosition(contentHash, sessionID, timestamp string, source Source, key string) uint32 {
	canonical := strings.Join([]string{
		contentHash, sessionID, timestamp, string(source),
	}, "|")
	digest := cryptoutil.HMACHex(canonical, key+vaultPositionSuffix)
	position, err := strconv.ParseUint(digest[:8], 16, 32)
	if err != nil {
		// digest is always lowercase hex; unreachable.
		return 0
	}
	return uint32(position)
}
