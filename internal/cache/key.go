package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// keyNamespace prefixes every key so entries cannot collide with unrelated
// data in a shared Redis instance.
const keyNamespace = "kilimobot:resp:"

// Key derives the deterministic cache key for a query and fingerprint. The
// query is normalized (lowercased, trimmed, whitespace collapsed) before
// hashing so trivially different phrasings of the same text share a key.
func Key(query string, fp Fingerprint) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	material := normalized + "|" + strings.ToLower(fp.Crop) +
		"|" + strings.ToLower(fp.Region) + "|" + strings.ToLower(fp.FarmStage)
	sum := sha256.Sum256([]byte(material))
	return keyNamespace + hex.EncodeToString(sum[:])
}
