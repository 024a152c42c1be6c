package tools

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vtcode/vtcode/pkg/canonjson"
)

// CacheKey builds the "hash(name, args)" cache key the executor's caching
// middleware uses, per spec.md's C4 contract. It hashes the same canonjson
// encoding the pattern engine fingerprints, so equal arguments always yield
// equal keys; unlike the pattern engine's fingerprint this is a digest, not
// the canonical string, since exact-match lookup has no use for similarity.
func CacheKey(name string, args any) (string, error) {
	canon, err := canonjson.Marshal(args)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(name + "\x00" + canon))
	return name + ":" + hex.EncodeToString(sum[:16]), nil
}
