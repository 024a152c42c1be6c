// Package canonjson provides the single canonical-JSON encoding used across
// the agent core wherever two components must agree on "the same value":
// the tool executor's result cache key and the pattern engine's argument
// fingerprint both key off this package rather than maintaining independent
// serialization rules.
package canonjson

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Marshal produces a deterministic JSON encoding of v: object keys sorted,
// no insignificant whitespace. Arbitrary Go values are round-tripped through
// json.Marshal/Unmarshal into generic map[string]any/[]any/scalar form first,
// so struct field declaration order never leaks into the canonical form.
func Marshal(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	canon, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(canon), nil
}

// Hash64 returns a 64-bit hex-encoded hash of v's canonical JSON form.
func Hash64(v any) (string, error) {
	canon, err := Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canon))
	return hex.EncodeToString(sum[:8]), nil
}
