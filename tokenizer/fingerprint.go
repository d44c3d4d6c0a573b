package tokenizer

import (
	"fmt"
	"hash/fnv"
)

// Fingerprint hashes the significant tokens of input. Whitespace and
// comments do not contribute, so reformatting a statement keeps its
// fingerprint while any change to a name or literal alters it.
func Fingerprint(input string) uint64 {
	h := fnv.New64a()
	t := New(input)
	for tok, ok := t.Next(); ok; tok, ok = t.Next() {
		if IsTrivia(tok) {
			continue
		}
		_, _ = h.Write([]byte(tok))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// FingerprintHex is Fingerprint as 16 lowercase hex digits, usable as a
// label value.
func FingerprintHex(input string) string {
	return fmt.Sprintf("%016x", Fingerprint(input))
}
