package domain

import (
	"encoding/hex"

	"go.trai.ch/zerr"
)

// KeySize is the digest length of a cache key.
const KeySize = 32

// CacheKey identifies an element's build output.
type CacheKey struct {
	Strength KeyStrength
	Digest   [KeySize]byte
}

// ParseCacheKey decodes a hex digest into a key of the given strength.
func ParseCacheKey(strength KeyStrength, s string) (CacheKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != KeySize {
		return CacheKey{}, zerr.With(zerr.Wrap(ErrInvalidConfig, "malformed cache key"), "key", s)
	}
	k := CacheKey{Strength: strength}
	copy(k.Digest[:], raw)
	return k, nil
}

// String returns the hex digest.
func (k CacheKey) String() string {
	return hex.EncodeToString(k.Digest[:])
}

// Short returns an abbreviated hex digest for display.
func (k CacheKey) Short() string {
	return k.String()[:12]
}

// IsZero reports whether the key was never computed.
func (k CacheKey) IsZero() bool {
	return k.Digest == [KeySize]byte{}
}
