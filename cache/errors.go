package cache

import (
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
	ErrInvalidDir = errors.New("cache: directory path is empty")
)

// ValidateKey checks that a key is safe to use. Keys become directory
// names under the cache directory when entries are demoted, so path
// separators, NUL bytes, and the dot entries are rejected outright
// rather than left to corrupt the on-disk layout.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if key == "." || key == ".." {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, "/\\\x00\n\r") {
		return ErrInvalidKey
	}
	return nil
}
