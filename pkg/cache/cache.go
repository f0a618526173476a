// Package cache stores analysis results keyed by a hash of their inputs.
// The cache is an optional collaborator: read failures are misses and
// write failures are dropped, so callers never depend on it for
// correctness.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/OFFIS-RIT/rhetorik/pkg/logger"
)

// Version is the current key generation. Bumping it orphans every
// existing entry.
const Version = 16

const separator = "|||"

// ErrQuotaExceeded is returned by backends that refuse an entry because
// of its size.
var ErrQuotaExceeded = errors.New("cache quota exceeded")

// Cache is a string key/value store.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key builds "wue_cache_v{version}_{prefix}_{hash}". The hash is a signed
// 32-bit rolling hash (h = h*31 + c) over the UTF-16 code units of the
// inputs joined by "|||", so keys match those written by the browser
// client.
func Key(version int, prefix string, inputs ...string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(strings.Join(inputs, separator))) {
		h = (h << 5) - h + int32(c)
	}

	var b strings.Builder
	b.WriteString("wue_cache_v")
	b.WriteString(strconv.Itoa(version))
	b.WriteByte('_')
	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(int64(h), 10))
	return b.String()
}

// GetJSON decodes the entry at key into v. Missing, unreadable and
// undecodable entries all report false.
func GetJSON(ctx context.Context, c Cache, key string, v any) bool {
	if c == nil {
		return false
	}
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		logger.Warn("[Cache] Read failed", "key", key, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("[Cache] Dropping undecodable entry", "key", key, "err", err)
		return false
	}
	return true
}

// SetJSON encodes v and stores it at key. Errors are logged and
// swallowed.
func SetJSON(ctx context.Context, c Cache, key string, v any) {
	if c == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn("[Cache] Encode failed", "key", key, "err", err)
		return
	}
	if err := c.Set(ctx, key, data); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			logger.Debug("[Cache] Entry exceeds quota, not stored", "key", key, "bytes", len(data))
			return
		}
		logger.Warn("[Cache] Write failed", "key", key, "err", err)
	}
}
