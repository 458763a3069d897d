package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jacentio/ripple/internal/keys"
)

// Config holds configuration for the Table.
type Config struct {
	// TableName is the name of the single physical table holding every
	// record type.
	// Default: "ripple_chat"
	TableName string

	// JitterLength is the length of the random suffix appended to message
	// sort keys to disambiguate same-millisecond writes.
	// Default: 4
	JitterLength int

	// Jitter produces a random string of the given length. Injecting it
	// keeps the store deterministic under test. When nil, a source seeded
	// from the clock is used.
	Jitter func(length int) string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TableName:    "ripple_chat",
		JitterLength: 4,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = "ripple_chat"
	}
	if c.JitterLength < 1 {
		c.JitterLength = 4
	}
	if c.Jitter == nil {
		c.Jitter = seededJitter()
	}
}

// seededJitter returns a clock-seeded jitter function safe for concurrent use.
func seededJitter() func(int) string {
	var mu sync.Mutex
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func(length int) string {
		mu.Lock()
		defer mu.Unlock()
		return keys.Jitter(r, length)
	}
}
