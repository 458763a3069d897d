// Package keys builds the composite partition and sort keys for the chat table.
package keys

import (
	"fmt"
	"math/rand"
	"strings"
)

// Key prefixes shared by every record type. All logical entities live in one
// physical table; the prefix on the partition key selects the entity space.
const (
	UserPrefix       = "USER#"
	ChannelPrefix    = "ROOM#"
	ConnectionPrefix = "WS#"
	TimestampPrefix  = "WHEN#"
	Info             = "INFO"
)

// jitterSymbols is the alphabet used for sort-key jitter suffixes.
const jitterSymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// User returns the partition key of a user record.
func User(userID string) string {
	return UserPrefix + userID
}

// Channel returns the partition key of a channel record.
func Channel(channelID string) string {
	return ChannelPrefix + channelID
}

// Connection returns the partition key of a connection record.
func Connection(connectionID string) string {
	return ConnectionPrefix + connectionID
}

// Message returns the sort key of a message record. The timestamp is
// zero-padded to a fixed width so lexicographic order matches numeric order;
// the jitter suffix disambiguates messages created in the same millisecond.
func Message(timestamp int64, jitter string) string {
	return fmt.Sprintf("%s%016d|%s", TimestampPrefix, timestamp, jitter)
}

// MessageFloor returns the smallest message sort key for a timestamp. It is
// the lower bound for "messages since" range queries: every message with an
// equal or later timestamp sorts at or after it.
func MessageFloor(timestamp int64) string {
	return fmt.Sprintf("%s%016d", TimestampPrefix, timestamp)
}

// Jitter produces a random suffix of length n from the jitter alphabet using
// the supplied source. The source is injected so callers stay deterministic
// under test.
func Jitter(r *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(jitterSymbols[r.Intn(len(jitterSymbols))])
	}
	return b.String()
}
