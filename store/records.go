package store

import (
	"github.com/jacentio/ripple/internal/keys"
)

// Record type tags stored in the _Type attribute.
const (
	TypeUser         = "user"
	TypeConnection   = "connection"
	TypeChannel      = "channel"
	TypeSubscription = "subscription"
	TypeMessage      = "message"
)

// UserRecord holds a user's identity and display name. The user id is
// immutable; the display name may change.
type UserRecord struct {
	UserID   string `dynamodbav:"user_id"`
	UserName string `dynamodbav:"user_name"`
}

func (r UserRecord) PrimaryKey() Key    { return Key{PK: keys.User(r.UserID), SK: keys.Info} }
func (r UserRecord) RecordType() string { return TypeUser }

// ConnectionRecord maps an open WebSocket connection to its owning user.
// The reverse projection under the user's partition supports listing all
// connections a user currently holds.
type ConnectionRecord struct {
	ConnectionID string `dynamodbav:"connection_id"`
	UserID       string `dynamodbav:"user_id"`
}

func (r ConnectionRecord) PrimaryKey() Key {
	return Key{PK: keys.Connection(r.ConnectionID), SK: keys.Info}
}

func (r ConnectionRecord) RecordType() string { return TypeConnection }

func (r ConnectionRecord) Projections() []Key {
	return []Key{{PK: keys.User(r.UserID), SK: keys.Connection(r.ConnectionID)}}
}

// ChannelRecord holds a chat channel. Channels are created once at bootstrap.
type ChannelRecord struct {
	ChannelID   string `dynamodbav:"channel_id"`
	ChannelName string `dynamodbav:"channel_name"`
}

func (r ChannelRecord) PrimaryKey() Key    { return Key{PK: keys.Channel(r.ChannelID), SK: keys.Info} }
func (r ChannelRecord) RecordType() string { return TypeChannel }

// SubscriptionRecord ties a user to a channel. The primary copy lives under
// the channel's partition (listing a channel's subscribers); the projection
// under the user's partition lists the channels a user follows.
type SubscriptionRecord struct {
	ChannelID         string `dynamodbav:"channel_id"`
	UserID            string `dynamodbav:"user_id"`
	LastSeenTimestamp int64  `dynamodbav:"last_seen"`
}

func (r SubscriptionRecord) PrimaryKey() Key {
	return Key{PK: keys.Channel(r.ChannelID), SK: keys.User(r.UserID)}
}

func (r SubscriptionRecord) RecordType() string { return TypeSubscription }

func (r SubscriptionRecord) Projections() []Key {
	return []Key{{PK: keys.User(r.UserID), SK: keys.Channel(r.ChannelID)}}
}

// MessageRecord holds one chat message. Messages are immutable: created on
// send, never updated or deleted. The sort key orders messages by timestamp;
// the jitter suffix keeps two messages in the same millisecond from
// colliding, with ties unordered among themselves.
type MessageRecord struct {
	ChannelID string `dynamodbav:"channel_id"`
	UserID    string `dynamodbav:"user_id"`
	Timestamp int64  `dynamodbav:"ts"`
	Text      string `dynamodbav:"text"`
	Jitter    string `dynamodbav:"jitter"`
}

func (r MessageRecord) PrimaryKey() Key {
	return Key{PK: keys.Channel(r.ChannelID), SK: keys.Message(r.Timestamp, r.Jitter)}
}

func (r MessageRecord) RecordType() string { return TypeMessage }
