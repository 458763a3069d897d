package notify

import (
	"encoding/json"
	"fmt"
)

// Notification action kinds carried in envelope payloads.
const (
	ActionMessage         = "message"
	ActionUserNameChanged = "username-changed"
	ActionJoinedChannel   = "joined-channel"
	ActionWelcome         = "welcome"
)

// Notification is the client-facing payload. The Action field discriminates
// the kind; the remaining fields are populated per kind.
type Notification struct {
	Action    string `json:"action"`
	ChannelID string `json:"channelId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	UserName  string `json:"userName,omitempty"`
	Text      string `json:"text,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// NewMessage builds a chat message notification.
func NewMessage(channelID, fromUserName, text string, timestamp int64) Notification {
	return Notification{
		Action:    ActionMessage,
		ChannelID: channelID,
		UserName:  fromUserName,
		Text:      text,
		Timestamp: timestamp,
	}
}

// NewUserNameChanged announces a user's new display name.
func NewUserNameChanged(userID, userName string) Notification {
	return Notification{
		Action:   ActionUserNameChanged,
		UserID:   userID,
		UserName: userName,
	}
}

// NewJoinedChannel announces that a user joined a channel.
func NewJoinedChannel(channelID, userID, userName string) Notification {
	return Notification{
		Action:    ActionJoinedChannel,
		ChannelID: channelID,
		UserID:    userID,
		UserName:  userName,
	}
}

// NewWelcome greets a freshly connected user.
func NewWelcome(userID, userName string) Notification {
	return Notification{
		Action:   ActionWelcome,
		UserID:   userID,
		UserName: userName,
	}
}

// Encode serializes the notification for use as an envelope payload.
func (n Notification) Encode() (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("encode %s notification: %w", n.Action, err)
	}
	return string(data), nil
}
