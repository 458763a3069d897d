package notify

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAmbiguousTarget is returned when an envelope names both a target user
// and a target channel.
var ErrAmbiguousTarget = errors.New("ripple: envelope targets both a user and a channel")

// ErrNegativeDelay is returned when an envelope carries a negative delivery
// delay.
var ErrNegativeDelay = errors.New("ripple: envelope delay is negative")

// Envelope is the wire form of one notification hand-off. Exactly zero or
// one of TargetUserID and TargetChannelID may be set; both unset means
// broadcast to everyone. The payload is opaque to the dispatcher.
type Envelope struct {
	TargetUserID    string `json:"targetUserId,omitempty"`
	TargetChannelID string `json:"targetChannelId,omitempty"`
	Payload         string `json:"payload"`

	// DelaySeconds defers delivery past a known race window: a connection
	// record written during connect may not yet be visible to the queries
	// the dispatcher runs. The race itself is unresolved; the delay papers
	// over it.
	DelaySeconds int64 `json:"delaySeconds,omitempty"`
}

// Validate checks the target exclusivity rule and the delay bound.
func (e Envelope) Validate() error {
	if e.TargetUserID != "" && e.TargetChannelID != "" {
		return ErrAmbiguousTarget
	}
	if e.DelaySeconds < 0 {
		return ErrNegativeDelay
	}
	return nil
}

// ToUser builds an envelope addressed to all of one user's connections.
func ToUser(userID string, n Notification) (Envelope, error) {
	payload, err := n.Encode()
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{TargetUserID: userID, Payload: payload}, nil
}

// ToChannel builds an envelope addressed to a channel's subscribers.
func ToChannel(channelID string, n Notification) (Envelope, error) {
	payload, err := n.Encode()
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{TargetChannelID: channelID, Payload: payload}, nil
}

// Broadcast builds an envelope addressed to every connected user.
func Broadcast(n Notification) (Envelope, error) {
	payload, err := n.Encode()
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Payload: payload}, nil
}

// DecodeEnvelope parses an envelope from its wire form and validates it.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if err := env.Validate(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
