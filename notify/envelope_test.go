package notify_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jacentio/ripple/notify"
)

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     notify.Envelope
		wantErr error
	}{
		{
			name: "user target",
			env:  notify.Envelope{TargetUserID: "u1", Payload: "{}"},
		},
		{
			name: "channel target",
			env:  notify.Envelope{TargetChannelID: "General", Payload: "{}"},
		},
		{
			name: "broadcast",
			env:  notify.Envelope{Payload: "{}"},
		},
		{
			name:    "both targets",
			env:     notify.Envelope{TargetUserID: "u1", TargetChannelID: "General", Payload: "{}"},
			wantErr: notify.ErrAmbiguousTarget,
		},
		{
			name: "zero delay",
			env:  notify.Envelope{TargetUserID: "u1", Payload: "{}", DelaySeconds: 0},
		},
		{
			name:    "negative delay",
			env:     notify.Envelope{TargetUserID: "u1", Payload: "{}", DelaySeconds: -1},
			wantErr: notify.ErrNegativeDelay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEnvelopeBuilders(t *testing.T) {
	note := notify.NewWelcome("u1", "Alice")

	env, err := notify.ToUser("u1", note)
	if err != nil {
		t.Fatalf("ToUser failed: %v", err)
	}
	if env.TargetUserID != "u1" || env.TargetChannelID != "" {
		t.Errorf("unexpected targets: %+v", env)
	}

	env, err = notify.ToChannel("General", note)
	if err != nil {
		t.Fatalf("ToChannel failed: %v", err)
	}
	if env.TargetChannelID != "General" || env.TargetUserID != "" {
		t.Errorf("unexpected targets: %+v", env)
	}

	env, err = notify.Broadcast(note)
	if err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if env.TargetUserID != "" || env.TargetChannelID != "" {
		t.Errorf("broadcast must carry no target: %+v", env)
	}
}

func TestDecodeEnvelope(t *testing.T) {
	raw := `{"targetChannelId":"General","payload":"{\"action\":\"message\"}","delaySeconds":5}`

	env, err := notify.DecodeEnvelope([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if env.TargetChannelID != "General" {
		t.Errorf("expected TargetChannelID 'General', got %q", env.TargetChannelID)
	}
	if env.DelaySeconds != 5 {
		t.Errorf("expected DelaySeconds 5, got %d", env.DelaySeconds)
	}
}

func TestDecodeEnvelopeRejectsAmbiguous(t *testing.T) {
	raw := `{"targetUserId":"u1","targetChannelId":"General","payload":"{}"}`

	_, err := notify.DecodeEnvelope([]byte(raw))
	if !errors.Is(err, notify.ErrAmbiguousTarget) {
		t.Fatalf("expected ErrAmbiguousTarget, got %v", err)
	}
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	if _, err := notify.DecodeEnvelope([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed envelope")
	}
}

func TestNotificationWireFormat(t *testing.T) {
	note := notify.NewMessage("General", "Alice", "hello", 1700000000000)

	payload, err := note.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["action"] != "message" {
		t.Errorf("expected action 'message', got %v", decoded["action"])
	}
	if decoded["channelId"] != "General" {
		t.Errorf("expected channelId 'General', got %v", decoded["channelId"])
	}
	if decoded["userName"] != "Alice" {
		t.Errorf("expected userName 'Alice', got %v", decoded["userName"])
	}
	if decoded["text"] != "hello" {
		t.Errorf("expected text 'hello', got %v", decoded["text"])
	}
	// Kind-specific fields stay absent rather than zero-valued.
	if _, ok := decoded["userId"]; ok {
		t.Error("message notification must not carry userId")
	}
}

func TestNotificationKinds(t *testing.T) {
	tests := []struct {
		name       string
		note       notify.Notification
		wantAction string
	}{
		{"message", notify.NewMessage("General", "Alice", "hi", 1), notify.ActionMessage},
		{"rename", notify.NewUserNameChanged("u1", "Alicia"), notify.ActionUserNameChanged},
		{"joined", notify.NewJoinedChannel("General", "u1", "Alice"), notify.ActionJoinedChannel},
		{"welcome", notify.NewWelcome("u1", "Alice"), notify.ActionWelcome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.note.Action != tt.wantAction {
				t.Errorf("expected action %q, got %q", tt.wantAction, tt.note.Action)
			}
		})
	}
}
