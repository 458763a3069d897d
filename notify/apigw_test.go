package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"

	"github.com/jacentio/ripple/notify"
)

type fakeManagementAPI struct {
	err    error
	inputs []*apigatewaymanagementapi.PostToConnectionInput
}

func (f *fakeManagementAPI) PostToConnection(_ context.Context, params *apigatewaymanagementapi.PostToConnectionInput, _ ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &apigatewaymanagementapi.PostToConnectionOutput{}, nil
}

func TestGatewayPusherPush(t *testing.T) {
	client := &fakeManagementAPI{}
	p := notify.NewGatewayPusher(client)

	if err := p.Push(context.Background(), "c1", []byte("payload")); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected 1 post, got %d", len(client.inputs))
	}
	if *client.inputs[0].ConnectionId != "c1" {
		t.Errorf("expected connection id 'c1', got %q", *client.inputs[0].ConnectionId)
	}
	if string(client.inputs[0].Data) != "payload" {
		t.Errorf("unexpected data %q", client.inputs[0].Data)
	}
}

func TestGatewayPusherGone(t *testing.T) {
	client := &fakeManagementAPI{err: &types.GoneException{}}
	p := notify.NewGatewayPusher(client)

	err := p.Push(context.Background(), "c1", []byte("payload"))
	if !errors.Is(err, notify.ErrTargetGone) {
		t.Fatalf("expected ErrTargetGone, got %v", err)
	}
}

func TestGatewayPusherOtherError(t *testing.T) {
	client := &fakeManagementAPI{err: errors.New("throttled")}
	p := notify.NewGatewayPusher(client)

	err := p.Push(context.Background(), "c1", []byte("payload"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, notify.ErrTargetGone) {
		t.Fatal("non-gone failures must not map to ErrTargetGone")
	}
}
