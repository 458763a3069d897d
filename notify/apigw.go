package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
)

// ManagementAPIClient is the subset of the API Gateway Management API the
// pusher uses.
type ManagementAPIClient interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// GatewayPusher pushes payloads to API Gateway WebSocket connections.
type GatewayPusher struct {
	client ManagementAPIClient
}

// NewGatewayPusher creates a pusher over the given management API client.
func NewGatewayPusher(client ManagementAPIClient) *GatewayPusher {
	return &GatewayPusher{client: client}
}

// Push posts data to one connection. A connection the gateway no longer
// knows reports ErrTargetGone so the caller can drop its record.
func (p *GatewayPusher) Push(ctx context.Context, connectionID string, data []byte) error {
	_, err := p.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         data,
	})
	if err != nil {
		var gone *types.GoneException
		if errors.As(err, &gone) {
			return fmt.Errorf("%w: %s", ErrTargetGone, connectionID)
		}
		return fmt.Errorf("post to connection %s: %w", connectionID, err)
	}
	return nil
}
