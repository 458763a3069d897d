// Package lambdafn contains the AWS Lambda entry points of the chat
// backend: the WebSocket connect, disconnect and action routes, and the SQS
// worker that drains the notification queue. The handlers are thin over the
// store and dispatcher so they can be exercised without Lambda plumbing.
package lambdafn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/jacentio/ripple/notify"
	"github.com/jacentio/ripple/store"
)

// actionRequest is the client-to-server frame on the WebSocket.
type actionRequest struct {
	Action    string `json:"action"`
	ChannelID string `json:"channelId,omitempty"`
	Text      string `json:"text,omitempty"`
	UserName  string `json:"userName,omitempty"`
}

// Replayer delivers the channel messages a user missed since a watermark
// timestamp. *notify.Dispatcher satisfies it.
type Replayer interface {
	CatchUp(ctx context.Context, userID, channelID string, since, delaySeconds int64) (int, error)
}

// Handler serves the WebSocket routes.
type Handler struct {
	table        *store.Table
	queue        notify.Queue
	replay       Replayer
	logger       *slog.Logger
	welcomeDelay int64
	now          func() time.Time
}

// NewHandler creates a route handler. welcomeDelaySeconds defers the welcome
// notification so the fresh connection record is queryable by the time the
// dispatcher resolves it. A nil replay disables missed-message delivery on
// reconnect; a nil logger falls back to slog.Default().
func NewHandler(table *store.Table, queue notify.Queue, replay Replayer, welcomeDelaySeconds int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		table:        table,
		queue:        queue,
		replay:       replay,
		logger:       logger,
		welcomeDelay: welcomeDelaySeconds,
		now:          time.Now,
	}
}

// HandleConnect registers a new WebSocket connection. The caller may pin its
// identity with a userId query parameter; otherwise a fresh anonymous user
// is created. Every user is subscribed to the default channel, greeted with
// a welcome notification, and announced to the channel on first join.
func (h *Handler) HandleConnect(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := req.RequestContext.ConnectionID
	userID := req.QueryStringParameters["userId"]
	if userID == "" {
		userID = uuid.NewString()
	}
	userName := req.QueryStringParameters["userName"]
	if userName == "" {
		userName = anonymousName(userID)
	}

	user, err := h.table.CreateUser(ctx, userID, userName)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrAlreadyExists):
		// Returning user; keep the stored name.
		user, err = h.table.GetUser(ctx, userID)
		if err != nil {
			return serverError(), fmt.Errorf("load returning user %s: %w", userID, err)
		}
	default:
		return serverError(), fmt.Errorf("create user %s: %w", userID, err)
	}

	if _, err := h.table.CreateConnection(ctx, connectionID, user.UserID); err != nil {
		return serverError(), fmt.Errorf("register connection %s: %w", connectionID, err)
	}

	joined := false
	if _, err := h.table.CreateSubscription(ctx, GeneralChannelID, user.UserID); err != nil {
		if !errors.Is(err, store.ErrAlreadyExists) {
			return serverError(), fmt.Errorf("subscribe %s to %s: %w", user.UserID, GeneralChannelID, err)
		}
	} else {
		joined = true
	}

	welcome, err := notify.ToUser(user.UserID, notify.NewWelcome(user.UserID, user.UserName))
	if err != nil {
		return serverError(), err
	}
	welcome.DelaySeconds = h.welcomeDelay
	if err := h.queue.Send(ctx, welcome); err != nil {
		return serverError(), fmt.Errorf("queue welcome: %w", err)
	}

	if joined {
		announce, err := notify.ToChannel(GeneralChannelID, notify.NewJoinedChannel(GeneralChannelID, user.UserID, user.UserName))
		if err != nil {
			return serverError(), err
		}
		if err := h.queue.Send(ctx, announce); err != nil {
			return serverError(), fmt.Errorf("queue join announcement: %w", err)
		}
	} else if h.replay != nil {
		// Returning subscriber: replay what was missed since the last-seen
		// watermark. A failed replay degrades to silence, not a failed
		// connect.
		sub, err := h.table.GetSubscription(ctx, GeneralChannelID, user.UserID)
		if err != nil {
			h.logger.Warn("skipping replay, subscription unavailable",
				"userId", user.UserID,
				"error", err,
			)
		} else if _, err := h.replay.CatchUp(ctx, user.UserID, GeneralChannelID, sub.LastSeenTimestamp, h.welcomeDelay); err != nil {
			h.logger.Warn("missed-message replay failed",
				"userId", user.UserID,
				"error", err,
			)
		}
	}

	h.logger.Info("connection opened",
		"connectionId", connectionID,
		"userId", user.UserID,
	)
	return ok(), nil
}

// HandleDisconnect removes the connection record. A disconnect for a
// connection that was never registered, or was already reaped by the
// dispatcher, succeeds quietly.
func (h *Handler) HandleDisconnect(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := req.RequestContext.ConnectionID

	conn, err := h.table.GetConnection(ctx, connectionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.logger.Warn("disconnect for unknown connection", "connectionId", connectionID)
			return ok(), nil
		}
		return serverError(), fmt.Errorf("load connection %s: %w", connectionID, err)
	}
	if err := h.table.DeleteConnection(ctx, conn.ConnectionID, conn.UserID); err != nil {
		return serverError(), fmt.Errorf("remove connection %s: %w", connectionID, err)
	}

	h.logger.Info("connection closed",
		"connectionId", connectionID,
		"userId", conn.UserID,
	)
	return ok(), nil
}

// HandleAction routes a client frame. Supported actions are "send" and
// "rename"; anything else is a client error.
func (h *Handler) HandleAction(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := req.RequestContext.ConnectionID

	var action actionRequest
	if err := json.Unmarshal([]byte(req.Body), &action); err != nil {
		return clientError("malformed request"), nil
	}

	user, err := h.table.GetUserByConnection(ctx, connectionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return clientError("unknown connection"), nil
		}
		return serverError(), fmt.Errorf("resolve connection %s: %w", connectionID, err)
	}

	switch action.Action {
	case "send":
		return h.sendMessage(ctx, user, action)
	case "rename":
		return h.renameUser(ctx, user, action)
	default:
		return clientError(fmt.Sprintf("unknown action %q", action.Action)), nil
	}
}

func (h *Handler) sendMessage(ctx context.Context, user *store.UserRecord, action actionRequest) (events.APIGatewayProxyResponse, error) {
	channelID := action.ChannelID
	if channelID == "" {
		channelID = GeneralChannelID
	}
	if action.Text == "" {
		return clientError("empty message"), nil
	}
	if _, err := h.table.GetSubscription(ctx, channelID, user.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return clientError("not subscribed to channel"), nil
		}
		return serverError(), fmt.Errorf("check subscription: %w", err)
	}

	msg, err := h.table.CreateMessage(ctx, channelID, user.UserID, action.Text, h.now().UnixMilli())
	if err != nil {
		return serverError(), fmt.Errorf("store message: %w", err)
	}

	env, err := notify.ToChannel(channelID, notify.NewMessage(channelID, user.UserName, msg.Text, msg.Timestamp))
	if err != nil {
		return serverError(), err
	}
	if err := h.queue.Send(ctx, env); err != nil {
		return serverError(), fmt.Errorf("queue message notification: %w", err)
	}
	return ok(), nil
}

func (h *Handler) renameUser(ctx context.Context, user *store.UserRecord, action actionRequest) (events.APIGatewayProxyResponse, error) {
	if action.UserName == "" {
		return clientError("empty user name"), nil
	}
	user.UserName = action.UserName
	if err := h.table.UpdateUser(ctx, user); err != nil {
		return serverError(), fmt.Errorf("rename user %s: %w", user.UserID, err)
	}

	env, err := notify.Broadcast(notify.NewUserNameChanged(user.UserID, user.UserName))
	if err != nil {
		return serverError(), err
	}
	if err := h.queue.Send(ctx, env); err != nil {
		return serverError(), fmt.Errorf("queue rename notification: %w", err)
	}
	return ok(), nil
}

// anonymousName derives a short display name from a user id.
func anonymousName(userID string) string {
	suffix := userID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return "Anonymous-" + suffix
}

func ok() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}
}

func clientError(msg string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest, Body: msg}
}

func serverError() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}
}
