// Command chatd runs the chat backend as a single self-hosted process: an
// in-process WebSocket hub stands in for the managed gateway, and an
// in-process queue stands in for SQS. The connection routes are the same
// handlers the Lambda deployment uses.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jacentio/ripple/hub"
	"github.com/jacentio/ripple/lambdafn"
	"github.com/jacentio/ripple/notify"
	"github.com/jacentio/ripple/store"
)

type serverConfig struct {
	Port                string
	TableName           string
	DynamoDBEndpoint    string
	DynamoDBRegion      string
	AWSAccessKey        string
	AWSSecretKey        string
	LogLevel            string
	WelcomeDelaySeconds int64
}

func loadConfig() serverConfig {
	delay, _ := strconv.ParseInt(getEnv("WELCOME_DELAY_SECONDS", "0"), 10, 64)
	return serverConfig{
		Port:                getEnv("PORT", "8080"),
		TableName:           getEnv("TABLE_NAME", "ripple_chat"),
		DynamoDBEndpoint:    getEnv("DYNAMODB_ENDPOINT", "http://localhost:8000"),
		DynamoDBRegion:      getEnv("DYNAMODB_REGION", "us-east-1"),
		AWSAccessKey:        getEnv("AWS_ACCESS_KEY_ID", "dummy"),
		AWSSecretKey:        getEnv("AWS_SECRET_ACCESS_KEY", "dummy"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		WelcomeDelaySeconds: delay,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local deployments serve any origin.
		return true
	},
}

type server struct {
	handler *lambdafn.Handler
	hub     *hub.Hub
	logger  *slog.Logger
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","connections":%d}`, s.hub.Len())
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	connectionID := uuid.NewString()
	s.hub.Add(connectionID, conn)

	req := events.APIGatewayWebsocketProxyRequest{
		QueryStringParameters: firstValues(r),
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			ConnectionID: connectionID,
		},
	}
	resp, err := s.handler.HandleConnect(r.Context(), req)
	if err != nil || resp.StatusCode != http.StatusOK {
		s.logger.Error("connect failed", "connectionId", connectionID, "error", err)
		s.hub.Remove(connectionID)
		return
	}

	go s.readLoop(conn, req)
}

// readLoop feeds client frames through the action route until the socket
// closes, then runs the disconnect route.
func (s *server) readLoop(conn *websocket.Conn, req events.APIGatewayWebsocketProxyRequest) {
	connectionID := req.RequestContext.ConnectionID
	defer func() {
		s.hub.Remove(connectionID)
		if _, err := s.handler.HandleDisconnect(context.Background(), req); err != nil {
			s.logger.Warn("disconnect failed", "connectionId", connectionID, "error", err)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		req.Body = string(data)
		resp, err := s.handler.HandleAction(context.Background(), req)
		if err != nil {
			s.logger.Error("action failed", "connectionId", connectionID, "error", err)
			continue
		}
		if resp.StatusCode != http.StatusOK && resp.Body != "" {
			conn.WriteMessage(websocket.TextMessage, []byte(resp.Body))
		}
	}
}

func firstValues(r *http.Request) map[string]string {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

func newDynamoDBClient(ctx context.Context, cfg serverConfig) (*dynamodb.Client, error) {
	var awsCfg aws.Config
	var err error
	if cfg.DynamoDBEndpoint != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.DynamoDBRegion),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKey,
				cfg.AWSSecretKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.DynamoDBRegion),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

func main() {
	cfg := loadConfig()

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	ctx := context.Background()
	client, err := newDynamoDBClient(ctx, cfg)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	storeCfg := store.DefaultConfig()
	storeCfg.TableName = cfg.TableName
	table := store.NewWithLogger(client, storeCfg, logger)
	if err := lambdafn.EnsureGeneralChannel(ctx, table); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	wsHub := hub.New(10*time.Second, logger)
	dispatcher := notify.NewDispatcher(table, wsHub, logger)
	queue := notify.NewLocalQueue(dispatcher)
	handler := lambdafn.NewHandler(table, queue, dispatcher, cfg.WelcomeDelaySeconds, logger)

	srv := &server{handler: handler, hub: wsHub, logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/ws", srv.handleWebSocket)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "table", cfg.TableName)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server exited")
}
