package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/toyrobot"
	"github.com/aretw0/toyrobot/internal/logging"
	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/aretw0/toyrobot/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionsURI is the resource listing stored sessions.
const SessionsURI = "toyrobot://sessions"

// Server exposes robot sessions as MCP tools.
type Server struct {
	engine    *toyrobot.Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger. It must not write to stdout when serving stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *toyrobot.Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("toyrobot-mcp", strings.TrimSpace(toyrobot.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RobotResponse is the structured result of every tool.
type RobotResponse struct {
	SessionID string         `json:"session_id" jsonschema_description:"Session the robot belongs to"`
	Outcome   domain.Outcome `json:"outcome" jsonschema_description:"success, moved, ignored or rejected"`
	Message   string         `json:"message" jsonschema_description:"Human readable reply"`
	State     *domain.State  `json:"state,omitempty" jsonschema_description:"Robot state after the command"`
}

// SessionArgs identifies the robot a tool acts on.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// PlaceArgs are the arguments of the place tool.
type PlaceArgs struct {
	SessionID string `json:"session_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Direction string `json:"direction"`
}

// RestoreArgs are the arguments of the restore tool.
type RestoreArgs struct {
	SessionID string         `json:"session_id"`
	State     map[string]any `json:"state"`
}

func sessionParam(required bool) mcp.ToolOption {
	if required {
		return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by place"))
	}
	return mcp.WithString("session_id", mcp.Description("Session to use; a new one is created when omitted"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("place",
		mcp.WithDescription("Put the robot on the table at x,y facing a direction. (0,0) is the SOUTH WEST corner."),
		sessionParam(false),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Column, from 0")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Row, from 0")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("NORTH", "EAST", "SOUTH", "WEST")),
		mcp.WithOutputSchema[RobotResponse](),
	), mcp.NewStructuredToolHandler(s.HandlePlace))

	for _, c := range []struct {
		name, desc string
		cmd        domain.CommandType
	}{
		{"move", "Move the robot one unit forward. Moves that would leave the table are ignored.", domain.CommandMove},
		{"left", "Rotate the robot 90 degrees counter-clockwise.", domain.CommandLeft},
		{"right", "Rotate the robot 90 degrees clockwise.", domain.CommandRight},
		{"report", "Announce the X,Y and facing of the robot.", domain.CommandReport},
	} {
		cmd := c.cmd
		s.mcpServer.AddTool(mcp.NewTool(c.name,
			mcp.WithDescription(c.desc),
			sessionParam(true),
			mcp.WithOutputSchema[RobotResponse](),
		), mcp.NewStructuredToolHandler(func(ctx context.Context, req mcp.CallToolRequest, args SessionArgs) (RobotResponse, error) {
			return s.HandleCommand(ctx, cmd, args)
		}))
	}

	s.mcpServer.AddTool(mcp.NewTool("restore",
		mcp.WithDescription(`Load a previously dumped state, e.g. {"location":{"x":1,"y":2},"direction":"NORTH"}.`),
		sessionParam(false),
		mcp.WithObject("state", mcp.Required(), mcp.Description("Robot state with location and direction")),
		mcp.WithOutputSchema[RobotResponse](),
	), mcp.NewStructuredToolHandler(s.HandleRestore))
}

// HandlePlace places the robot, creating the session when needed.
func (s *Server) HandlePlace(ctx context.Context, _ mcp.CallToolRequest, args PlaceArgs) (RobotResponse, error) {
	facing, err := domain.ParseDirection(args.Direction)
	if err != nil {
		return RobotResponse{}, err
	}
	id := args.SessionID
	if id == "" {
		id = session.NewID()
	}

	var res domain.Result
	err = s.sessions.Start(ctx, id, func(robot *domain.Robot) error {
		res = s.engine.Apply(ctx, id, robot, domain.PlaceCommand(args.X, args.Y, facing))
		if res.Outcome == domain.OutcomeRejected {
			return fmt.Errorf("%w: %d,%d on %s table", domain.ErrOutOfBounds, args.X, args.Y, s.sessions.Grid())
		}
		return nil
	})
	if err != nil {
		return RobotResponse{}, err
	}
	return response(id, res), nil
}

// HandleCommand applies a non-placing command to an existing session.
func (s *Server) HandleCommand(ctx context.Context, cmd domain.CommandType, args SessionArgs) (RobotResponse, error) {
	if args.SessionID == "" {
		return RobotResponse{}, errors.New("session_id is required")
	}

	var res domain.Result
	err := s.sessions.Execute(ctx, args.SessionID, func(robot *domain.Robot) error {
		res = s.engine.Apply(ctx, args.SessionID, robot, domain.Command{Type: cmd})
		return nil
	})
	if errors.Is(err, domain.ErrSessionNotFound) {
		return RobotResponse{}, fmt.Errorf("session %q not found: place the robot first", args.SessionID)
	}
	if err != nil {
		return RobotResponse{}, err
	}
	return response(args.SessionID, res), nil
}

// HandleRestore stores a dumped state under a session.
func (s *Server) HandleRestore(ctx context.Context, _ mcp.CallToolRequest, args RestoreArgs) (RobotResponse, error) {
	state, err := domain.StateFromMap(args.State)
	if err != nil {
		return RobotResponse{}, err
	}
	pose, err := state.Pose()
	if err != nil {
		return RobotResponse{}, err
	}
	id := args.SessionID
	if id == "" {
		id = session.NewID()
	}

	var res domain.Result
	err = s.sessions.Start(ctx, id, func(robot *domain.Robot) error {
		res = s.engine.Apply(ctx, id, robot, domain.PlaceCommand(pose.Position.X, pose.Position.Y, pose.Facing))
		if res.Outcome == domain.OutcomeRejected {
			return fmt.Errorf("%w: %s on %s table", domain.ErrOutOfBounds, pose.Position, s.sessions.Grid())
		}
		return nil
	})
	if err != nil {
		return RobotResponse{}, err
	}
	return response(id, res), nil
}

func response(id string, res domain.Result) RobotResponse {
	out := RobotResponse{SessionID: id, Outcome: res.Outcome}
	if res.Pose != nil {
		st := domain.StateOf(*res.Pose)
		out.State = &st
	}
	switch {
	case res.Command == domain.CommandReport && res.Pose != nil:
		out.Message = "Output: " + res.Pose.String()
	case res.Outcome == domain.OutcomeMoved:
		out.Message = "Moved"
	case res.Outcome == domain.OutcomeIgnored:
		out.Message = "Ignored"
	default:
		out.Message = "Success"
	}
	return out
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Stored robot sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.ListSessions(ctx)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SessionsURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}

// ListSessions returns the stored session IDs as a JSON array.
func (s *Server) ListSessions(ctx context.Context) (string, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list sessions: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
