// Package mcp exposes the assistant as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/unifecaf/triagebot"
	"github.com/unifecaf/triagebot/internal/logging"
	"github.com/unifecaf/triagebot/pkg/domain"
	"golang.org/x/sync/errgroup"
)

const coursesURI = "triagebot://courses"

// Assistant is the part of triagebot.Assistant the MCP server needs.
type Assistant interface {
	Handle(ctx context.Context, userID, text string) (*triagebot.Reply, error)
	QueryCourses(ctx context.Context, filter domain.CourseFilter) (string, error)
}

// MessageResponse is the structured result of send_message.
type MessageResponse struct {
	Messages   []domain.Outbound `json:"messages" jsonschema_description:"Messages to show the user, in order"`
	Terminated bool              `json:"terminated" jsonschema_description:"Whether the conversation ended"`
	ArtifactID string            `json:"artifact_id,omitempty" jsonschema_description:"Audit record written when the conversation ended"`
}

// CoursesResponse is the structured result of query_courses.
type CoursesResponse struct {
	Text string `json:"text" jsonschema_description:"Formatted catalog answer"`
}

// Server wraps an Assistant and exposes it as an MCP server.
type Server struct {
	assistant Assistant
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP server for a.
func NewServer(a Assistant, opts ...Option) *Server {
	s := &Server{
		assistant: a,
		mcpServer: server.NewMCPServer("triagebot-mcp", strings.TrimSpace(triagebot.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send one message of a user to the help desk assistant and get its replies."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Stable identifier of the user")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message text, a menu label or a command such as /start")),
		mcp.WithOutputSchema[MessageResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))

	coursesTool := mcp.NewTool("query_courses",
		mcp.WithDescription("Look up the course catalog. Without arguments it lists every course."),
		mcp.WithString("course", mcp.Description("Course name or part of it")),
		mcp.WithString("semester", mcp.Description("Semester, e.g. 1º semestre")),
		mcp.WithString("discipline", mcp.Description("Discipline name or part of it")),
		mcp.WithOutputSchema[CoursesResponse](),
	)
	s.mcpServer.AddTool(coursesTool, mcp.NewStructuredToolHandler(s.handleQueryCourses))
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (MessageResponse, error) {
	userID, _ := args["user_id"].(string)
	text, _ := args["text"].(string)

	reply, err := s.assistant.Handle(ctx, strings.TrimSpace(userID), text)
	if err != nil {
		s.logger.Error("MCP send_message failed", "user_id", userID, "err", err)
		return MessageResponse{}, fmt.Errorf("send_message failed: %w", err)
	}
	return MessageResponse{
		Messages:   reply.Messages,
		Terminated: reply.Terminated,
		ArtifactID: reply.ArtifactID,
	}, nil
}

func (s *Server) handleQueryCourses(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CoursesResponse, error) {
	var filter domain.CourseFilter
	filter.Course, _ = args["course"].(string)
	filter.Semester, _ = args["semester"].(string)
	filter.Discipline, _ = args["discipline"].(string)

	text, err := s.assistant.QueryCourses(ctx, filter)
	if err != nil {
		return CoursesResponse{}, fmt.Errorf("query_courses failed: %w", err)
	}
	return CoursesResponse{Text: text}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(coursesURI, "Course Listing",
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.assistant.QueryCourses(ctx, domain.CourseFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to list courses: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      coursesURI,
				MIMEType: "text/markdown",
				Text:     text,
			},
		}, nil
	})
}
