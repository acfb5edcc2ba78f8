package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifecaf/triagebot"
	"github.com/unifecaf/triagebot/pkg/audit"
	"github.com/unifecaf/triagebot/pkg/domain"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	bot := triagebot.New(triagebot.WithExporter(audit.NewCSVExporter(t.TempDir())))
	return NewServer(bot)
}

func TestSendMessage(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	resp, err := s.handleSendMessage(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"user_id": "mcp-1",
		"text":    "Não sou aluno",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Messages)
	assert.False(t, resp.Terminated)

	resp, err = s.handleSendMessage(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"user_id": "mcp-1",
		"text":    "Cancelar",
	})
	require.NoError(t, err)
	assert.True(t, resp.Terminated)
	assert.NotEmpty(t, resp.ArtifactID)
}

func TestSendMessage_EmptyUser(t *testing.T) {
	s := newServer(t)

	_, err := s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"text": "oi"})
	assert.ErrorIs(t, err, triagebot.ErrEmptyUserID)
}

func TestQueryCourses(t *testing.T) {
	s := newServer(t)

	resp, err := s.handleQueryCourses(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Cursos Disponíveis")

	resp, err = s.handleQueryCourses(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"course": "curso-que-nao-existe",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "não encontrado")
}

type brokenAssistant struct{}

func (brokenAssistant) Handle(context.Context, string, string) (*triagebot.Reply, error) {
	return nil, errors.New("store down")
}

func (brokenAssistant) QueryCourses(context.Context, domain.CourseFilter) (string, error) {
	return "", errors.New("catalog down")
}

func TestToolErrors(t *testing.T) {
	s := NewServer(brokenAssistant{})

	_, err := s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"user_id": "u", "text": "oi"})
	assert.ErrorContains(t, err, "send_message failed")

	_, err = s.handleQueryCourses(context.Background(), mcp.CallToolRequest{}, nil)
	assert.ErrorContains(t, err, "query_courses failed")
}
