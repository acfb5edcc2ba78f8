package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifecaf/triagebot"
	httpadapter "github.com/unifecaf/triagebot/pkg/adapters/http"
	"github.com/unifecaf/triagebot/pkg/audit"
	"github.com/unifecaf/triagebot/pkg/domain"
)

func newHandler(t *testing.T, opts ...httpadapter.Option) http.Handler {
	t.Helper()
	bot := triagebot.New(triagebot.WithExporter(audit.NewCSVExporter(t.TempDir())))
	return httpadapter.NewHandler(bot, opts...)
}

func postMessage(t *testing.T, h http.Handler, userID, text string) (*httptest.ResponseRecorder, triagebot.Reply) {
	t.Helper()
	body, err := json.Marshal(httpadapter.MessageRequest{UserID: userID, Text: text})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var reply triagebot.Reply
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	}
	return w, reply
}

func TestPostMessage_Conversation(t *testing.T) {
	h := newHandler(t)

	w, reply := postMessage(t, h, "ana", "oi")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, reply.Messages, 1)
	assert.Contains(t, reply.Messages[0].Text, "você é aluno")
	assert.Equal(t, [][]string{{"Sou aluno", "Não sou aluno"}}, reply.Messages[0].Options)

	postMessage(t, h, "ana", "Não sou aluno")
	_, reply = postMessage(t, h, "ana", "Cancelar")
	assert.True(t, reply.Terminated)
	assert.NotEmpty(t, reply.ArtifactID)
}

func TestPostMessage_BadRequests(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = postMessage(t, h, "  ", "oi")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), triagebot.ErrEmptyUserID.Error())
}

func TestPostMessage_BodyTooLarge(t *testing.T) {
	h := newHandler(t, httpadapter.WithMaxBodyBytes(16))
	w, _ := postMessage(t, h, "ana", strings.Repeat("a", 64))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type failingAssistant struct{}

var errStore = errors.New("store down")

func (failingAssistant) Handle(context.Context, string, string) (*triagebot.Reply, error) {
	return nil, errStore
}

func (failingAssistant) Restart(context.Context, string) (*triagebot.Reply, error) {
	return nil, errStore
}

func (failingAssistant) QueryCourses(context.Context, domain.CourseFilter) (string, error) {
	return "", errStore
}

func TestPostMessage_StoreFailure(t *testing.T) {
	h := httpadapter.NewHandler(failingAssistant{})

	w, _ := postMessage(t, h, "ana", "oi")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "store down")
}

func TestRestartSession(t *testing.T) {
	h := newHandler(t)
	postMessage(t, h, "ana", "Sou aluno")

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/ana/restart", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var reply triagebot.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	require.NotEmpty(t, reply.Messages)
	assert.Contains(t, reply.Messages[0].Text, "você é aluno")
	assert.False(t, reply.Terminated)
}

func TestGetCourses(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/courses?course=xyz-inexistente", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp httpadapter.CoursesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Text)
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("triagebot_turns_total 0\n"))
	})
	h := newHandler(t, httpadapter.WithMetrics(metrics))

	for path, want := range map[string]string{
		"/health":  `"status":"ok"`,
		"/info":    triagebot.Version,
		"/metrics": "triagebot_turns_total",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}
}

func TestMetricsNotMountedByDefault(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func dial(t *testing.T, h http.Handler, userID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + userID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) []httpadapter.Frame {
	t.Helper()
	var frames []httpadapter.Frame
	for {
		var f httpadapter.Frame
		require.NoError(t, conn.ReadJSON(&f))
		frames = append(frames, f)
		if f.Last {
			return frames
		}
	}
}

func TestWebSocket_Conversation(t *testing.T) {
	conn := dial(t, newHandler(t), "bia")

	require.NoError(t, conn.WriteJSON(httpadapter.Inbound{Text: "Sou aluno"}))
	frames := readReply(t, conn)
	require.Len(t, frames, 1)
	assert.Contains(t, frames[0].Text, "RA")

	require.NoError(t, conn.WriteJSON(httpadapter.Inbound{Text: "12345"}))
	readReply(t, conn)
	require.NoError(t, conn.WriteJSON(httpadapter.Inbound{Text: "ADS"}))
	frames = readReply(t, conn)
	assert.NotEmpty(t, frames[len(frames)-1].Options)

	require.NoError(t, conn.WriteJSON(httpadapter.Inbound{Text: "Cancelar"}))
	frames = readReply(t, conn)
	last := frames[len(frames)-1]
	assert.True(t, last.Terminated)
	assert.NotEmpty(t, last.ArtifactID)
}

func TestWebSocket_TurnFailure(t *testing.T) {
	conn := dial(t, httpadapter.NewHandler(failingAssistant{}), "bia")

	require.NoError(t, conn.WriteJSON(httpadapter.Inbound{Text: "oi"}))
	frames := readReply(t, conn)
	require.Len(t, frames, 1)
	assert.Equal(t, "internal error", frames[0].Error)
}
