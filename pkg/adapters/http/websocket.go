package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/unifecaf/triagebot"
)

const writeWait = 10 * time.Second

// Inbound is a frame sent by a websocket client.
type Inbound struct {
	Text string `json:"text"`
}

// Frame is sent to a websocket client, one per outbound message.
// Last and Terminated are set on the final frame of a reply.
type Frame struct {
	Text       string     `json:"text,omitempty"`
	Options    [][]string `json:"options,omitempty"`
	Last       bool       `json:"last,omitempty"`
	Terminated bool       `json:"terminated,omitempty"`
	ArtifactID string     `json:"artifact_id,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// ServeWebSocket handles GET /ws/{userID}. Each inbound frame is one turn of
// the user named in the path.
func (s *Server) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, triagebot.ErrEmptyUserID.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "user_id", userID, "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.maxBody)
	s.logger.Info("WebSocket connected", "user_id", userID)

	ctx := r.Context()
	for {
		var in Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("WebSocket read ended", "user_id", userID, "err", err)
			}
			return
		}

		reply, err := s.Assistant.Handle(ctx, userID, in.Text)
		if err != nil {
			s.logger.Error("WebSocket turn failed", "user_id", userID, "err", err)
			if werr := s.write(conn, Frame{Error: "internal error", Last: true}); werr != nil {
				return
			}
			continue
		}
		if err := s.writeReply(conn, reply); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				s.logger.Warn("WebSocket write failed", "user_id", userID, "err", err)
			}
			return
		}
	}
}

func (s *Server) writeReply(conn *websocket.Conn, reply *triagebot.Reply) error {
	if len(reply.Messages) == 0 {
		return s.write(conn, Frame{Last: true, Terminated: reply.Terminated, ArtifactID: reply.ArtifactID})
	}
	for i, m := range reply.Messages {
		f := Frame{Text: m.Text, Options: m.Options}
		if i == len(reply.Messages)-1 {
			f.Last = true
			f.Terminated = reply.Terminated
			f.ArtifactID = reply.ArtifactID
		}
		if err := s.write(conn, f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) write(conn *websocket.Conn, f Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(f)
}
