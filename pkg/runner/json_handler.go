package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/unifecaf/triagebot"
)

// JSONHandler implements IOHandler with JSON Lines: every reply is one JSON
// object, every input line is either a JSON string, an object with a "text"
// field, or plain text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, reply *triagebot.Reply) error {
	return h.Encoder.Encode(reply)
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	line, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSpace(line)

	var s string
	if json.Unmarshal([]byte(line), &s) == nil {
		return s, nil
	}
	var msg struct {
		Text string `json:"text"`
	}
	if strings.HasPrefix(line, "{") && json.Unmarshal([]byte(line), &msg) == nil {
		return msg.Text, nil
	}
	return line, nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"system": msg})
}
