package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/unifecaf/triagebot"
)

// TextHandler implements the human-oriented text interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	Options  OptionsRenderer

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption configures a TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerOptions configures how selectable labels are printed.
func WithTextHandlerOptions(render OptionsRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Options = render
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Options: PlainOptions,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PlainOptions prints one bracketed label per cell, one keyboard row per line.
func PlainOptions(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		for i, label := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "[%s]", label)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour cancellation.
func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, reply *triagebot.Reply) error {
	for _, m := range reply.Messages {
		text := m.Text
		if h.Renderer != nil {
			if rendered, err := h.Renderer(text); err == nil {
				text = rendered
			}
		}
		if _, err := fmt.Fprintln(h.Writer, strings.TrimSpace(text)); err != nil {
			return err
		}
		if len(m.Options) > 0 && h.Options != nil {
			fmt.Fprintln(h.Writer, h.Options(m.Options))
		}
	}
	return nil
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		fmt.Fprint(h.Writer, "> ")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[Sistema] %s\n", msg)
	return err
}
