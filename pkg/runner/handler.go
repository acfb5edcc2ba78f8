package runner

import (
	"context"

	"github.com/unifecaf/triagebot"
)

// IOHandler defines the strategy for interacting with the user.
type IOHandler interface {
	// Output presents one reply of the assistant.
	Output(ctx context.Context, reply *triagebot.Reply) error

	// Input reads the next message of the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a message that does not come from the assistant.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms message text before it is written, e.g.
// markdown to ANSI.
type ContentRenderer func(string) (string, error)

// OptionsRenderer formats the selectable labels of a message.
type OptionsRenderer func([][]string) string
