package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifecaf/triagebot"
	"github.com/unifecaf/triagebot/pkg/audit"
	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/runner"
)

func newBot(t *testing.T) *triagebot.Assistant {
	t.Helper()
	return triagebot.New(triagebot.WithExporter(audit.NewCSVExporter(t.TempDir())))
}

func TestRunner_TextConversation(t *testing.T) {
	in := strings.NewReader("oi\nNão sou aluno\nCancelar\nexit\nnunca lido\n")
	var out bytes.Buffer

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(in, &out)),
		runner.WithWelcome("Digite 'exit' para sair."),
	)
	require.NoError(t, r.Run(context.Background(), newBot(t)))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "[Sistema] Digite 'exit' para sair."))
	assert.Contains(t, got, "você é aluno")
	assert.Contains(t, got, "[Sou aluno]  [Não sou aluno]")
	assert.Contains(t, got, "Atendimento finalizado")
	assert.NotContains(t, got, "nunca lido")
}

func TestRunner_StopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("Sou aluno"), &out)))

	require.NoError(t, r.Run(context.Background(), newBot(t)))
	assert.Contains(t, out.String(), "RA")
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(""), &out)))
	assert.NoError(t, r.Run(ctx, newBot(t)))
	assert.Empty(t, out.String())
}

type failingAssistant struct{}

func (failingAssistant) Handle(context.Context, string, string) (*triagebot.Reply, error) {
	return nil, errors.New("store down")
}

func TestRunner_TurnFailure(t *testing.T) {
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("oi\n"), &bytes.Buffer{})))

	err := r.Run(context.Background(), failingAssistant{})
	assert.ErrorContains(t, err, "store down")
}

func TestRunner_JSONLines(t *testing.T) {
	in := strings.NewReader(`"Sou aluno"` + "\n" + `{"text":"12345"}` + "\n" + "ADS\n")
	var out bytes.Buffer

	r := runner.NewRunner(runner.WithInputHandler(runner.NewJSONHandler(in, &out)), runner.WithUserID("json-user"))
	require.NoError(t, r.Run(context.Background(), newBot(t)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var last triagebot.Reply
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
	require.NotEmpty(t, last.Messages)
	assert.NotEmpty(t, last.Messages[len(last.Messages)-1].Options)
}

func TestTextHandler_Output(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewTextHandler(strings.NewReader(""), &out,
		runner.WithTextHandlerRenderer(func(s string) (string, error) {
			return "Rendered: " + s, nil
		}),
		runner.WithTextHandlerOptions(func(rows [][]string) string {
			return "options:" + rows[0][0]
		}),
	)

	err := h.Output(context.Background(), &triagebot.Reply{Messages: []domain.Outbound{
		{Text: "Olá"},
		{Text: "Escolha", Options: [][]string{{"A", "B"}}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Rendered: Olá\nRendered: Escolha\noptions:A\n", out.String())
}

func TestPlainOptions(t *testing.T) {
	got := runner.PlainOptions([][]string{{"Financeiro", "Secretaria"}, {"Cancelar"}})
	assert.Equal(t, "[Financeiro]  [Secretaria]\n[Cancelar]", got)
}
