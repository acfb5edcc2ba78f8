package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOptions(t *testing.T) {
	out := RenderOptions([][]string{{"Financeiro", "Secretaria"}, {"Cancelar"}})

	for _, label := range []string{"Financeiro", "Secretaria", "Cancelar"} {
		assert.Contains(t, out, label)
	}
	first := strings.Index(out, "Financeiro")
	last := strings.Index(out, "Cancelar")
	assert.Less(t, first, last)
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer()
	require.NoError(t, err)

	out, err := render("**Curso:** ADS")
	require.NoError(t, err)
	assert.Contains(t, out, "ADS")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "triagebot 1.2.3")
}
