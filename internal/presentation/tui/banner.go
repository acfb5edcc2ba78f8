package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the REPL banner to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	title := termenv.String("  UniFECAF · Atendimento Virtual").Foreground(p.Color("#2563eb")).Bold()
	sub := termenv.String("  triagebot " + version + " · /start reinicia · exit sai").Foreground(p.Color("#64748b"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, sub)
	fmt.Fprintln(w)
}
