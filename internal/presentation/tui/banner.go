package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the turtle banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`     _____     ____ `, "#4ade80"},
		{`    /      \  |  o |`, "#34d399"},
		{`   |        |/ ___\|`, "#2dd4bf"},
		{`   |_________/     `, "#22d3ee"},
		{`   |_|_| |_|_|      `, "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("   turtle "+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
