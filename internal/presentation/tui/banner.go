package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the taxwizard banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).Profile
	lines := []struct {
		text  string
		color string
	}{
		{"  _                        _                  _ ", "#818cf8"},
		{" | |_ __ ___  ____ __ __ _(_)______ _ _ _ __| |", "#a78bfa"},
		{" |  _/ _` \\ \\/ /\\ V  V / | |_ / _` | '_/ _` |", "#c084fc"},
		{"  \\__\\__,_/_/\\_\\ \\_/\\_/  |_/__\\__,_|_| \\__,_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
