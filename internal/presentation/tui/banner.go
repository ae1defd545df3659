package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the carepath banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   ___ __ _ _ __ ___ _ __   __ _| |_| |__", "#94e2d5"},
		{"  / __/ _` | '__/ _ \\ '_ \\ / _` | __| '_ \\", "#89dceb"},
		{" | (_| (_| | | |  __/ |_) | (_| | |_| | | |", "#74c7ec"},
		{"  \\___\\__,_|_|  \\___| .__/ \\__,_|\\__|_| |_|", "#89b4fa"},
		{"                    |_|", "#b4befe"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
