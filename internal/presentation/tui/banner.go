package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                   _                         _ `, "#34d399"},
	{`   ___  _ __  | |__   ___   __ _ _ __ __| |`, "#2dd4bf"},
	{`  / _ \| '_ \ | '_ \ / _ \ / _' | '__/ _' |`, "#22d3ee"},
	{` | (_) | | | || |_) | (_) | (_| | | | (_| |`, "#38bdf8"},
	{`  \___/|_| |_||_.__/ \___/ \__,_|_|  \__,_|`, "#60a5fa"},
}

// PrintBanner writes the onboard banner to out, coloured when out is a terminal.
func PrintBanner(out *termenv.Output) {
	p := out.ColorProfile()
	fmt.Fprintln(out)
	for _, l := range bannerLines {
		fmt.Fprintln(out, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(out)
}

// NewOutput wraps w for styled printing. Colours degrade to plain text when w
// is not a terminal.
func NewOutput(w io.Writer) *termenv.Output {
	return termenv.NewOutput(w)
}
