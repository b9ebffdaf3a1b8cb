package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"secureformat/internal/wipe"
)

const (
	defaultWidth = 80
	minBarWidth  = 10
)

// progress renders wipe events. On a terminal it redraws a single bar
// line; otherwise it prints one line per status message.
type progress struct {
	out     io.Writer
	tty     bool
	width   int
	percent int
}

func newProgress(out io.Writer) *progress {
	p := &progress{out: out, width: defaultWidth}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			p.width = w
		}
	}
	return p
}

// Consume renders events until the channel is closed.
func (p *progress) Consume(events <-chan wipe.Event) {
	for ev := range events {
		switch ev.Kind {
		case wipe.EventProgress:
			p.percent = ev.Percent
			if p.tty {
				fmt.Fprint(p.out, "\r"+renderBar(p.width, p.percent))
			}
		case wipe.EventStatus:
			if p.tty {
				fmt.Fprint(p.out, "\r"+strings.Repeat(" ", p.width-1)+"\r")
			}
			stamp := time.Now().Format("15:04:05")
			msg := ev.Message
			if strings.Contains(strings.ToLower(msg), "error") || strings.Contains(strings.ToLower(msg), "failed") {
				msg = color.YellowString(msg)
			}
			fmt.Fprintf(p.out, "[%s] %s\n", stamp, msg)
			if p.tty {
				fmt.Fprint(p.out, renderBar(p.width, p.percent))
			}
		}
	}
	if p.tty {
		fmt.Fprintln(p.out)
	}
}

// renderBar draws "Progress: |####----| 42%" fitted to width.
func renderBar(width, percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	barWidth := width - len("Progress: || 100%") - 1
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	if barWidth > 50 {
		barWidth = 50
	}

	filled := barWidth * percent / 100
	return fmt.Sprintf("Progress: |%s%s| %3d%%", strings.Repeat("#", filled), strings.Repeat("-", barWidth-filled), percent)
}
