package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"vlooo/internal/project"
)

// progressDisplay renders pipeline progress. On a terminal it redraws a
// single line; otherwise it prints one line per stage transition.
type progressDisplay struct {
	out       io.Writer
	tty       bool
	lastLine  string
	lastStage project.Stage
}

func newProgressDisplay(out io.Writer) *progressDisplay {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressDisplay{out: out, tty: tty}
}

func (d *progressDisplay) render(snap project.Snapshot) {
	line := formatProgress(snap)
	if d.tty {
		if line == d.lastLine {
			return
		}
		pad := len(d.lastLine) - len(line)
		if pad < 0 {
			pad = 0
		}
		fmt.Fprintf(d.out, "\r%s%s", line, strings.Repeat(" ", pad))
		d.lastLine = line
		return
	}
	if snap.Stage != d.lastStage {
		fmt.Fprintln(d.out, line)
		d.lastStage = snap.Stage
	}
}

func (d *progressDisplay) finish() {
	if d.tty && d.lastLine != "" {
		fmt.Fprintln(d.out)
		d.lastLine = ""
	}
}

func formatProgress(snap project.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%3d%%] %s", snap.Progress, snap.Stage.Label())
	if snap.Detailed != nil && snap.Detailed.Total > 0 {
		fmt.Fprintf(&b, " (%d/%d", snap.Detailed.Current, snap.Detailed.Total)
		if snap.Detailed.Details != "" {
			fmt.Fprintf(&b, ", %s", snap.Detailed.Details)
		}
		b.WriteString(")")
	}
	if snap.Error != "" {
		fmt.Fprintf(&b, " error: %s", snap.Error)
	}
	return b.String()
}
