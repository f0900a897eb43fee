package main

import (
	"fmt"
	"io"
	"os"

	"github.com/AlexZinkM/rent-collector/internal/common"
	"github.com/AlexZinkM/rent-collector/internal/model"

	"github.com/mattn/go-isatty"
)

// progressPrinter writes progress events, rewriting one line on a terminal
// and appending lines otherwise.
type progressPrinter struct {
	w         io.Writer
	tty       bool
	pending   bool // a terminal line is waiting for its newline
	reclaimed uint64
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, tty: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *progressPrinter) handle(ev model.ProgressEvent) {
	p.reclaimed += ev.Reclaimed

	line := fmt.Sprintf("[%s %d/%d] %s  %s", ev.Phase, ev.Current, ev.Total, shortAddress(ev.Wallet), ev.Status)
	if p.reclaimed > 0 {
		line += fmt.Sprintf("  (total %s SOL)", common.ShortSOL(p.reclaimed))
	}

	if !p.tty {
		fmt.Fprintln(p.w, line)
		return
	}
	fmt.Fprint(p.w, "\r\033[K"+line)
	p.pending = true
}

// done ends the current terminal line.
func (p *progressPrinter) done() {
	if p.pending {
		fmt.Fprintln(p.w)
		p.pending = false
	}
}

func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}
