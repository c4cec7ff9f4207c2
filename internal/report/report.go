// Package report renders pool layouts and statistics as human-readable text.
// Numbers are grouped for the printer's language with golang.org/x/text/message.
package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/blockpool/pool"
)

const ruleWidth = 40

// Printer formats numbers and reports for one language.
type Printer struct {
	p *message.Printer
}

// New returns a Printer for tag.
func New(tag language.Tag) *Printer {
	return &Printer{p: message.NewPrinter(tag)}
}

var std = New(language.English)

// Number formats n with English digit grouping.
func Number(n int) string { return std.Number(n) }

// Bytes formats n as a binary size with one decimal.
func Bytes(n int) string { return std.Bytes(n) }

// Number formats n with digit grouping.
func (pr *Printer) Number(n int) string {
	return pr.p.Sprintf("%d", n)
}

// Bytes formats n as "512 B", "1.5 KB", "4.0 MB" and so on, using 1024 as
// the unit.
func (pr *Printer) Bytes(n int) string {
	const unit = 1024
	if n < unit {
		return pr.p.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit && exp < 5; m /= unit {
		div *= unit
		exp++
	}
	return pr.p.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Percent formats part/whole as a percentage. A zero whole is 0%.
func (pr *Printer) Percent(part, whole int) string {
	if whole == 0 {
		return pr.p.Sprintf("%.1f%%", 0.0)
	}
	return pr.p.Sprintf("%.1f%%", float64(part)*100/float64(whole))
}

type writer struct {
	w   io.Writer
	pr  *Printer
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *writer) heading(title string) {
	w.printf("%s\n%s\n", title, strings.Repeat("=", ruleWidth))
}

func (w *writer) layout(l pool.Layout) {
	pr := w.pr
	w.printf("  Region Size:    %s bytes (%s)\n", pr.Number(l.RegionSize), pr.Bytes(l.RegionSize))
	w.printf("  Block Size:     %s bytes\n", pr.Number(l.BlockSize))
	w.printf("  Alignment:      %s\n", pr.Number(l.Alignment))
	w.printf("  Block Count:    %s\n", pr.Number(l.BlockCount))
	w.printf("  Bitmap:         offset %s, %s bytes\n", pr.Number(l.BitmapOffset), pr.Number(l.BitmapSize))
	w.printf("  Blocks Offset:  %s\n", pr.Number(l.BlocksOffset))
	w.printf("  Overhead:       %s bytes (%s)\n", pr.Number(l.Overhead()), pr.Percent(l.Overhead(), l.RegionSize))
	w.printf("  Slack:          %s bytes\n", pr.Number(l.Slack()))
}

// WriteLayout writes a layout report to out.
func (pr *Printer) WriteLayout(out io.Writer, l pool.Layout) error {
	w := &writer{w: out, pr: pr}
	w.heading("Pool Layout")
	w.layout(l)
	return w.err
}

// Source is what WriteStats reads from. *pool.Pool and *pool.FilePool
// satisfy it.
type Source interface {
	Layout() pool.Layout
	Stats() pool.Stats
}

// WriteStats writes a layout and occupancy report for src to out. name labels
// the pool, usually its file path; an empty name is omitted.
func (pr *Printer) WriteStats(out io.Writer, name string, src Source) error {
	w := &writer{w: out, pr: pr}
	if name != "" {
		w.heading("Pool Statistics: " + name)
	} else {
		w.heading("Pool Statistics")
	}
	w.layout(src.Layout())

	s := src.Stats()
	w.printf("\nOccupancy:\n")
	w.printf("  In Use:         %s (%s)\n", pr.Number(s.InUse), pr.Percent(s.InUse, s.BlockCount))
	w.printf("  Free:           %s (%s)\n", pr.Number(s.FreeCount), pr.Percent(s.FreeCount, s.BlockCount))
	w.printf("  Scan Cursor:    %s\n", pr.Number(s.Cursor))
	return w.err
}

// WriteLayout writes a layout report with English formatting.
func WriteLayout(out io.Writer, l pool.Layout) error { return std.WriteLayout(out, l) }

// WriteStats writes a stats report with English formatting.
func WriteStats(out io.Writer, name string, src Source) error {
	return std.WriteStats(out, name, src)
}
