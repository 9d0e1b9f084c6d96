package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"rtlpatch/internal/driver"
	"rtlpatch/internal/patch"
)

// PrettyOpts настройки человекочитаемого вывода.
type PrettyOpts struct {
	// Color enables ANSI styling.
	Color bool
	// Quiet limits output to files that were changed or failed.
	Quiet bool
	// Timings appends per-pass durations when the driver collected them.
	Timings bool
}

// Pretty formats repair results in a human-readable form, one file per
// section:
// <path>: <n> fixes (or "clean" / error)
// followed by the non-zero per-pass counters.
func Pretty(w io.Writer, results []driver.Result, opts PrettyOpts) {
	pathStyle := color.New(color.Bold)
	okStyle := color.New(color.FgGreen)
	fixStyle := color.New(color.FgYellow)
	errStyle := color.New(color.FgRed)
	if !opts.Color {
		for _, c := range []*color.Color{pathStyle, okStyle, fixStyle, errStyle} {
			c.DisableColor()
		}
	}

	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(w, "%s: %s\n", pathStyle.Sprint(res.Path), errStyle.Sprintf("error: %v", res.Err))
			continue
		}

		total := res.Report.TotalFixes()
		if total == 0 {
			if !opts.Quiet {
				fmt.Fprintf(w, "%s: %s\n", pathStyle.Sprint(res.Path), okStyle.Sprint("clean"))
			}
			continue
		}

		fmt.Fprintf(w, "%s: %s\n", pathStyle.Sprint(res.Path), fixStyle.Sprintf("%d fixes", total))
		for _, pass := range res.Report.Passes() {
			if pass.Stats.IsZero() {
				continue
			}
			fmt.Fprintf(w, "  %-10s %s\n", pass.Name, formatStats(pass.Stats))
		}

		if opts.Timings && res.Timing != nil {
			for _, phase := range res.Timing.Phases {
				fmt.Fprintf(w, "  %-10s %7.2f ms\n", phase.Name, phase.DurationMS)
			}
			fmt.Fprintf(w, "  %-10s %7.2f ms\n", "total", res.Timing.TotalMS)
		}
	}
}

// Summary prints the one-line aggregate across all results.
func Summary(w io.Writer, results []driver.Result, opts PrettyOpts) {
	files, fixes, failed := 0, 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		files++
		fixes += res.Report.TotalFixes()
	}

	line := fmt.Sprintf("%d files, %d fixes", files, fixes)
	if failed > 0 {
		line += fmt.Sprintf(", %d failed", failed)
	}
	fmt.Fprintln(w, line)
}

func formatStats(s patch.PassStats) string {
	parts := make([]string, 0, 4)
	if s.Fixed > 0 {
		parts = append(parts, fmt.Sprintf("fixed %d", s.Fixed))
	}
	if s.Merged > 0 {
		parts = append(parts, fmt.Sprintf("merged %d", s.Merged))
	}
	if s.Removed > 0 {
		parts = append(parts, fmt.Sprintf("removed %d", s.Removed))
	}
	if s.Inserted > 0 {
		parts = append(parts, fmt.Sprintf("inserted %d", s.Inserted))
	}
	return strings.Join(parts, ", ")
}
