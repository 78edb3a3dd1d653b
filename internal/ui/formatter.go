package ui

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/fatih/color"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
	"github.com/jbolsens-legion/docker-selenium/internal/storage"
)

const (
	tableTop    = "┌─────────────────────────────────┬─────────────────────────────┐"
	tableMiddle = "├─────────────────────────────────┼─────────────────────────────┤"
	tableBottom = "└─────────────────────────────────┴─────────────────────────────┘"
)

// maxRecordedMillis caps case durations fed to the histogram at one hour
const maxRecordedMillis = 3_600_000

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// DurationStats summarizes how long first-pass cases took
type DurationStats struct {
	Count int64
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// ComputeDurations records every result in a millisecond histogram. Samples
// the histogram rejects are left out of the stats and reported in the error.
func ComputeDurations(results []domain.CaseResult) (DurationStats, error) {
	h := hdrhistogram.New(1, maxRecordedMillis, 3)
	err := recordDurations(h, results, maxRecordedMillis)
	if h.TotalCount() == 0 {
		return DurationStats{}, err
	}
	return DurationStats{
		Count: h.TotalCount(),
		P50:   time.Duration(h.ValueAtQuantile(50)) * time.Millisecond,
		P90:   time.Duration(h.ValueAtQuantile(90)) * time.Millisecond,
		P99:   time.Duration(h.ValueAtQuantile(99)) * time.Millisecond,
		Max:   time.Duration(h.Max()) * time.Millisecond,
	}, err
}

// recordDurations clamps every duration to [1, limit] milliseconds
func recordDurations(h *hdrhistogram.Histogram, results []domain.CaseResult, limit int64) error {
	var errs []error
	for _, r := range results {
		ms := min(max(int64(r.Seconds*1000), 1), limit)
		if err := h.RecordValue(ms); err != nil {
			errs = append(errs, fmt.Errorf("record duration of %s: %w", r.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (f *Formatter) banner(title string) {
	c := color.New(color.FgCyan)
	fmt.Fprintln(f.out)
	c.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	c.Fprintf(f.out, "║%s║\n", center(title, 63))
	c.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return fmt.Sprintf("%*s%s%*s", left, "", s, width-n-left, "")
}

func (f *Formatter) row(label string, value any, c *color.Color) {
	fmt.Fprintf(f.out, "│ %-31s │ ", label)
	c.Fprintf(f.out, "%-27v", value)
	fmt.Fprintln(f.out, " │")
}

// PrintSummary displays the statistics of a run, then its failed and flaky cases
func (f *Formatter) PrintSummary(output *domain.TestResultsOutput) {
	meta := output.Meta
	white := color.New(color.FgWhite)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	f.banner("Browser Test Statistics")

	rows := []struct {
		label string
		value any
		color *color.Color
	}{
		{"Run ID", meta.RunID, white},
		{"Seed", meta.Seed, white},
		{"Total Test Cases", meta.TotalTestCases, white},
		{"Passed Test Cases", meta.PassedTestCases, green},
		{"Failed First Pass", meta.FailedFirstPass, yellow},
		{"Flaky Test Cases", meta.FlakyTestCases, yellow},
		{"Failed Test Cases", meta.FailedTestCases, red},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", workersLabel(meta.Workers), white},
		{"Timestamp", meta.Timestamp, white},
	}

	fmt.Fprintln(f.out, tableTop)
	for i, r := range rows {
		if i > 0 {
			fmt.Fprintln(f.out, tableMiddle)
		}
		f.row(r.label, r.value, r.color)
	}
	fmt.Fprintln(f.out, tableBottom)

	stats, err := ComputeDurations(output.Details)
	if err != nil {
		yellow.Fprintf(f.out, "⚠ some case durations were not recorded: %v\n", err)
	}
	if stats.Count > 0 {
		fmt.Fprintln(f.out)
		color.New(color.FgCyan).Fprintf(f.out, "Case durations (%d cases)\n", stats.Count)
		fmt.Fprintf(f.out, "  p50 %-10s p90 %-10s p99 %-10s max %s\n",
			stats.P50.Round(10*time.Millisecond),
			stats.P90.Round(10*time.Millisecond),
			stats.P99.Round(10*time.Millisecond),
			stats.Max.Round(10*time.Millisecond))
	}

	fmt.Fprintln(f.out)
	var flaky, failed []domain.CaseResult
	for _, r := range output.Reruns {
		if r.Passed {
			flaky = append(flaky, r)
		} else {
			failed = append(failed, r)
		}
	}

	if len(flaky) > 0 {
		yellow.Fprintf(f.out, "⚠ %d test case(s) passed only on rerun:\n", len(flaky))
		for _, r := range flaky {
			yellow.Fprintf(f.out, "  |_ %s\n", r.Name)
		}
		for _, r := range flaky {
			fmt.Fprintf(f.out, "::warning::%s failed the parallel pass and passed on rerun\n", r.Name)
		}
	}

	if len(failed) == 0 {
		green.Fprintln(f.out, "✓ All tests passed!")
		return
	}

	red.Fprintf(f.out, "✗ %d test case(s) failed twice:\n", len(failed))
	for _, r := range failed {
		red.Fprintf(f.out, "  |_ %s\n", r.Name)
		if r.Error != "" {
			fmt.Fprintf(f.out, "       %s\n", r.Error)
		}
		for _, msg := range r.Failures {
			fmt.Fprintf(f.out, "       %s\n", msg)
		}
	}
}

func workersLabel(n int) string {
	if n <= 0 {
		return "unbounded"
	}
	return fmt.Sprint(n)
}

// PrintCaseTree prints every group with its cases. failed is optional; cases in
// it are marked with [F] in red (from the last run).
func (f *Formatter) PrintCaseTree(groups []domain.TestGroup, failed map[string]struct{}) {
	total := 0
	for _, g := range groups {
		total += len(g.Cases())
	}
	color.New(color.FgGreen).Fprintf(f.out, "Found %d test case(s) in %d group(s):\n\n", total, len(groups))

	cyan := color.New(color.FgCyan)
	for i, g := range groups {
		isLastGroup := i == len(groups)-1
		if isLastGroup {
			cyan.Fprintf(f.out, "└── %s\n", g.Name())
		} else {
			cyan.Fprintf(f.out, "├── %s\n", g.Name())
		}

		cases := g.Cases()
		for j, c := range cases {
			isLastCase := j == len(cases)-1

			var prefix string
			if isLastGroup {
				if isLastCase {
					prefix = "    └── "
				} else {
					prefix = "    ├── "
				}
			} else {
				if isLastCase {
					prefix = "│   └── "
				} else {
					prefix = "│   ├── "
				}
			}

			marker := ""
			if _, ok := failed[c.Name()]; ok {
				marker = " " + color.RedString("[F]")
			}
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, color.YellowString(c.Name()), marker)
		}
	}
}

// FailedNames returns the names of cases that failed twice in output
func FailedNames(output *domain.TestResultsOutput) map[string]struct{} {
	failed := make(map[string]struct{})
	for _, r := range output.Reruns {
		if !r.Passed {
			failed[r.Name] = struct{}{}
		}
	}
	return failed
}

// PrintHistory prints the recorded history of every case
func (f *Formatter) PrintHistory(cases []storage.CaseHistory) {
	if len(cases) == 0 {
		color.New(color.FgYellow).Fprintln(f.out, "No runs recorded yet")
		return
	}

	f.banner("Browser Test History")
	fmt.Fprintf(f.out, "%-48s %6s %6s %6s %6s %9s\n", "Case", "Runs", "Passed", "Flaky", "Failed", "Avg")
	for _, c := range cases {
		line := fmt.Sprintf("%-48s %6d %6d %6d %6d %8.1fs", c.Name, c.Runs, c.Passed, c.Flaky, c.Failed, c.AvgSeconds)
		switch {
		case c.Failed > 0:
			color.New(color.FgRed).Fprintln(f.out, line)
		case c.Flaky > 0:
			color.New(color.FgYellow).Fprintln(f.out, line)
		default:
			fmt.Fprintln(f.out, line)
		}
	}
}
