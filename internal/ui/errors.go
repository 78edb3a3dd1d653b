package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
	"github.com/jbolsens-legion/docker-selenium/internal/storage"
)

// ErrorViewer displays test failures in an interactive TUI
type ErrorViewer struct {
	storage storage.Storage
	out     io.Writer
}

var _ Viewer = (*ErrorViewer)(nil)

// NewErrorViewer creates a new ErrorViewer saving resolved marks through st
func NewErrorViewer(st storage.Storage, out io.Writer) *ErrorViewer {
	return &ErrorViewer{
		storage: st,
		out:     out,
	}
}

// View displays the first-pass failures of results in an interactive TUI
func (ev *ErrorViewer) View(results *domain.TestResultsOutput) error {
	failures := results.Failures()
	if len(failures) == 0 {
		color.New(color.FgGreen).Fprintln(ev.out, "✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	updateListItem := func(index int) {
		if index < 0 || index >= list.GetItemCount() {
			return
		}
		list.SetItemText(index, listItemText(failures[index], index), "")
	}

	for i, failure := range failures {
		list.AddItem(listItemText(failure, i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	// Right padding for the details view
	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// List on the left (1/3), details on the right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(headerText(failures))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(failures) {
			statsView.SetText(formatFailureStats(failures[index]))
			detailsView.SetText(formatFailureDetails(failures[index]))
		}
	}

	var saveErr error
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(failures) {
					ToggleResolved(results, failures, index)
					updateListItem(index)
					updateHeader()
					updateDetails()
					saveErr = ev.storage.SaveOutput(results)
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if saveErr != nil {
		return fmt.Errorf("failed to save resolved status: %w", saveErr)
	}
	return nil
}

// ToggleResolved flips the resolved mark of failures[index] and mirrors it
// into the results details so it can be saved
func ToggleResolved(results *domain.TestResultsOutput, failures []domain.TestFailure, index int) {
	f := &failures[index]
	f.Resolved = !f.Resolved
	results.Details[f.Index].Resolved = f.Resolved
}

func listItemText(failure domain.TestFailure, index int) string {
	name := failure.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", index+1)
	}
	tag := ""
	if failure.Flaky {
		tag = " [yellow](flaky)"
	}
	if failure.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s%s[white]", index+1, name, tag)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s%s[white]", index+1, name, tag)
}

func headerText(failures []domain.TestFailure) string {
	unresolved := 0
	for _, f := range failures {
		if !f.Resolved {
			unresolved++
		}
	}
	return fmt.Sprintf(" Test Failures (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ", len(failures), unresolved)
}

// formatFailureDetails formats a test failure for display using tview color tags ([red], [cyan], etc.)
func formatFailureDetails(failure domain.TestFailure) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "[red]✗ Test: %s[white]\n\n", tview.Escape(failure.TestName))
	if failure.Flaky {
		fmt.Fprintf(w, "[yellow]Passed on rerun[white]\n\n")
	} else {
		fmt.Fprintf(w, "[red]Failed on rerun too[white]\n\n")
	}

	if failure.Message != "" {
		fmt.Fprintf(w, "[yellow]Error:[white]\n%s\n\n", tview.Escape(failure.Message))
	}

	if len(failure.Failures) > 0 {
		fmt.Fprintf(w, "[yellow]Assertion Failures:[white]\n")
		for _, msg := range failure.Failures {
			fmt.Fprintf(w, "  %s\n", tview.Escape(msg))
		}
		fmt.Fprintf(w, "\n")
	}

	if failure.Output != "" {
		lines := strings.Split(strings.TrimRight(failure.Output, "\n"), "\n")
		fmt.Fprintf(w, "[yellow]Output:[white]\n")
		for i, line := range lines {
			if i < 20 {
				fmt.Fprintf(w, "  %s\n", tview.Escape(line))
			}
		}
		if len(lines) > 20 {
			fmt.Fprintf(w, "  [gray]... and %d more lines[white]\n", len(lines)-20)
		}
	}

	w.Flush()
	return builder.String()
}

// formatFailureStats formats the stats header for a test failure
func formatFailureStats(failure domain.TestFailure) string {
	group, method := splitCaseName(failure.TestName)
	return fmt.Sprintf("[cyan]group:[white] [yellow]%s[white]::[yellow]%s[white]\n", tview.Escape(group), tview.Escape(method))
}

// splitCaseName splits "TestTitle (ChromeTests)" into its group and method
func splitCaseName(name string) (group, method string) {
	open := strings.LastIndex(name, " (")
	if open < 0 || !strings.HasSuffix(name, ")") {
		return "Unknown group", name
	}
	return name[open+2 : len(name)-1], name[:open]
}
