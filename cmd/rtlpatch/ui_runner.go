package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"rtlpatch/internal/driver"
	"rtlpatch/internal/ui"
)

type patchOutcome struct {
	results []driver.Result
	err     error
}

func runPatchDirWithUI(ctx context.Context, title, dir string, files []string, opts driver.Options) ([]driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan patchOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.PatchDir(ctx, dir, optsCopy)
		outcomeCh <- patchOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
