package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"prosecheck/internal/driver"
	"prosecheck/internal/ui"
)

type checkOutcome struct {
	results []driver.FileResult
	err     error
}

func runCheckWithUI(ctx context.Context, title string, files []string, checker driver.Checker, opts driver.Options) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckFiles(ctx, checker, files, opts)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// ctrl+c может завершить UI раньше воркеров
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
