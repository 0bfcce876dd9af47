package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NathanEdg/pulse/internal/store"
	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the Bubble Tea program.
type App struct {
	program   *tea.Program
	model     Model
	watchPath string
	reload    func() (*store.Document, error)
}

// New creates the application. When watchPath is set, external edits to that
// file are reconciled into the session while it runs. reload, if given,
// re-reads the document through its owner instead of the watcher's copy.
func New(model Model, watchPath string, reload func() (*store.Document, error)) *App {
	return &App{model: model, watchPath: watchPath, reload: reload}
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigChan; ok {
			a.program.Send(tea.Quit())
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if a.watchPath != "" {
		go a.watch(ctx, a.program.Send)
	}

	_, err := a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)
	return err
}

// watch forwards reloads of watchPath to send until ctx is done. A watcher
// that fails to start is reported once as a DocumentMsg error.
func (a *App) watch(ctx context.Context, send func(tea.Msg)) {
	err := store.Watch(ctx, a.watchPath, store.DefaultDebounce, func(doc *store.Document, err error) {
		if err == nil && a.reload != nil {
			doc, err = a.reload()
		}
		send(DocumentMsg{Doc: doc, Err: err})
	})
	if err != nil {
		send(DocumentMsg{Err: err})
	}
}
