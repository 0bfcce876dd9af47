package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestApp_WatchStartFailureReachesNotice(t *testing.T) {
	m, _ := newModel(t)
	missing := filepath.Join(t.TempDir(), "gone", "tasks.json")
	app := New(m, missing, nil)

	var msgs []tea.Msg
	app.watch(context.Background(), func(msg tea.Msg) { msgs = append(msgs, msg) })

	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	doc, ok := msgs[0].(DocumentMsg)
	if !ok || doc.Err == nil {
		t.Fatalf("expected DocumentMsg with error, got %#v", msgs[0])
	}

	m = send(t, m, doc)
	if !m.noticeErr || !strings.Contains(m.Notice(), "watch") {
		t.Errorf("expected watch error on the notice line, got %q", m.Notice())
	}
}
