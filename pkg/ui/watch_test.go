package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/entropy/pkg/watcher"
)

func startWatcher(t *testing.T) (*watcher.Watcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(`{"nodes":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := watcher.NewWatcher(path, watcher.WithDebounce(20*time.Millisecond), watcher.WithForcePoll(true),
		watcher.WithPollInterval(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	return w, path
}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	got := make(chan tea.Msg, 1)
	go func() { got <- cmd() }()
	select {
	case msg := <-got:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("watch command still blocked after 2s")
		return nil
	}
}

func TestWatchFileCmdReportsChange(t *testing.T) {
	w, path := startWatcher(t)
	defer w.Stop()

	cmd := WatchFileCmd(w)
	time.Sleep(30 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"nodes":[{"id":"a"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := runCmd(t, cmd).(FileChangedMsg); !ok {
		t.Error("expected FileChangedMsg after a write")
	}
}

func TestWatchFileCmdReturnsAfterStop(t *testing.T) {
	w, _ := startWatcher(t)
	cmd := WatchFileCmd(w)
	go func() {
		time.Sleep(20 * time.Millisecond)
		w.Stop()
	}()
	if msg := runCmd(t, cmd); msg != nil {
		t.Errorf("stopped watcher produced %T", msg)
	}
}
