package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func capture(t *testing.T, env string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	Configure(env)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		Configure("")
	})
	return &buf
}

func TestLogDisabled(t *testing.T) {
	for _, env := range []string{"", "0", "off", " False "} {
		buf := capture(t, env)
		Log("layout: hidden %d", 1)
		LogEnterExit("analysis.Analyze")()
		if Enabled() || buf.Len() != 0 {
			t.Errorf("ENTROPY_DEBUG=%q: enabled=%v wrote %q", env, Enabled(), buf.String())
		}
	}
}

func TestLogAllSubsystems(t *testing.T) {
	buf := capture(t, "1")
	Log("layout: cooled after %d ticks", 90)
	Log("watcher: %s changed", "graph.json")

	out := buf.String()
	for _, want := range []string{prefix, "layout: cooled after 90 ticks", "watcher: graph.json changed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLogSubsystemFilter(t *testing.T) {
	buf := capture(t, "Layout, analysis")
	Log("layout: kept")
	Log("watcher: dropped")
	Log("no subsystem here")
	LogEnterExit("analysis.Analyze")()
	LogEnterExit("engine.SetGraph")()

	out := buf.String()
	for _, want := range []string{"layout: kept", "-> analysis.Analyze", "<- analysis.Analyze"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"watcher", "no subsystem", "engine.SetGraph"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("filtered output contains %q:\n%s", unwanted, out)
		}
	}

	SetEnabled(true)
	Log("watcher: now visible")
	if !strings.Contains(buf.String(), "watcher: now visible") {
		t.Error("SetEnabled(true) should clear the subsystem filter")
	}
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	Configure("")
	restore, err := ToFile(path)
	if err != nil {
		t.Fatal(err)
	}
	restore()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled logging should not create the log file")
	}

	Configure("viewport")
	t.Cleanup(func() { Configure("") })
	restore, err = ToFile(path)
	if err != nil {
		t.Fatal(err)
	}
	Log("viewport: fit to %d nodes", 3)
	restore()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "viewport: fit to 3 nodes") {
		t.Errorf("log file = %q", data)
	}
	if _, err := ToFile(filepath.Join(path, "nested")); err == nil {
		t.Error("expected error opening a path under a file")
	}
}
