package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/kit/log/level"
)

func TestNewFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(&buf, Options{})
	defer closer.Close()

	level.Debug(logger).Log("msg", "hidden")
	level.Info(logger).Log("msg", "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record leaked at info level:\n%s", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("info record missing:\n%s", out)
	}
	if !strings.Contains(out, "level=info") {
		t.Errorf("level key missing:\n%s", out)
	}
}

func TestNewDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(&buf, Options{Debug: true})
	defer closer.Close()

	level.Debug(logger).Log("msg", "visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("debug record missing:\n%s", buf.String())
	}
}

func TestNewLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "officesetup.log")

	var buf bytes.Buffer
	logger, closer := New(&buf, Options{LogFile: path})
	level.Warn(logger).Log("msg", "installer failed", "code", 3)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"installer failed"`) {
		t.Errorf("log file missing JSON record:\n%s", data)
	}
	if !strings.Contains(buf.String(), "installer failed") {
		t.Errorf("stderr logger missing record:\n%s", buf.String())
	}
}

func TestNewReportsCallSite(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(&buf, Options{})
	defer closer.Close()

	level.Info(logger).Log("msg", "where")

	out := buf.String()
	if !strings.Contains(out, "caller=logging_test.go:") {
		t.Errorf("caller should point at the test file:\n%s", out)
	}
	if strings.Contains(out, "caller=level.go") {
		t.Errorf("caller points into the level filter:\n%s", out)
	}
}
