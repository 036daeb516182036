package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gersonkurz/officesetup/internal/options"
)

// fakeInstaller re-executes the test binary as the installer. The child
// records its arguments to argsFile and exits with exitCode.
func fakeInstaller(t *testing.T, argsFile string, exitCode int, calls *int) commandFunc {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*calls++
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"HELPER_ARGS_FILE="+argsFile,
			"HELPER_EXIT_CODE="+strconv.Itoa(exitCode),
		)
		return cmd
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) > 0 {
		args = args[1:]
	}
	os.WriteFile(os.Getenv("HELPER_ARGS_FILE"), []byte(strings.Join(args, "\n")), 0644)
	code, _ := strconv.Atoi(os.Getenv("HELPER_EXIT_CODE"))
	fmt.Println("fake installer output")
	os.Exit(code)
}

func newTestInstaller(t *testing.T, exitCode int) (*Installer, string, *int) {
	t.Helper()
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	calls := 0

	inst := New(`.\setup.exe`, filepath.Join(dir, "configuration.xml"))
	inst.Stdout = &bytes.Buffer{}
	inst.Stderr = &bytes.Buffer{}
	inst.command = fakeInstaller(t, argsFile, exitCode, &calls)
	return inst, argsFile, &calls
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("fake installer did not record arguments: %v", err)
	}
	return strings.Split(string(data), "\n")
}

func TestModeFlag(t *testing.T) {
	tests := []struct {
		action  options.Action
		want    string
		wantErr bool
	}{
		{options.Install, "/configure", false},
		{options.Download, "/download", false},
		{options.Action(0), "", true},
		{options.Action(42), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			got, err := ModeFlag(tt.action)
			if tt.wantErr {
				if !errors.Is(err, options.ErrInvalidAction) {
					t.Errorf("ModeFlag(%v) error = %v, want ErrInvalidAction", tt.action, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ModeFlag(%v) error = %v", tt.action, err)
			}
			if got != tt.want {
				t.Errorf("ModeFlag(%v) = %q, want %q", tt.action, got, tt.want)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	inst := New("", "")
	if inst.Path != DefaultPath() {
		t.Errorf("Path = %q, want %q", inst.Path, DefaultPath())
	}
	if inst.ConfigFile != "configuration.xml" {
		t.Errorf("ConfigFile = %q, want configuration.xml", inst.ConfigFile)
	}
	if !strings.HasSuffix(DefaultPath(), "setup.exe") || !strings.HasPrefix(DefaultPath(), ".") {
		t.Errorf("DefaultPath() = %q, want ./setup.exe", DefaultPath())
	}
}

func TestArgs(t *testing.T) {
	inst := New("setup.exe", "my config.xml")

	got, err := inst.Args(options.Download)
	if err != nil {
		t.Fatalf("Args() error = %v", err)
	}
	// A path with a space stays a single argument.
	if diff := cmp.Diff([]string{"/download", "my config.xml"}, got); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
}

func TestInvokeInstall(t *testing.T) {
	inst, argsFile, calls := newTestInstaller(t, 0)

	if err := inst.Invoke(context.Background(), options.Install); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 invocation, got %d", *calls)
	}
	want := []string{`.\setup.exe`, "/configure", inst.ConfigFile}
	if diff := cmp.Diff(want, readArgs(t, argsFile)); diff != "" {
		t.Errorf("installer args mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(inst.Stdout.(*bytes.Buffer).String(), "fake installer output") {
		t.Error("installer stdout was not relayed")
	}
}

func TestInvokeDownload(t *testing.T) {
	inst, argsFile, _ := newTestInstaller(t, 0)

	if err := inst.Invoke(context.Background(), options.Download); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	args := readArgs(t, argsFile)
	if len(args) < 2 || args[1] != "/download" {
		t.Errorf("installer args = %v, want /download mode", args)
	}
}

func TestInvokeInvalidActionRunsNothing(t *testing.T) {
	inst, argsFile, calls := newTestInstaller(t, 0)

	err := inst.Invoke(context.Background(), options.Action(0))
	if !errors.Is(err, options.ErrInvalidAction) {
		t.Errorf("Invoke() error = %v, want ErrInvalidAction", err)
	}
	if *calls != 0 {
		t.Errorf("expected no invocation, got %d", *calls)
	}
	if _, err := os.Stat(argsFile); !os.IsNotExist(err) {
		t.Error("installer ran for an invalid action")
	}
}

func TestInvokeExitCode(t *testing.T) {
	inst, _, _ := newTestInstaller(t, 17)

	err := inst.Invoke(context.Background(), options.Install)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Invoke() error = %v, want *ExitError", err)
	}
	if exitErr.Code != 17 {
		t.Errorf("ExitError.Code = %d, want 17", exitErr.Code)
	}
}

func TestInvokeMissingExecutable(t *testing.T) {
	inst := New(filepath.Join(t.TempDir(), "no-such-setup.exe"), "configuration.xml")
	inst.Stdout = &bytes.Buffer{}

	err := inst.Invoke(context.Background(), options.Install)
	if err == nil {
		t.Fatal("expected error for missing executable")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("missing executable should not be reported as exit code, got %v", err)
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "configuration.xml")
	if err := os.WriteFile(config, []byte("<Configuration/>"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	inst := New("setup.exe", config)
	if err := inst.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(config); !os.IsNotExist(err) {
		t.Error("configuration file should be removed")
	}

	// Second call on a missing file is fine.
	if err := inst.Cleanup(); err != nil {
		t.Errorf("Cleanup() on missing file error = %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "setup.exe")

	inst := New(exe, "configuration.xml")
	if inst.IsAvailable() {
		t.Error("IsAvailable() = true for missing file")
	}

	if err := os.WriteFile(exe, []byte("MZ"), 0755); err != nil {
		t.Fatalf("failed to write executable: %v", err)
	}
	if !inst.IsAvailable() {
		t.Error("IsAvailable() = false for existing file")
	}

	inst = New(dir, "configuration.xml")
	if inst.IsAvailable() {
		t.Error("IsAvailable() = true for a directory")
	}
}
