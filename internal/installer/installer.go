// Package installer runs the Office Deployment Tool against a configuration file.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/gersonkurz/officesetup/internal/options"
)

// Mode flags understood by setup.exe.
const (
	ModeConfigure = "/configure"
	ModeDownload  = "/download"
)

// DefaultConfigFile is the configuration file name, relative to the working
// directory.
const DefaultConfigFile = "configuration.xml"

// ExitError reports that the installer ran but exited non-zero.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("installer exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// commandFunc matches exec.CommandContext.
type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Installer invokes setup.exe for a configuration file.
type Installer struct {
	Path       string
	ConfigFile string
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     log.Logger

	command commandFunc
}

// New creates an installer for the executable at path and the given
// configuration file. An empty path selects DefaultPath.
func New(path, configFile string) *Installer {
	if path == "" {
		path = DefaultPath()
	}
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	return &Installer{
		Path:       path,
		ConfigFile: configFile,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Logger:     log.NewNopLogger(),
		command:    exec.CommandContext,
	}
}

// ModeFlag maps an action onto the setup.exe mode flag.
func ModeFlag(action options.Action) (string, error) {
	switch action {
	case options.Install:
		return ModeConfigure, nil
	case options.Download:
		return ModeDownload, nil
	}
	return "", fmt.Errorf("%w: %s", options.ErrInvalidAction, action)
}

// Args returns the argument list passed to the installer, without the
// executable itself.
func (i *Installer) Args(action options.Action) ([]string, error) {
	mode, err := ModeFlag(action)
	if err != nil {
		return nil, err
	}
	return []string{mode, i.ConfigFile}, nil
}

// Invoke runs the installer and waits for it to exit. No timeout is applied;
// cancelling ctx kills the child. The child inherits the working directory,
// environment and standard streams.
func (i *Installer) Invoke(ctx context.Context, action options.Action) error {
	args, err := i.Args(action)
	if err != nil {
		return err
	}

	fmt.Fprintf(i.Stdout, "  Running: %s %s\n", i.Path, strings.Join(args, " "))
	level.Debug(i.Logger).Log("msg", "starting installer", "path", i.Path, "args", strings.Join(args, " "))

	cmd := i.command(ctx, i.Path, args...)
	cmd.Stdout = i.Stdout
	cmd.Stderr = i.Stderr

	err = cmd.Run()
	if err == nil {
		level.Debug(i.Logger).Log("msg", "installer finished", "code", 0)
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		level.Debug(i.Logger).Log("msg", "installer finished", "code", exitErr.ExitCode())
		return &ExitError{Code: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("running installer: %w", err)
}

// Cleanup removes the configuration file. A missing file is not an error.
func (i *Installer) Cleanup() error {
	if err := os.Remove(i.ConfigFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing configuration: %w", err)
	}
	return nil
}

// DefaultPath returns setup.exe in the current directory. The explicit
// "./" prefix keeps exec from searching PATH.
func DefaultPath() string {
	return "." + string(filepath.Separator) + "setup.exe"
}

// IsAvailable checks if the installer executable exists.
func (i *Installer) IsAvailable() bool {
	if !strings.ContainsRune(i.Path, filepath.Separator) && !strings.ContainsRune(i.Path, '/') {
		_, err := exec.LookPath(i.Path)
		return err == nil
	}
	info, err := os.Stat(i.Path)
	return err == nil && !info.IsDir()
}
