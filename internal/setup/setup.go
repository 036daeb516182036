// Package setup drives one run: write the configuration, hand it to the
// installer, remove it again.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/gersonkurz/officesetup/internal/catalog"
	"github.com/gersonkurz/officesetup/internal/cli"
	"github.com/gersonkurz/officesetup/internal/document"
	"github.com/gersonkurz/officesetup/internal/installer"
	"github.com/gersonkurz/officesetup/internal/options"
)

// ErrInstallerFailed marks errors that come from the installer process rather
// than from writing the configuration.
var ErrInstallerFailed = errors.New("installer failed")

// Runner executes initialize, populate, invoke and cleanup, in that order.
type Runner struct {
	Builder   *document.Builder
	Installer *installer.Installer
	Out       io.Writer
	Logger    log.Logger

	// DryRun stops after the configuration is written and keeps the file.
	DryRun  bool
	// Verbose prints the populated document before invoking the installer.
	Verbose bool
}

// New creates a runner for the given catalog, configuration file and
// installer path.
func New(cat catalog.Catalog, configFile, installerPath string) *Runner {
	if configFile == "" {
		configFile = installer.DefaultConfigFile
	}
	return &Runner{
		Builder:   document.NewBuilder(configFile, cat),
		Installer: installer.New(installerPath, configFile),
		Out:       os.Stdout,
		Logger:    log.NewNopLogger(),
	}
}

// Run performs the whole lifecycle once. The configuration file is removed
// even when the installer fails. Installer failures are returned wrapped in
// ErrInstallerFailed; everything else is a configuration or I/O error.
func (r *Runner) Run(ctx context.Context, rec options.Record) error {
	r.Installer.Logger = r.Logger

	fmt.Fprintln(r.Out, cli.Banner("Initializing Configuration File"))
	if err := r.Builder.Initialize(); err != nil {
		r.cleanup()
		return fmt.Errorf("initializing configuration: %w", err)
	}
	fmt.Fprintf(r.Out, "  Written: %s\n", cli.Filename(r.Builder.Path))

	fmt.Fprintln(r.Out, cli.Banner("Generating Configuration File"))
	cfg, err := r.Builder.Populate(rec)
	if err != nil {
		r.cleanup()
		return fmt.Errorf("generating configuration: %w", err)
	}

	excluded := cfg.ExcludedIDs()
	fmt.Fprintf(r.Out, "  Products: %s (%s-bit, %s)\n",
		strings.Join(rec.Products(), ", "), rec.Edition(), rec.Locale())
	fmt.Fprintf(r.Out, "  Excluded: %s apps\n", cli.Number(fmt.Sprint(len(excluded))))
	level.Debug(r.Logger).Log("msg", "configuration populated", "file", r.Builder.Path, "excluded", strings.Join(excluded, ","))

	if r.Verbose {
		if err := document.Dump(r.Out, cfg); err != nil {
			r.cleanup()
			return fmt.Errorf("printing configuration: %w", err)
		}
	}

	if r.DryRun {
		fmt.Fprintf(r.Out, "  [dry-run] configuration kept at %s\n", cli.Filename(r.Builder.Path))
		return nil
	}

	invokeErr := r.Installer.Invoke(ctx, rec.Action())
	cleanupErr := r.Installer.Cleanup()

	if invokeErr != nil {
		if cleanupErr != nil {
			level.Warn(r.Logger).Log("msg", "removing configuration failed", "err", cleanupErr)
		}
		if errors.Is(invokeErr, options.ErrInvalidAction) {
			return invokeErr
		}
		return fmt.Errorf("%w: %w", ErrInstallerFailed, invokeErr)
	}
	if cleanupErr != nil {
		return cleanupErr
	}

	fmt.Fprintf(r.Out, "  %s\n", cli.Success("Done: "+rec.Action().String()))
	return nil
}

func (r *Runner) cleanup() {
	if err := r.Installer.Cleanup(); err != nil {
		level.Warn(r.Logger).Log("msg", "removing configuration failed", "err", err)
	}
}
