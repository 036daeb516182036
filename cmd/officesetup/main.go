// Copyright (c) 2013-2026, Gerson Kurz, NG Branch Technology GmbH
// MIT License

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/peterbourgon/ff/v3"

	"github.com/gersonkurz/officesetup/internal/catalog"
	"github.com/gersonkurz/officesetup/internal/cli"
	"github.com/gersonkurz/officesetup/internal/installer"
	"github.com/gersonkurz/officesetup/internal/logging"
	"github.com/gersonkurz/officesetup/internal/options"
	"github.com/gersonkurz/officesetup/internal/setup"
)

// Version is set via ldflags at build time
var Version = "1.0.0-dev"

// Exit codes
const (
	exitOK              = 0
	exitFailure         = 1
	exitInstallerFailed = 3
	exitUsage           = 10
)

type cliArgs struct {
	action        string
	product       string
	edition       string
	lang          string
	installerPath string
	configFile    string
	catalogFile   string
	logFile       string
	dryRun        bool
	verbose       bool
	debug         bool
	strict        bool
	noColor       bool
	status        bool
	help          bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs, args := newFlagSet(stderr)

	if err := ff.Parse(fs, rewriteArgs(fs, argv),
		ff.WithEnvVarPrefix("OFFICESETUP"),
		ff.WithConfigFileFlag("flagfile"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintf(stderr, "%s %v\n", cli.Error("Error:"), err)
		printUsage(stderr)
		return exitUsage
	}

	if args.noColor {
		cli.DisableColors()
	}
	if args.help {
		printUsage(stdout)
		return exitOK
	}

	logger, closer := logging.New(stderr, logging.Options{Debug: args.debug, LogFile: args.logFile})
	defer closer.Close()

	cat := catalog.Default()
	if args.catalogFile != "" {
		var err error
		if cat, err = catalog.LoadFile(args.catalogFile); err != nil {
			level.Error(logger).Log("msg", "loading catalog", "file", args.catalogFile, "err", err)
			return exitFailure
		}
	}

	if args.status {
		printStatus(stdout, args, cat)
		return exitOK
	}

	rec, err := buildRecord(args, cat)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", cli.Error("Error:"), err)
		printUsage(stderr)
		return exitUsage
	}

	runner := setup.New(cat, args.configFile, args.installerPath)
	runner.Out = stdout
	runner.Installer.Stdout = stdout
	runner.Installer.Stderr = stderr
	runner.Logger = logger
	runner.DryRun = args.dryRun
	runner.Verbose = args.verbose

	return exitCode(logger, runner.Run(ctx, rec), args.strict)
}

// exitCode maps a run result to the process exit status. Installer failures
// are only logged unless strict is set.
func exitCode(logger log.Logger, err error, strict bool) int {
	if err == nil {
		return exitOK
	}

	if errors.Is(err, setup.ErrInstallerFailed) {
		var exitErr *installer.ExitError
		if errors.As(err, &exitErr) {
			level.Warn(logger).Log("msg", "installer reported failure", "code", exitErr.Code)
		} else {
			level.Warn(logger).Log("msg", "installer could not be run", "err", err)
		}
		if strict {
			return exitInstallerFailed
		}
		return exitOK
	}

	level.Error(logger).Log("msg", "setup failed", "err", err)
	return exitFailure
}

func buildRecord(args *cliArgs, cat catalog.Catalog) (options.Record, error) {
	if strings.TrimSpace(args.product) == "" {
		return options.Record{}, fmt.Errorf("%w: -product is required", options.ErrMissingProducts)
	}
	action, err := options.ParseAction(args.action)
	if err != nil {
		return options.Record{}, err
	}
	return options.New(action, options.SplitProducts(args.product), args.edition, args.lang, cat)
}

func newFlagSet(output io.Writer) (*flag.FlagSet, *cliArgs) {
	args := &cliArgs{}
	fs := flag.NewFlagSet("officesetup", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {}

	fs.StringVar(&args.action, "action", "install", "install | download")
	fs.StringVar(&args.product, "product", "", "comma separated products to install")
	fs.StringVar(&args.edition, "edition", "64", "product edition, e.g. 64/32")
	fs.StringVar(&args.lang, "lang", "zh-cn", "install language, e.g. en-us/zh-cn")
	fs.StringVar(&args.action, "a", "install", "short for -action")
	fs.StringVar(&args.product, "p", "", "short for -product")
	fs.StringVar(&args.edition, "e", "64", "short for -edition")
	fs.StringVar(&args.lang, "l", "zh-cn", "short for -lang")
	fs.StringVar(&args.installerPath, "installer", installer.DefaultPath(), "path to the Office Deployment Tool setup.exe")
	fs.StringVar(&args.configFile, "config-file", installer.DefaultConfigFile, "configuration file to generate")
	fs.StringVar(&args.catalogFile, "catalog", "", "TOML file overriding the product catalog")
	fs.StringVar(&args.logFile, "log-file", "", "also write JSON logs to this file")
	fs.BoolVar(&args.dryRun, "dry-run", false, "write the configuration only, do not run the installer")
	fs.BoolVar(&args.verbose, "verbose", false, "print the generated configuration")
	fs.BoolVar(&args.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&args.strict, "strict", false, "exit non-zero when the installer fails")
	fs.BoolVar(&args.noColor, "no-color", false, "disable coloured output")
	fs.BoolVar(&args.status, "status", false, "show installer and catalog status")
	fs.String("flagfile", "", "read flags from this file (one 'flag value' per line)")

	fs.BoolVar(&args.help, "help", false, "show help")
	fs.BoolVar(&args.help, "h", false, "show help")
	fs.BoolVar(&args.help, "?", false, "show help")

	return fs, args
}

// rewriteArgs converts /FLAG and /FLAG:value into --flag and --flag=value
// for flags the set knows about. Anything else, including absolute paths,
// passes through unchanged.
func rewriteArgs(fs *flag.FlagSet, argv []string) []string {
	out := make([]string, 0, len(argv))
	for _, arg := range argv {
		if !strings.HasPrefix(arg, "/") || len(arg) < 2 {
			out = append(out, arg)
			continue
		}
		name, value, hasValue := strings.Cut(arg[1:], ":")
		name = strings.ToLower(name)
		if fs.Lookup(name) == nil {
			out = append(out, arg)
			continue
		}
		if hasValue {
			out = append(out, "--"+name+"="+value)
		} else {
			out = append(out, "--"+name)
		}
	}
	return out
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "officesetup - Version %s\n", Version)
	fmt.Fprintf(w, "Microsoft Office downloader/installer [%s/%s]\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: officesetup [OPTIONS] -product NAME[,NAME...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  /ACTION:install|download   What setup.exe should do (default install), short -a")
	fmt.Fprintln(w, "  /PRODUCT:LIST              Products to install, comma separated (required), short -p")
	fmt.Fprintln(w, "  /EDITION:64|32             Office client edition (default 64), short -e")
	fmt.Fprintln(w, "  /LANG:TAG                  Install language, e.g. en-us (default zh-cn), short -l")
	fmt.Fprintln(w, "  /INSTALLER:PATH            Path to setup.exe (default .\\setup.exe)")
	fmt.Fprintln(w, "  /CONFIG-FILE:PATH          Configuration file (default configuration.xml)")
	fmt.Fprintln(w, "  /CATALOG:PATH              TOML product catalog override")
	fmt.Fprintln(w, "  /FLAGFILE:PATH             Read flags from a file")
	fmt.Fprintln(w, "  /LOG-FILE:PATH             Also write JSON logs to PATH")
	fmt.Fprintln(w, "  /DRY-RUN                   Write the configuration, skip setup.exe")
	fmt.Fprintln(w, "  /VERBOSE                   Print the generated configuration")
	fmt.Fprintln(w, "  /DEBUG                     Debug logging")
	fmt.Fprintln(w, "  /STRICT                    Exit 3 when setup.exe fails")
	fmt.Fprintln(w, "  /NO-COLOR                  Disable coloured output")
	fmt.Fprintln(w, "  /STATUS                    Show installer and catalog status")
	fmt.Fprintln(w, "  /?, /HELP                  Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every option can also be set as OFFICESETUP_<OPTION>, e.g. OFFICESETUP_LANG=en-us.")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Products: %s\n", strings.Join(catalog.Default().Products(), ", "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  officesetup /PRODUCT:Word,Excel /LANG:en-us            Install Word and Excel")
	fmt.Fprintln(w, "  officesetup -action download -product Word -edition 32")
	fmt.Fprintln(w, "  officesetup -a install -p Word -e 64 -l zh-cn")
	fmt.Fprintln(w, "  officesetup /DRY-RUN /VERBOSE /PRODUCT:Visio           Show the configuration only")
}

func printStatus(w io.Writer, args *cliArgs, cat catalog.Catalog) {
	fmt.Fprintf(w, "officesetup - Version %s\n", Version)
	fmt.Fprintf(w, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Office Deployment Tool:")
	inst := installer.New(args.installerPath, args.configFile)
	if inst.IsAvailable() {
		fmt.Fprintf(w, "  Location: %s\n", cli.Filename(inst.Path))
	} else {
		fmt.Fprintf(w, "  Location: %s %s\n", inst.Path, cli.Warning("(not found)"))
		fmt.Fprintln(w, "  Download it from https://www.microsoft.com/download/details.aspx?id=49117")
	}
	fmt.Fprintf(w, "  Configuration file: %s", inst.ConfigFile)
	if _, err := os.Stat(inst.ConfigFile); err == nil {
		fmt.Fprint(w, cli.Warning(" (exists, will be replaced)"))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Catalog:")
	source := "(built-in)"
	if args.catalogFile != "" {
		source = args.catalogFile
	}
	fmt.Fprintf(w, "  Source:     %s\n", source)
	fmt.Fprintf(w, "  Product ID: %s\n", cat.ProductID())
	fmt.Fprintf(w, "  Products:   %s\n", cli.Number(fmt.Sprint(cat.Len())))
	for _, p := range cat.Products() {
		fmt.Fprintf(w, "    - %s\n", p)
	}
}
