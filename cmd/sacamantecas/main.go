package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/fs"
	smhttp "github.com/DervishD/sacamantecas/http"
	"github.com/DervishD/sacamantecas/ini"
	"github.com/DervishD/sacamantecas/rod"
	"github.com/DervishD/sacamantecas/skim"
	smslog "github.com/DervishD/sacamantecas/slog"
	"github.com/DervishD/sacamantecas/sqlite"
)

// Process exit codes. They are part of the scripting contract, so
// wrapper scripts can tell "nothing to do" and "finished with warnings"
// apart from real failures.
const (
	ExitSuccess     = 0   // everything went fine
	ExitNoSources   = 1   // no sources given, nothing was processed
	ExitWarnings    = 2   // finished, but some items or sources failed
	ExitError       = 3   // fatal error
	ExitInterrupted = 127 // canceled by the user
)

// errNoSources marks an invocation with nothing to process.
var errNoSources = errors.New("no sources given")

// errWarnings marks a run that finished, but not cleanly.
var errWarnings = errors.New("finished with warnings")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()
	os.Exit(m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// Main represents the program.
type Main struct {
	// Journal path. Set before calling Run().
	JournalPath string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		JournalPath: defaultJournalPath(),
	}
}

// Run executes the CLI with the given arguments and returns the process
// exit code.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := m.run(ctx, args, stdout, stderr)
	switch {
	case err == nil:
		return ExitSuccess
	case ctx.Err() != nil:
		fmt.Fprintln(stderr, "interrupted")
		return ExitInterrupted
	case errors.Is(err, errNoSources):
		fmt.Fprintln(stderr, err)
		return ExitNoSources
	case errors.Is(err, errWarnings):
		return ExitWarnings
	default:
		printError(stderr, err)
		return ExitError
	}
}

// run parses the arguments, wires the services the selected command
// needs and executes it.
func (m *Main) run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sacamantecas"),
		kong.Description("Extracts bibliographic metadata from library catalogue pages."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Vars{"version": "sacamantecas " + sacamantecas.Version},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help and version flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return errNoSources
	}

	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	case "--version":
		fmt.Fprintln(stdout, "sacamantecas", sacamantecas.Version)
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd, _, _ := strings.Cut(kongCtx.Command(), " ")

	// Nothing to do without sources, no point wiring anything up.
	if cmd == "skim" && len(cli.Skim.Sources) == 0 {
		return errNoSources
	}

	logger, closeLog, err := newLogger(cli, stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	deps.Logger = logger

	// Every command but runs works against the loaded profiles;
	// discover only needs them when it filters.
	if cmd == "skim" || cmd == "check" || (cmd == "discover" && !cli.Discover.All) {
		registry, err := ini.LoadFile(cli.Profiles)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: pass --profiles to use a different profiles file")
			return err
		}
		deps.Registry = registry
	}

	// Wire command-specific dependencies based on command
	if cmd == "skim" || cmd == "runs" {
		journalPath := m.JournalPath
		if cli.Journal != "" {
			journalPath = cli.Journal
		}
		db := sqlite.NewDB(journalPath)
		if err := db.Open(); err != nil {
			fmt.Fprintln(stderr, "Hint: set SACAMANTECAS_JOURNAL or pass --journal to use a different journal path")
			return fmt.Errorf("failed to open journal at %q: %w", journalPath, err)
		}
		journal := smslog.NewLoggingJournal(sqlite.NewJournal(db), logger)
		defer journal.Close()
		deps.Journal = journal
	}

	if cmd == "skim" {
		var retriever sacamantecas.Retriever
		if cli.Skim.Render {
			r, err := rod.NewRetriever(rod.WithTimeout(cli.Skim.Timeout))
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			retriever = r
		} else {
			retriever = smhttp.NewRetriever(smhttp.WithTimeout(cli.Skim.Timeout))
		}
		if cli.Skim.Dump {
			retriever = fs.NewDumpingRetriever(retriever, ".")
		}
		retriever = smslog.NewLoggingRetriever(retriever, logger)
		defer retriever.Close()

		var limiter sacamantecas.DomainLimiter
		if cli.Skim.Rate > 0 {
			limiter = skim.NewDomainLimiter(cli.Skim.Rate)
		}

		deps.Skimmer = &skim.Skimmer{
			Profiles:    smslog.NewLoggingRegistry(deps.Registry, logger),
			Retriever:   retriever,
			Extractors:  Extractors{},
			Journal:     deps.Journal,
			Limiter:     limiter,
			Concurrency: cli.Skim.Concurrency,
			Resume:      cli.Skim.Resume,
		}
	}

	if cmd == "discover" {
		deps.Sitemaps = smslog.NewLoggingSitemapService(
			smhttp.NewSitemapService(nil, smhttp.WithLimit(cli.Discover.Limit)), logger)
	}

	return kongCtx.Run(deps)
}

// newLogger builds the application logger: a text handler on stderr, or
// on the log file when one is given. By default only warnings and
// errors are logged; -v lowers the level to debug and --quiet raises it
// to errors only.
func newLogger(cli *CLI, stderr io.Writer) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	switch {
	case cli.Quiet:
		level = slog.LevelError
	case cli.Verbose:
		level = slog.LevelDebug
	}

	w := io.Writer(stderr)
	closeLog := func() {}
	if cli.LogFile != "" {
		f, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, sacamantecas.Errorf(sacamantecas.EINVALID, "cannot open log file %q: %v", cli.LogFile, err)
		}
		w = f
		closeLog = func() { f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeLog, nil
}

// printError reports err on w.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %s\n", errorText(err))
}

// errorText renders err for the terminal. Application errors print
// their message only; anything else is printed as-is.
func errorText(err error) string {
	if sacamantecas.ErrorCode(err) == sacamantecas.EINTERNAL {
		return err.Error()
	}
	return sacamantecas.ErrorMessage(err)
}

func defaultJournalPath() string {
	if path := os.Getenv("SACAMANTECAS_JOURNAL"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sacamantecas.db"
	}
	dir := filepath.Join(home, ".sacamantecas")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "journal.db")
}
