package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/edgarscan/bluemonday"
	"github.com/fwojciec/edgarscan/fs"
	"github.com/fwojciec/edgarscan/goquery"
	"github.com/fwojciec/edgarscan/gzip"
	"github.com/fwojciec/edgarscan/htmltomarkdown"
	edgarhttp "github.com/fwojciec/edgarscan/http"
	edgarslog "github.com/fwojciec/edgarscan/slog"
	"github.com/fwojciec/edgarscan/sqlite"
	"github.com/joho/godotenv"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// EDGARSCAN_* variables may also come from a .env file in the working
	// directory; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Defaults for the --database and --data-dir flags.
	DBPath  string
	DataDir string

	// ConfigPath is a TOML file of flag defaults, read if it exists.
	ConfigPath string

	// BaseURL is the EDGAR archive root. Overridden in tests.
	BaseURL string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		DataDir:    defaultDataDir(),
		ConfigPath: "~/.edgarscan/config.toml",
		BaseURL:    edgarhttp.DefaultBaseURL,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	var configPaths []string
	if m.ConfigPath != "" {
		configPaths = append(configPaths, m.ConfigPath)
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("edgarscan"),
		kong.Description("Index, download and scan EDGAR filings"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
		kong.Configuration(ConfigLoader, configPaths...),
		kong.Vars{
			"db_path":  m.DBPath,
			"data_dir": m.DataDir,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		fmt.Fprintln(stderr, "error: no command specified")
		return fmt.Errorf("no command specified. Run 'edgarscan --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	if kongCtx.Command() == "version" {
		return kongCtx.Run(deps)
	}

	logger := newLogger(stderr, cli.Verbose)

	if cli.Database != sqlite.Memory {
		if err := os.MkdirAll(filepath.Dir(cli.Database), 0755); err != nil {
			fmt.Fprintf(stderr, "error: create database directory: %v\n", err)
			return err
		}
	}
	m.DB = sqlite.NewDB(cli.Database)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "error: failed to open database at %q: %v\n", cli.Database, err)
		fmt.Fprintln(stderr, "Hint: Set EDGARSCAN_DB to use a different database path")
		return err
	}
	defer m.Close()

	downloader := edgarhttp.NewDownloader(
		edgarhttp.WithUserAgent(cli.UserAgent),
		edgarhttp.WithRate(cli.Rate),
		edgarhttp.WithBaseURL(m.BaseURL),
	)

	deps.Logger = logger
	deps.Layout = fs.NewLayout(filepath.Join(cli.DataDir, "filings"))
	deps.IndexDir = filepath.Join(cli.DataDir, "index")
	deps.TmpDir = filepath.Join(cli.DataDir, "tmp")
	deps.BaseURL = m.BaseURL
	deps.UserAgent = cli.UserAgent
	deps.Threads = cli.Threads
	deps.FileType = cli.FileType

	deps.Index = sqlite.NewIndexService(m.DB)
	deps.Results = edgarslog.NewLoggingResultService(sqlite.NewResultService(m.DB), logger)
	deps.IndexDownloader = edgarslog.NewLoggingIndexDownloader(downloader, logger)
	deps.FilingDownloader = edgarslog.NewLoggingFilingDownloader(downloader, logger)
	deps.Opener = gzip.NewOpener()
	deps.Matcher = goquery.NewMatcher()
	deps.Sanitizer = bluemonday.NewSanitizer()
	deps.Converter = htmltomarkdown.NewConverter()

	return kongCtx.Run(deps)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "edgar.db"
	}
	return filepath.Join(home, ".edgarscan", "edgar.db")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "edgar"
	}
	return filepath.Join(home, ".edgarscan", "data")
}
