package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/api"
	"github.com/fwojciec/probdoc/fs"
	"github.com/fwojciec/probdoc/gemini"
	"github.com/fwojciec/probdoc/goldmark"
	"github.com/fwojciec/probdoc/goquery"
	"github.com/fwojciec/probdoc/htmltomarkdown"
	probhttp "github.com/fwojciec/probdoc/http"
	"github.com/fwojciec/probdoc/prompt"
	"github.com/fwojciec/probdoc/readability"
	"github.com/fwojciec/probdoc/rod"
	"github.com/fwojciec/probdoc/scrape"
	probslog "github.com/fwojciec/probdoc/slog"
	"github.com/fwojciec/probdoc/sqlite"
	"github.com/fwojciec/probdoc/trafilatura"
	"github.com/fwojciec/probdoc/transform"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database holding the run ledger.
	DB *sqlite.DB

	// NewFetcher overrides the browser or HTTP fetcher, for end-to-end tests.
	NewFetcher scrape.FetcherFactory
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
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
	cli := &CLI{}
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	parser, err := kong.New(cli,
		kong.Name("probdoc"),
		kong.Description("Scrape programming exercise catalogs into Markdown documents"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'probdoc --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	if err := validateCommand(cli, cmd); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}

	deps.Logger = newLogger(stderr, cli.Verbose)
	if cli.DB != "" {
		m.DBPath = cli.DB
	}

	switch cmd {
	case "runs", "export":
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set PROBDOC_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()
		deps.Runs = sqlite.NewRunService(m.DB)
	}

	switch cmd {
	case "topics":
		deps.Session, err = m.newSession(cli.Globals, cli.Topics.URL, nil, "", deps.Logger)
	case "problem":
		deps.Session, err = m.newSession(cli.Globals, cli.Problem.URL, &cli.Problem.TransformFlags, "", deps.Logger)
	case "export":
		deps.Session, err = m.newSession(cli.Globals, cli.Export.URL, &cli.Export.TransformFlags, cli.Export.Out, deps.Logger)
		if deps.Session != nil {
			deps.Session.Runs = deps.Runs
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", probdoc.ErrorMessage(err))
		return err
	}
	if deps.Session != nil {
		defer deps.Session.Close()
	}

	return kongCtx.Run(deps)
}

// validateCommand checks the validate tags of the selected command.
func validateCommand(cli *CLI, cmd string) error {
	switch cmd {
	case "topics":
		return api.Validate(&cli.Topics)
	case "problem":
		return api.Validate(&cli.Problem)
	case "export":
		return api.Validate(&cli.Export)
	case "runs":
		return api.Validate(&cli.Runs)
	}
	return nil
}

// newSession wires a session for pageURL. Transform and export services are
// only built when tf and out are set.
func (m *Main) newSession(g Globals, pageURL string, tf *TransformFlags, out string, logger *slog.Logger) (*scrape.Session, error) {
	s := &scrape.Session{
		NewFetcher: m.fetcherFactory(g, logger),
		Logger:     logger,
	}

	catalog, err := goquery.NewCatalogParser(pageURL)
	if err != nil {
		return nil, err
	}
	s.Catalog = catalog

	var extractor probdoc.Extractor = readability.NewExtractor()
	if g.Extractor == "trafilatura" {
		extractor = trafilatura.NewExtractor()
	}
	s.Problems = goquery.NewProblemParser(
		goquery.WithConverter(htmltomarkdown.NewConverter(htmltomarkdown.WithDomain(siteRoot(pageURL)))),
		goquery.WithExtractor(extractor),
	)

	if tf == nil {
		return s, nil
	}

	checklists, err := tf.Checklists()
	if err != nil {
		return nil, err
	}

	var completer probdoc.Completer
	switch tf.Provider {
	case "gemini":
		completer = gemini.NewCompleter()
	default:
		var opts []probhttp.CompleterOption
		if tf.BaseURL != "" {
			opts = append(opts, probhttp.WithBaseURL(tf.BaseURL))
		}
		completer = probhttp.NewCompleter(opts...)
	}

	engineOpts := []transform.Option{transform.WithChecklists(checklists)}
	if tf.AI {
		// The local tokenizer loads its vocabulary on creation, so only pay
		// for it when prompts are actually sent.
		if tc, err := gemini.NewTokenCounter(gemini.DefaultModel); err != nil {
			logger.Debug("prompt token counting disabled", "error", err)
		} else {
			engineOpts = append(engineOpts, transform.WithTokenCounter(tc))
		}
	}

	s.Transformer = transform.NewEngine(
		prompt.NewBuilder(prompt.WithChecklists(checklists), prompt.WithLanguage(tf.Language)),
		probslog.NewLoggingCompleter(completer, logger),
		goldmark.NewValidator(),
		engineOpts...,
	)

	if out != "" {
		s.Exporter = probslog.NewLoggingExporter(
			fs.NewExporter(out, fs.WithChecklists(checklists), fs.WithSignature(tf.Signature)),
			logger,
		)
	}
	return s, nil
}

func (m *Main) fetcherFactory(g Globals, logger *slog.Logger) scrape.FetcherFactory {
	if m.NewFetcher != nil {
		return m.NewFetcher
	}
	return func(ctx context.Context) (probdoc.Fetcher, error) {
		if g.NoBrowser {
			return probslog.NewLoggingFetcher(probhttp.NewFetcher(), logger), nil
		}
		f, err := rod.NewFetcher(rod.WithLogger(logger), rod.WithScreenshotDir(g.Screenshots))
		if err != nil {
			return nil, err
		}
		return probslog.NewLoggingFetcher(f, logger), nil
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("PROBDOC_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "probdoc.db"
	}
	dir := filepath.Join(home, ".probdoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "probdoc.db")
}
