// Package main provides the summarize command, which prints an extractive
// summary of web articles, feed items, mailbox messages or local files.
//
// Usage: summarize [--url URL] [--size 0.1] [--verbose] [--email] [--feed URL] [--file PATH] [--output json]
package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"textdigest/internal/domain/entity"
	"textdigest/internal/infra/fetcher"
	"textdigest/internal/infra/provider"
	"textdigest/internal/infra/summarizer"
	"textdigest/internal/infra/textfile"
	"textdigest/internal/observability/logging"
	"textdigest/internal/usecase/digest"
)

// separator is printed after every summary when a run produced more than one.
const separator = "\n----------\n"

// UI contains the input and output streams of the command.
// Used for injecting buffers during testing.
type UI struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(ui).RunContext(ctx, os.Args); err != nil {
		fprintErr(ui.Err, err)
		stop()
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "summarize: %v\n", err)
}

func newApp(ui UI) *cli.App {
	return &cli.App{
		Name:      "summarize",
		Usage:     "print the most representative sentences of a text",
		Reader:    ui.In,
		Writer:    ui.Out,
		ErrWriter: ui.Err,
		// Errors are reported by main; the default handler would exit the process.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "summarize the article at `URL`",
			},
			&cli.Float64Flag{
				Name:    "size",
				Aliases: []string{"s"},
				Value:   summarizer.DefaultRatio,
				Usage:   "share of the sentences to keep, greater than 0 and at most 1",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log status messages while running",
			},
			&cli.BoolFlag{
				Name:  "email",
				Usage: "summarize messages received in the mailbox within --window",
			},
			&cli.StringFlag{
				Name:    "mailbox",
				EnvVars: []string{"MAIL"},
				Usage:   "mbox `PATH` read by --email",
			},
			&cli.DurationFlag{
				Name:  "window",
				Usage: "look-back window for --email; 0 reads everything since the start of yesterday",
			},
			&cli.StringSliceFlag{
				Name:  "feed",
				Usage: "summarize every item of the RSS or Atom feed at `URL`",
			},
			&cli.StringSliceFlag{
				Name:  "file",
				Usage: "summarize the text file at `PATH`, - for standard input",
			},
			&cli.StringFlag{
				Name:  "method",
				Value: string(summarizer.MethodFrequency),
				Usage: "sentence selection: frequency or lead",
			},
			&cli.BoolFlag{
				Name:  "fold-case",
				Usage: "count words case-insensitively",
			},
			&cli.IntFlag{
				Name:  "parallel",
				Value: digest.DefaultConfig().Parallelism,
				Usage: "number of sources and documents processed concurrently",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 2 * time.Minute,
				Usage: "abort the run after this duration",
			},
			&cli.StringFlag{
				Name:  "output",
				Value: "text",
				Usage: "output format: text or json",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "show a progress bar on standard error",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, ui)
		},
	}
}

// options are the validated command line settings.
type options struct {
	ratio       float64
	method      summarizer.Method
	foldCase    bool
	parallelism int
	timeout     time.Duration
	output      string
	progress    bool
	sources     []entity.Source
}

func parseOptions(c *cli.Context) (options, error) {
	opts := options{
		ratio:       c.Float64("size"),
		method:      summarizer.Method(c.String("method")),
		foldCase:    c.Bool("fold-case"),
		parallelism: c.Int("parallel"),
		timeout:     c.Duration("timeout"),
		output:      c.String("output"),
		progress:    c.Bool("progress"),
	}

	if err := entity.ValidateRatio(opts.ratio); err != nil {
		return opts, fmt.Errorf("invalid --size: %w", err)
	}
	if err := summarizer.ValidateMethod(string(opts.method)); err != nil {
		return opts, fmt.Errorf("invalid --method: %w", err)
	}
	if opts.output != "text" && opts.output != "json" {
		return opts, fmt.Errorf("invalid --output %q (must be text or json)", opts.output)
	}
	if opts.parallelism < 1 {
		return opts, fmt.Errorf("invalid --parallel %d (must be at least 1)", opts.parallelism)
	}

	for _, u := range c.StringSlice("url") {
		opts.sources = append(opts.sources, entity.Source{Kind: entity.SourceKindURL, Location: u})
	}
	for _, u := range c.StringSlice("feed") {
		opts.sources = append(opts.sources, entity.Source{Kind: entity.SourceKindFeed, Location: u})
	}
	if c.Bool("email") {
		path := c.String("mailbox")
		if path == "" {
			return opts, errors.New("--email needs a mailbox: set --mailbox or $MAIL")
		}
		opts.sources = append(opts.sources, entity.Source{
			Kind:     entity.SourceKindMailbox,
			Location: path,
			Window:   c.Duration("window"),
		})
	}
	for _, p := range c.StringSlice("file") {
		opts.sources = append(opts.sources, entity.Source{Kind: entity.SourceKindFile, Location: p})
	}

	// Without any source the text is read from standard input.
	if len(opts.sources) == 0 {
		opts.sources = append(opts.sources, entity.Source{Kind: entity.SourceKindFile, Location: textfile.Stdin})
	}
	return opts, nil
}

func run(c *cli.Context, ui UI) error {
	opts, err := parseOptions(c)
	if err != nil {
		return err
	}

	level := logging.LevelFromEnv()
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := logging.NewFromEnv(ui.Err, level)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(c.Context, opts.timeout)
	defer cancel()
	ctx = logging.WithRunID(ctx, logger)

	sum, err := summarizer.New(summarizer.Config{
		Method:   opts.method,
		Ratio:    opts.ratio,
		FoldCase: opts.foldCase,
	})
	if err != nil {
		return err
	}

	fetchConfig, err := fetcher.LoadConfigFromEnv(logger)
	if err != nil {
		logger.Warn("content fetching disabled due to configuration error", slog.Any("error", err))
		fetchConfig = fetcher.DefaultConfig()
		fetchConfig.Enabled = false
	}
	factory := provider.NewFactory(createHTTPClient(), fetchConfig).WithStdin(ui.In)
	sources, err := factory.BuildAll(opts.sources)
	if err != nil {
		return err
	}

	service := digest.NewService(sum, digest.Config{Ratio: opts.ratio, Parallelism: opts.parallelism})
	if opts.progress {
		bar := newProgressObserver(ui.Err)
		service.Observer = bar
		defer bar.Stop()
	}

	logger.Debug("generating summary",
		slog.Int("sources", len(sources)),
		slog.Float64("ratio", opts.ratio),
		slog.String("method", string(opts.method)))

	report, err := service.Run(ctx, sources...)
	if err != nil {
		return err
	}

	if opts.output == "json" {
		return outputJSON(ui.Out, report)
	}
	return outputText(ui.Out, report)
}

// outputText prints one summary per document. When there is more than one,
// each is followed by a dashed separator line.
func outputText(w io.Writer, report *digest.Report) error {
	var b strings.Builder
	for _, d := range report.Digests {
		b.WriteString(d.Summary)
		b.WriteString("\n")
		if len(report.Digests) > 1 {
			b.WriteString(separator)
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// outputJSON prints the whole report in JSON format.
func outputJSON(w io.Writer, report *digest.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// createHTTPClient creates the HTTP client used for articles and feeds.
// TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
