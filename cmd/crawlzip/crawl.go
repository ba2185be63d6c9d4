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
	"syscall"

	"github.com/nao1215/crawlzip/internal/archive"
	"github.com/nao1215/crawlzip/internal/config"
	"github.com/nao1215/crawlzip/internal/firecrawl"
	"github.com/nao1215/crawlzip/internal/materialize"
	"github.com/nao1215/crawlzip/internal/model"
	"github.com/nao1215/crawlzip/internal/pipeline"
	"github.com/spf13/cobra"
)

// errCrawlsFailed is returned when at least one crawl of a run failed.
var errCrawlsFailed = errors.New("one or more crawls failed")

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl websites and save the pages as markdown",
		Long: `Crawl sends each URL to the crawl service, waits for the crawl to finish and
writes the pages into a new directory under the output directory:

  <output>/<domain>_<YYYYMMDD_HHMMSS>/
    metadata.json
    index.md
    pages/000_<title>.md ...

With --zip the directory is packed into <domain>_<timestamp>.zip instead.

Examples:
  crawlzip crawl -u https://docs.firecrawl.dev
  crawlzip crawl -u https://example.com -d 3 -m 100
  crawlzip crawl -u blog.example.com -d 1 -m 25 --zip
  crawlzip crawl https://a.example.com https://b.example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringSliceP("url", "u", nil,
		"URL to crawl (repeatable; https:// is added when no scheme is given)")
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl depth (0-10)")
	cmd.Flags().IntP("max-pages", "m", config.DefaultMaxPages,
		"Maximum number of pages to crawl (1-1000)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Output directory for crawl results")
	cmd.Flags().BoolP("zip", "z", false,
		"Pack each result into a zip archive in the output directory")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of a single request to the crawl service")

	return cmd
}

// crawlOptions holds what runCrawl needs besides the crawler.
type crawlOptions struct {
	outputDir string
	tempDir   string
	zip       bool
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.APIKey == "" {
		fmt.Fprintf(out, "Error: %v.\n", firecrawl.ErrMissingAPIKey)
		fmt.Fprintln(out, "Please set your Firecrawl API key in the .env file:")
		fmt.Fprintf(out, "%s=fc-your-api-key-here\n", config.EnvAPIKey)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	urls, err := cmd.Flags().GetStringSlice("url")
	if err != nil {
		return err
	}
	urls = append(urls, args...)
	if len(urls) == 0 {
		return errors.New("no URL provided (use -u or pass URLs as arguments)")
	}

	requests := make([]model.CrawlRequest, 0, len(urls))
	for _, u := range urls {
		req, err := model.NewCrawlRequest(u, cfg.CrawlDepth, cfg.MaxPages)
		if err != nil {
			return fmt.Errorf("%s: %w", u, err)
		}
		requests = append(requests, req)
	}

	opts := crawlOptions{outputDir: cfg.OutputDir, tempDir: cfg.TempDir}
	if opts.zip, err = cmd.Flags().GetBool("zip"); err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, false, slog.LevelWarn)
	slog.SetDefault(logger)

	client, err := firecrawl.NewClient(firecrawl.Options{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.APIURL,
		Timeout:      cfg.Timeout,
		PollInterval: cfg.PollInterval,
		ProxyAddress: cfg.ProxyAddress,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, out, client, requests, opts, logger)
}

// runCrawl crawls every request and reports the outcome of each on w.
func runCrawl(ctx context.Context, w io.Writer, crawler pipeline.Crawler, requests []model.CrawlRequest, opts crawlOptions, logger *slog.Logger) error {
	m := materialize.New(materialize.WithLogger(logger))
	bp := pipeline.NewBatchProcessor(func() *pipeline.Pipeline {
		return pipeline.NewDefaultPipeline(crawler, m, opts.outputDir, opts.tempDir, opts.zip, logger)
	}, pipeline.WithBatchLogger(logger))

	for _, req := range requests {
		fmt.Fprintf(w, "Starting crawl of: %s (depth %d, max pages %d)\n", req.URL, req.Depth, req.MaxPages)
	}

	outcomes, err := bp.ProcessBatch(ctx, requests)

	failed := 0
	for _, o := range outcomes {
		if o.Err == nil && opts.zip {
			o.Err = saveArchive(o.Job, opts.outputDir)
		}
		if o.Err != nil {
			failed++
			fmt.Fprintf(w, "\nCrawl failed: %s: %v\n", o.Job.Request.URL, o.Err)
			continue
		}
		printOutcome(w, o.Job, opts.zip)
	}

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w (%d of %d)", errCrawlsFailed, failed, len(requests))
	}
	return nil
}

// saveArchive moves the job's temporary archive into outputDir under its
// download name. The temporary file is removed in any case.
func saveArchive(job *model.Job, outputDir string) (err error) {
	a := &archive.Archive{Path: job.ArchivePath}
	job.ArchivePath = ""
	defer func() {
		if rmErr := a.Remove(); rmErr != nil && err == nil {
			err = rmErr
		}
	}()

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return err
	}
	dst := filepath.Join(outputDir, job.ArchiveName)
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600) //nolint:gosec // name is derived from the sanitized domain label
	if err != nil {
		return fmt.Errorf("%w: %w", archive.ErrArchival, err)
	}
	if _, err := a.Deliver(f); err != nil {
		_ = f.Close()      //nolint:errcheck // already failing
		_ = os.Remove(dst) //nolint:errcheck // best effort
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	job.ArchivePath = dst
	return nil
}

// printOutcome describes a finished crawl.
func printOutcome(w io.Writer, job *model.Job, zipped bool) {
	res := job.Result
	fmt.Fprintf(w, "\nCrawl completed: %s\n", job.Request.URL)
	fmt.Fprintf(w, "Status: %s\n", res.StatusOrDefault())
	fmt.Fprintf(w, "Total pages: %d\n", res.Total)
	fmt.Fprintf(w, "Credits used: %d\n", res.CreditsUsed)
	if zipped {
		fmt.Fprintf(w, "Saved %d pages to: %s\n", job.SavedCount(), job.ArchivePath)
		return
	}
	fmt.Fprintf(w, "Saved %d pages to: %s\n", job.SavedCount(), job.RunDir)
	if md, err := materialize.ReadMetadata(job.RunDir); err == nil {
		fmt.Fprintf(w, "Crawl timestamp: %s\n", md.CrawlTimestamp)
	}
	fmt.Fprintln(w, "Files created:")
	fmt.Fprintf(w, "  - %s (crawl metadata)\n", filepath.Join(job.RunDir, materialize.MetadataFile))
	fmt.Fprintf(w, "  - %s (page index)\n", filepath.Join(job.RunDir, materialize.IndexFile))
	fmt.Fprintf(w, "  - %s%c (individual markdown files)\n", filepath.Join(job.RunDir, materialize.PagesDir), filepath.Separator)
}
