package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/flickfinder/internal/batch"
	"codeberg.org/snonux/flickfinder/internal/cli"
	"codeberg.org/snonux/flickfinder/internal/finder"
	"codeberg.org/snonux/flickfinder/internal/flickr"
	"codeberg.org/snonux/flickfinder/internal/output"
	"codeberg.org/snonux/flickfinder/internal/query"
)

// ErrMissingAPIKey is returned when no Flickr API key is configured
var ErrMissingAPIKey = errors.New("missing Flickr API key: set " + cli.APIKeyEnv + ", --api-key or " + cli.KeyFlickrAPIKey)

// Processor handles the main search logic
type Processor struct {
	flags  *cli.Flags
	finder *finder.Finder
	writer *output.Writer // nil with --no-save
	logger logrus.FieldLogger
	out    io.Writer

	// queue carries reporter callbacks to the goroutine running a search
	queue chan func()
}

// NewProcessor creates a processor from the flags. A missing API key or
// an invalid endpoint is reported here, before any search runs.
func NewProcessor(flags *cli.Flags, logger logrus.FieldLogger) (*Processor, error) {
	apiKey := flags.APIKey
	if apiKey == "" {
		apiKey = cli.GetAPIKey()
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint, err := query.ParseEndpoint(flags.Endpoint)
	if err != nil {
		return nil, err
	}

	cfg := flickr.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.Timeout = flags.Timeout
	cfg.RequestsPerSecond = flags.Rate
	cfg.Burst = flags.Burst

	client, err := flickr.NewClient(cfg, flickr.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	p := &Processor{
		flags:  flags,
		logger: logger,
		out:    os.Stdout,
		queue:  make(chan func()),
	}

	builder := query.NewBuilder(apiKey, query.WithHalfExtents(flags.HalfWidth, flags.HalfHeight))
	p.finder = finder.New(builder, client,
		finder.WithLogger(logger),
		finder.WithDispatch(p.dispatch),
	)

	if !flags.NoSave {
		p.writer = output.NewWriter(output.Options{
			Directory:    flags.OutputDir,
			Overwrite:    flags.Overwrite,
			MaxSizeBytes: cfg.MaxImageBytes,
		}, logger)
	}

	return p, nil
}

func (p *Processor) dispatch(fn func()) {
	p.queue <- fn
}

// ProcessBatch runs one search per entry of the batch file. A failed
// search is counted and the batch continues.
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("batch file %s contains no searches", p.flags.BatchFile)
	}

	processedCount := 0
	errorCount := 0
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d (line %d)\n", i+1, len(entries), entry.Line)
		if err := p.ProcessSingle(ctx, entry.Criteria); err != nil {
			p.logger.WithError(err).WithField("line", entry.Line).Warn("Search failed")
			errorCount++
			continue
		}
		processedCount++
	}

	fmt.Fprintf(p.out, "\n=== Batch Summary ===\n")
	fmt.Fprintf(p.out, "Total searches: %d\n", len(entries))
	fmt.Fprintf(p.out, "Found: %d\n", processedCount)
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Failed: %d\n", errorCount)
	}
	if p.writer != nil && processedCount > 0 {
		fmt.Fprintf(p.out, "Photos saved to: %s\n", p.writer.Directory())
	}
	fmt.Fprintf(p.out, "=====================\n")

	if errorCount > 0 {
		return fmt.Errorf("%d of %d searches failed", errorCount, len(entries))
	}
	return nil
}

// ProcessSingle runs one search and saves the photo unless saving is off
func (p *Processor) ProcessSingle(ctx context.Context, criteria query.Criteria) error {
	result, err := p.search(ctx, criteria)
	if err != nil {
		return err
	}

	if p.writer == nil {
		fmt.Fprintf(p.out, "  Source: %s\n", result.SourceURL)
		return nil
	}

	saved, err := p.writer.Save(result)
	if err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}
	fmt.Fprintf(p.out, "  Saved: %s\n", saved.ImagePath)
	return nil
}

// search starts the finder and runs its reporter callbacks on the calling
// goroutine until the terminal report arrives
func (p *Processor) search(ctx context.Context, criteria query.Criteria) (*finder.Result, error) {
	var (
		result   *finder.Result
		err      error
		finished bool
	)

	reporter := &consoleReporter{
		out:      p.out,
		criteria: criteria,
		done: func(r *finder.Result, e error) {
			result, err, finished = r, e, true
		},
	}

	done := p.finder.Start(ctx, criteria, reporter)
	for !finished {
		fn := <-p.queue
		fn()
	}
	<-done

	return result, err
}
