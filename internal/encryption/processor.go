package encryption

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/crypterr"
	"github.com/tomerhc/broken/internal/ctr"
	"github.com/tomerhc/broken/internal/logging"
	"github.com/tomerhc/broken/internal/metrics"
)

// Processor handles the encryption, decryption and searching of files.
type Processor struct {
	// cfg contains runtime configuration options
	cfg *config.Config

	// key stores raw key bytes
	key []byte

	// engine runs the cipher, with block-level concurrency decided by the granularity
	engine *ctr.Engine

	// fileWorkers bounds the number of files in flight
	fileWorkers int

	// search is the compiled grep pattern
	search *regexp.Regexp

	logger  *logging.Logger
	metrics *metrics.Recorder

	// out receives search matches
	out io.Writer

	// random overrides the engine's nonce source
	random io.Reader
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger for per-file events.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithMetrics sets the recorder for per-file metrics.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(p *Processor) {
		p.metrics = rec
	}
}

// WithOutput sets the writer search matches are printed to. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Processor) {
		p.out = w
	}
}

// WithRandom replaces the nonce source.
func WithRandom(r io.Reader) Option {
	return func(p *Processor) {
		p.random = r
	}
}

// NewProcessor creates a new Processor for cfg.Files using key.
func NewProcessor(cfg *config.Config, key []byte, opts ...Option) (*Processor, error) {
	if len(key) == 0 {
		return nil, crypterr.Encrypt(crypterr.KindArgument, ErrNoKey)
	}

	processor := &Processor{
		cfg:    cfg,
		key:    key,
		logger: logging.Nop(),
		out:    os.Stdout,
	}

	for _, opt := range opts {
		opt(processor)
	}

	fileWorkers, blockWorkers := Plan(cfg.Granularity, len(cfg.Files), cfg.Parallel)
	processor.fileWorkers = fileWorkers

	engineOpts := []ctr.Option{ctr.WithWorkers(blockWorkers)}
	if processor.random != nil {
		engineOpts = append(engineOpts, ctr.WithRandom(processor.random))
	}

	engine, err := ctr.New(cfg.BlockSize, cfg.Rounds, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	processor.engine = engine

	if cfg.Mode == config.ModeGrep {
		re, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, crypterr.Decrypt(crypterr.KindArgument, fmt.Errorf("compiling pattern: %w", err))
		}

		processor.search = re
	}

	return processor, nil
}

// ProcessFiles concurrently processes all files specified in the configuration.
// A failing file never stops the others; the report holds the outcome of every file and the
// returned error, if any, is the first failure encountered.
func (p *Processor) ProcessFiles() (*Report, error) {
	start := time.Now()
	report := newReport(len(p.cfg.Files))
	results := make(chan Result, len(p.cfg.Files))

	p.logger.BatchStarted(
		len(p.cfg.Files),
		p.fileWorkers,
		p.engine.Workers(),
		ResolveGranularity(p.cfg.Granularity, len(p.cfg.Files)),
	)

	if p.cfg.Mode == config.ModeEncrypt {
		p.logger.Cipher(p.engine.BlockSize(), p.engine.Rounds())
	} else {
		p.logger.Debug("block size and rounds are read from each container")
	}

	group := errgroup.Group{}
	group.SetLimit(p.fileWorkers)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for result := range results {
			report.add(result)
			p.handle(result)
		}
	}()

	for _, file := range p.cfg.Files {
		group.Go(func() error {
			result := p.processFile(file)
			results <- result

			return result.Error
		})
	}

	err := group.Wait()

	close(results)

	<-done // Wait for printer to finish

	p.logger.BatchFinished(report.Processed, report.Errored, time.Since(start))

	if err != nil {
		return report, fmt.Errorf("processing files: %d of %d failed: %w", report.Errored, len(p.cfg.Files), err)
	}

	return report, nil
}

// handle reports a single outcome and deletes the source when requested.
// It runs on the printer goroutine only.
func (p *Processor) handle(result Result) {
	op := string(p.cfg.Mode)

	if result.Error != nil {
		p.logger.FileFailed(result.Input, result.Error)
		p.metrics.Failure(op, result.Elapsed)

		return
	}

	p.metrics.Success(op, result.Blocks, result.OutputSize, result.Elapsed)

	if p.cfg.Mode == config.ModeGrep {
		for _, line := range result.Matches {
			fmt.Fprintf(p.out, "%s:%s\n", result.Input, line)
		}

		return
	}

	p.logger.FileProcessed(result.Input, result.Output, result.Blocks, result.OutputSize, result.Elapsed)

	if p.cfg.Delete {
		p.logger.FileDeleted(result.Input, os.Remove(result.Input))
	}
}

// processFile dispatches a single file to the configured mode.
func (p *Processor) processFile(file string) Result {
	start := time.Now()

	var (
		result Result
		err    error
	)

	switch p.cfg.Mode {
	case config.ModeDecrypt:
		result, err = p.decryptFile(file)
	case config.ModeGrep:
		result, err = p.grepFile(file)
	default:
		result, err = p.encryptFile(file)
	}

	result.Input = file
	result.Elapsed = time.Since(start)
	result.Error = crypterr.WithPath(err, file)

	return result
}

// OutputPath generates the output file path based on the input filename
// and the configured suffixes for encryption/decryption.
func OutputPath(filename string, cfg *config.Config) string {
	ext := cfg.Suffixes.Encrypt

	if cfg.Mode != config.ModeEncrypt {
		filename = strings.TrimSuffix(filename, cfg.Suffixes.Encrypt)
		ext = cfg.Suffixes.Decrypt
	}

	return filepath.Join(filepath.Dir(filename), filepath.Base(filename)+ext)
}

// outputPath is OutputPath, refusing outputs that would replace their input.
func (p *Processor) outputPath(filename string) (string, error) {
	out := OutputPath(filename, p.cfg)

	if filepath.Clean(out) == filepath.Clean(filename) {
		return "", fmt.Errorf("%w: %q", ErrSameOutput, filename)
	}

	return out, nil
}
