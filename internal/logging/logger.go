// Package logging wraps zerolog with the events emitted while encrypting and decrypting files.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog for structured logging.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger writing JSON lines to output at the given level.
// An unknown level falls back to info.
func New(output io.Writer, level string) *Logger {
	if output == nil {
		output = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return &Logger{
		logger: zerolog.New(output).Level(lvl).With().Timestamp().Logger(),
	}
}

// NewConsole creates a human readable logger for terminals.
func NewConsole(output io.Writer, level string) *Logger {
	if output == nil {
		output = os.Stderr
	}

	return New(zerolog.ConsoleWriter{Out: output, TimeFormat: time.TimeOnly}, level)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithRun adds the run_id context to the logger.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{logger: l.logger.With().Str("run_id", runID).Logger()}
}

// WithOperation adds the op context ("encrypt", "decrypt", "grep") to the logger.
func (l *Logger) WithOperation(op string) *Logger {
	return &Logger{logger: l.logger.With().Str("op", op).Logger()}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(err error, msg string) {
	l.logger.Error().Err(err).Msg(msg)
}

// BatchStarted logs the start of a batch.
func (l *Logger) BatchStarted(files, fileWorkers, blockWorkers int, granularity string) {
	l.logger.Debug().
		Int("files", files).
		Int("file_workers", fileWorkers).
		Int("block_workers", blockWorkers).
		Str("granularity", granularity).
		Msg("batch started")
}

// Cipher logs the parameters new containers are written with.
func (l *Logger) Cipher(blockSize, rounds int) {
	l.logger.Debug().
		Int("block_size", blockSize).
		Int("rounds", rounds).
		Msg("cipher")
}

// FileProcessed logs a successfully processed file.
func (l *Logger) FileProcessed(input, output string, blocks int, size int64, elapsed time.Duration) {
	l.logger.Info().
		Str("input", input).
		Str("output", output).
		Int("blocks", blocks).
		Int64("size", size).
		Dur("elapsed", elapsed).
		Msg("processed")
}

// FileFailed logs a file whose processing failed.
func (l *Logger) FileFailed(input string, err error) {
	l.logger.Error().
		Str("input", input).
		Err(err).
		Msg("processing failed")
}

// FileDeleted logs the removal of a source file after processing.
func (l *Logger) FileDeleted(input string, err error) {
	if err != nil {
		l.logger.Error().Str("input", input).Err(err).Msg("deleting source failed")

		return
	}

	l.logger.Info().Str("input", input).Msg("deleted")
}

// BatchFinished logs the summary of a batch.
func (l *Logger) BatchFinished(processed, errored int, elapsed time.Duration) {
	l.logger.Debug().
		Int("processed", processed).
		Int("errored", errored).
		Dur("elapsed", elapsed).
		Msg("batch finished")
}
