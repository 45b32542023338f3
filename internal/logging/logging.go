// Package logging provides the leveled logger used by the command line tool.
// Messages go to stderr through the standard log package unless a log file is
// configured, in which case they are written to a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"github.com/natefinch/lumberjack"
)

// Config selects where log messages go.
type Config struct {
	// File is the log file path. Empty means stderr.
	File string `yaml:"file"`
	// MaxSize is the size in megabytes at which the file is rotated.
	MaxSize int `yaml:"maxSize"`
	// MaxAge is the number of days rotated files are kept.
	MaxAge int `yaml:"maxAge"`
}

var (
	verbose atomic.Bool
	rotator *lumberjack.Logger
)

// SetVerbose enables Debugf output.
func SetVerbose(v bool) { verbose.Store(v) }

// Setup redirects the standard logger to a rotating file if c names one.
func Setup(c *Config) {
	if c == nil || c.File == "" {
		return
	}
	fmt.Printf("Sending log messages to: %s\n", c.File)
	rotator = &lumberjack.Logger{
		Filename: c.File,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
	log.SetOutput(rotator)
}

// SetOutput sends log messages to w. Tests use it to capture output.
func SetOutput(w io.Writer) { log.SetOutput(w) }

// Shutdown closes the log file, if any.
func Shutdown() {
	if rotator != nil {
		log.Printf(" INFO closing log file %s", rotator.Filename)
		rotator.Close()
		rotator = nil
	}
}

// Debugf logs at DEBUG level when verbose output is enabled.
func Debugf(format string, args ...interface{}) {
	if verbose.Load() {
		log.Printf(" DEBUG "+format, args...)
	}
}

// Infof logs at INFO level.
func Infof(format string, args ...interface{}) {
	log.Printf(" INFO "+format, args...)
}

// Warningf logs at WARNING level.
func Warningf(format string, args ...interface{}) {
	log.Printf(" WARNING "+format, args...)
}

// Errorf logs at ERROR level.
func Errorf(format string, args ...interface{}) {
	log.Printf(" ERROR "+format, args...)
}
