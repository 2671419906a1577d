package handler

import (
	"bufio"
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// LogWriter is an interface for writing statements executed by handlers.
// Some implementations support colorization and masking of sensitive values.
type LogWriter interface {
	io.Writer
	Printf(format string, v ...any)
	WithTable(table string) LogWriter
	WithSecrets(secrets []string) LogWriter
}

// MakeLogWriter makes a log writer for handlers. In verbose mode statements are printed to stdout,
// colorized by table name. Otherwise they go to the standard log on debug level.
func MakeLogWriter(verbose, monochrome bool) LogWriter {
	if verbose {
		return &colorizedWriter{wr: os.Stdout, monochrome: monochrome}
	}
	return &stdLogWriter{level: "DEBUG"}
}

// colorizedWriter is a writer that colorizes the output based on the table name
type colorizedWriter struct {
	wr         io.Writer
	table      string
	secrets    []string
	monochrome bool
}

// WithTable creates a new colorizedWriter with the given table name
func (s *colorizedWriter) WithTable(table string) LogWriter {
	return &colorizedWriter{wr: s.wr, table: table, secrets: s.secrets, monochrome: s.monochrome}
}

// WithSecrets creates a new colorizedWriter masking the given values
func (s *colorizedWriter) WithSecrets(secrets []string) LogWriter {
	return &colorizedWriter{wr: s.wr, table: s.table, secrets: secrets, monochrome: s.monochrome}
}

// Printf writes the given text to io.Writer with the colorized table prefix
func (s *colorizedWriter) Printf(format string, v ...any) {
	fmt.Fprintf(s, format, v...)
}

// Write writes the given byte slice with the colorized table prefix for each line
func (s *colorizedWriter) Write(p []byte) (n int, err error) {
	colorizer := s.tableColorizer(s.table)
	scanner := bufio.NewScanner(bytes.NewReader(p))
	for scanner.Scan() {
		line := maskSecrets(scanner.Text(), s.secrets)
		if s.table != "" {
			line = fmt.Sprintf("[%s] %s", s.table, line)
		}
		if _, err = io.WriteString(s.wr, colorizer("%s\n", line)); err != nil {
			return 0, err
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// tableColorizer returns a function that formats a string with a color based on the table name
func (s *colorizedWriter) tableColorizer(table string) func(format string, a ...any) string {
	colors := []color.Attribute{
		color.FgHiRed, color.FgHiGreen, color.FgHiYellow,
		color.FgHiBlue, color.FgHiMagenta, color.FgHiCyan,
		color.FgRed, color.FgGreen, color.FgYellow,
		color.FgBlue, color.FgMagenta, color.FgCyan,
	}
	c := colors[int(crc32.ChecksumIEEE([]byte(table)))%len(colors)]
	if s.monochrome {
		c = color.Reset
	}
	return color.New(c).SprintfFunc()
}

// stdLogWriter writes to the standard log with a log level
type stdLogWriter struct {
	level   string
	table   string
	secrets []string
}

func (w *stdLogWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		if line == "" {
			continue
		}
		w.Printf("%s", line)
	}
	return len(p), nil
}

// Printf writes the given text to log with the table prefix and log level
func (w *stdLogWriter) Printf(format string, v ...any) {
	msg := maskSecrets(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"), w.secrets)
	if w.table != "" {
		log.Printf("[%s] [%s] %s", w.level, w.table, msg)
		return
	}
	log.Printf("[%s] %s", w.level, msg)
}

// WithTable sets the table prefix
func (w *stdLogWriter) WithTable(table string) LogWriter {
	return &stdLogWriter{level: w.level, table: table, secrets: w.secrets}
}

// WithSecrets sets values to mask
func (w *stdLogWriter) WithSecrets(secrets []string) LogWriter {
	return &stdLogWriter{level: w.level, table: w.table, secrets: secrets}
}

func maskSecrets(s string, secrets []string) string {
	for _, secret := range secrets {
		if strings.TrimSpace(secret) == "" {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(secret) + `\b`) // matches the secret only if it appears as a whole word
		s = re.ReplaceAllString(s, "****")
	}
	return s
}
