// Package logger writes the cycle's human-readable report: timestamped lines
// with a marker character, "·" for progress, "!" for warnings and "✖" for
// errors. The reported values are part of the engine's observable contract,
// so tests capture the transcript through a Recorder.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// Logger is a line-oriented report writer. Multi-line messages are split and
// every line gets its own prefix.
type Logger struct {
	mu         sync.Mutex
	out        io.Writer
	now        func() time.Time
	timestamps bool
}

// New returns a Logger writing timestamped lines to stdout.
func New() *Logger {
	return &Logger{out: os.Stdout, now: time.Now, timestamps: true}
}

// NewWriter returns a Logger writing timestamped lines to the given writer.
func NewWriter(out io.Writer, now func() time.Time) *Logger {
	return &Logger{out: out, now: now, timestamps: true}
}

// Log writes a progress message.
func (l *Logger) Log(message string) {
	l.write("·", message)
}

// Logf writes a formatted progress message.
func (l *Logger) Logf(format string, args ...any) {
	l.write("·", fmt.Sprintf(format, args...))
}

// Warnf writes a formatted warning.
func (l *Logger) Warnf(format string, args ...any) {
	l.write("!", "WARNING: "+fmt.Sprintf(format, args...))
}

// Errorf writes a formatted error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.write("✖", "ERROR: "+fmt.Sprintf(format, args...))
}

// LoggedErrorf logs an error message and returns it as an error, so fatal
// conditions are reported exactly once before propagating.
func (l *Logger) LoggedErrorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	l.Errorf("%s", err.Error())
	return err
}

func (l *Logger) write(char, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range strings.Split(message, "\n") {
		if l.timestamps {
			ts := l.now().UTC().Format(timeLayout)
			fmt.Fprintf(l.out, "%s %s %s\n", ts, char, line)
		} else {
			fmt.Fprintf(l.out, "%s %s\n", char, line)
		}
	}
}

// Recorder is a Logger that keeps the transcript in memory, without
// timestamps, so tests can assert on the reported values.
type Recorder struct {
	Logger
	buf *bytes.Buffer
}

// NewRecorder returns a Recorder with a fixed clock.
func NewRecorder() *Recorder {
	buf := &bytes.Buffer{}
	return &Recorder{
		Logger: Logger{out: buf, now: func() time.Time { return time.Time{} }},
		buf:    buf,
	}
}

// Transcript returns everything logged so far.
func (r *Recorder) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// Lines returns the transcript split into lines, without the trailing empty
// line.
func (r *Recorder) Lines() []string {
	t := strings.TrimSuffix(r.Transcript(), "\n")
	if t == "" {
		return nil
	}
	return strings.Split(t, "\n")
}
