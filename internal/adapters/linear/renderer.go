// Package linear renders suite progress as chronological, prefixed log lines
// for CI and other non-interactive environments.
package linear

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/testarc/internal/ui/output"
	"go.trai.ch/testarc/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer. Span output goes to stdout prefixed with
// the span's label; lifecycle messages go to stderr.
type Renderer struct {
	mu     sync.Mutex
	stdout *bufio.Writer
	stderr *bufio.Writer
	output *termenv.Output
	tasks  map[string]*taskState // spanID -> task state
}

type taskState struct {
	label     string
	startTime time.Time
}

// NewRenderer creates a new Renderer. Nil writers default to os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: bufio.NewWriter(stdout),
		stderr: bufio.NewWriter(stderr),
		output: output.NewWithProfile(stderr, output.ANSI),
		tasks:  make(map[string]*taskState),
	}
}

// OnPlanEmit prints the planned artifacts and their named dependencies.
func (r *Renderer) OnPlanEmit(artifacts []string, deps map[string][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Planning to build %d artifact(s)\n", len(artifacts))
	for _, name := range artifacts {
		if d := deps[name]; len(d) > 0 {
			_, _ = fmt.Fprintf(r.stderr, "  %s %s %s\n", name, style.Circle, strings.Join(d, ", "))
			continue
		}
		_, _ = fmt.Fprintf(r.stderr, "  %s\n", name)
	}
	_ = r.stderr.Flush()
}

// OnTaskStart prints a start message. Nested spans are labelled with their
// parent's label, e.g. "app/build".
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	label := name
	if parent, ok := r.tasks[parentID]; ok {
		label = parent.label + "/" + name
	}
	r.tasks[spanID] = &taskState{label: label, startTime: startTime}

	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", r.prefix(label))
	_ = r.stderr.Flush()
}

// OnTaskLog prints each line of data with the task prefix. Output of unknown
// spans is dropped.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	for line := range bytes.Lines(data) {
		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", task.label, line)
	}
	_ = r.stdout.Flush()
}

// OnTaskComplete prints the completion status.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	delete(r.tasks, spanID)

	duration := endTime.Sub(task.startTime).Round(time.Millisecond)
	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", r.prefix(task.label), symbol, duration, err)
	} else {
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", r.prefix(task.label), symbol, duration)
	}
	_ = r.stderr.Flush()
}

// Flush writes any buffered output.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.stdout.Flush(); err != nil {
		return err
	}
	return r.stderr.Flush()
}

func (r *Renderer) prefix(label string) string {
	return r.output.String("[" + label + "]").Faint().String()
}
