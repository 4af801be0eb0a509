// Package sessionlog owns the durable artifacts of one recording session: an
// append-only CSV activity log and a fully-rewritten JSON metadata snapshot.
// Producers enqueue formatted lines without ever touching the file; a single
// background writer drains the queue in FIFO order.
package sessionlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Sink receives a best-effort copy of every line appended locally.
// Forwarding is fire-and-forget: a failing sink never blocks the writer and
// never affects local durability.
type Sink interface {
	Send(Line) error
}

// Options tunes a Log. The zero value is usable.
type Options struct {
	Sink  Sink
	Park  time.Duration             // writer idle park, default 100ms
	Sleep func(d time.Duration)     // injectable for deterministic tests
}

// Log is the session's log file plus its write queue.
type Log struct {
	Dir     string
	CSVPath string
	user    string

	sink  Sink
	park  time.Duration
	sleep func(time.Duration)

	mu       sync.Mutex
	queue    []Line
	stopping bool
	warnings []string
	enqueued int

	done chan struct{}

	metaMu    sync.Mutex
	metaPaths map[string]struct{}

	// append is swapped in tests to inject I/O faults.
	append func(path, line string) error
}

// Open creates the session directory and log file, writes the header, and
// starts the background writer.
func Open(dir, user string, opts Options) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	csvPath := filepath.Join(dir, user+"_GraphLog.csv")
	if err := os.WriteFile(csvPath, []byte(Header+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("creating session log: %w", err)
	}

	l := &Log{
		Dir:       dir,
		CSVPath:   csvPath,
		user:      user,
		sink:      opts.Sink,
		park:      opts.Park,
		sleep:     opts.Sleep,
		done:      make(chan struct{}),
		metaPaths: make(map[string]struct{}),
		append:    appendLine,
	}
	if l.park <= 0 {
		l.park = 100 * time.Millisecond
	}
	if l.sleep == nil {
		l.sleep = time.Sleep
	}
	go l.run()
	return l, nil
}

// User returns the user identity stamped on every line.
func (l *Log) User() string { return l.user }

// Enqueue appends a line to the write queue. It never performs I/O and never
// blocks beyond the queue mutex.
func (l *Log) Enqueue(line Line) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopping {
		return
	}
	l.queue = append(l.queue, line)
	l.enqueued++
}

// Record formats and enqueues one event.
func (l *Log) Record(t time.Time, action, detail string) {
	l.Enqueue(Line{Timestamp: t, User: l.user, Action: action, Detail: detail})
}

// EventCount reports how many lines have been enqueued since Open.
func (l *Log) EventCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enqueued
}

// Warnings returns non-fatal issues encountered by the writer so far.
func (l *Log) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}

// Close stops the writer after it has fully drained the queue. No line
// enqueued before Close is lost to the shutdown itself.
func (l *Log) Close() error {
	l.mu.Lock()
	if l.stopping {
		l.mu.Unlock()
		<-l.done
		return nil
	}
	l.stopping = true
	l.mu.Unlock()
	<-l.done
	return nil
}

// run is the single consumer. It appends lines in FIFO order, retries a
// failed append once and then drops the line, forwards each written line to
// the sink without waiting for it, and parks when the queue is empty.
func (l *Log) run() {
	defer close(l.done)
	for {
		line, ok, stopped := l.pop()
		if ok {
			l.write(line)
			continue
		}
		if stopped {
			return
		}
		l.sleep(l.park)
	}
}

func (l *Log) pop() (line Line, ok, stopped bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) > 0 {
		line = l.queue[0]
		l.queue = l.queue[1:]
		return line, true, false
	}
	return Line{}, false, l.stopping
}

func (l *Log) write(line Line) {
	csv := line.CSV()
	if err := l.append(l.CSVPath, csv); err != nil {
		if err = l.append(l.CSVPath, csv); err != nil {
			l.warn("dropping log line after failed append: " + err.Error())
			return
		}
	}
	if l.sink != nil {
		go func() { _ = l.sink.Send(line) }()
	}
}

func (l *Log) warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

// appendLine opens, appends one line and closes. The file handle is not held
// across lines so a cleanup can remove the file between writes.
func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return err
	}
	return f.Sync()
}

// CleanupIfEmpty deletes the session artifacts when the log holds nothing
// beyond the header and the session start/end lines, then removes the
// session directory if that left it empty. Call after Close.
func (l *Log) CleanupIfEmpty() error {
	data, err := os.ReadFile(l.CSVPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("inspecting session log: %w", err)
	}
	lines := strings.Count(strings.TrimRight(string(data), "\n"), "\n") + 1
	if lines > 3 {
		return nil
	}

	if err := os.Remove(l.CSVPath); err != nil {
		return fmt.Errorf("removing empty session log: %w", err)
	}
	l.metaMu.Lock()
	for p := range l.metaPaths {
		_ = os.Remove(p)
	}
	l.metaMu.Unlock()

	entries, err := os.ReadDir(l.Dir)
	if err == nil && len(entries) == 0 {
		_ = os.Remove(l.Dir)
	}
	return nil
}
