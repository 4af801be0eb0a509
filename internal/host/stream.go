package host

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds a single notification line. Cycle snapshots of large
// documents are the biggest records; 4 MiB is far beyond anything observed.
const maxLineBytes = 4 << 20

// Decode reads JSONL notifications from r and invokes fn for each, in stream
// order. Blank lines are skipped. A malformed line aborts decoding with an
// error naming the line number; fn returning an error also aborts.
func Decode(r io.Reader, fn func(Notification) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var n Notification
		if err := json.Unmarshal([]byte(line), &n); err != nil {
			return fmt.Errorf("decode notification at line %d: %w", lineNo, err)
		}
		if n.Cycle == nil && n.Lifecycle == nil {
			return fmt.Errorf("notification at line %d has neither cycle nor lifecycle", lineNo)
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read notification stream: %w", err)
	}
	return nil
}
