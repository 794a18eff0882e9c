// Package logtail reads the tail of the API log file for the log viewer.
package logtail

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000

	// stdlib log timestamp prefix, e.g. "2025/08/25 10:30:00 "
	timePrefixLayout = "2006/01/02 15:04:05"
)

// Entry is one parsed log line. Malformed lines keep the raw text as the
// message with an empty timestamp.
type Entry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Reader struct {
	path string
}

func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Tail returns up to limit entries from the end of the log file, newest
// first. level narrows to one severity; search keeps only lines containing
// the given substring (case-insensitive). A missing log file reads as empty.
func (r *Reader) Tail(limit int, level, search string) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	level = strings.ToLower(strings.TrimSpace(level))
	search = strings.ToLower(strings.TrimSpace(search))

	file, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}
	defer file.Close()

	entries := make([]Entry, 0, limit)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry := parseLine(line)
		if level != "" && entry.Level != level {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(entry.Message), search) {
			continue
		}

		entries = append(entries, entry)
		if len(entries) > limit {
			entries = entries[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %v", err)
	}

	// newest first for the viewer
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// parseLine splits a stdlib log line into timestamp and message. Lines that
// do not start with the expected timestamp come back as raw messages.
func parseLine(line string) Entry {
	if len(line) > len(timePrefixLayout) {
		prefix := line[:len(timePrefixLayout)]
		if ts, err := time.Parse(timePrefixLayout, prefix); err == nil {
			message := strings.TrimSpace(line[len(timePrefixLayout):])
			return Entry{
				Time:    ts.Format("2006-01-02 15:04:05"),
				Level:   classifyLevel(message),
				Message: message,
			}
		}
	}
	return Entry{Level: classifyLevel(line), Message: line}
}

// classifyLevel infers a severity from the message text. The stdlib logger
// carries no level of its own, so error and warning keywords decide.
func classifyLevel(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "failed") || strings.Contains(lower, "fatal"):
		return "error"
	case strings.Contains(lower, "warn"):
		return "warning"
	default:
		return "info"
	}
}
