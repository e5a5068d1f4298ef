package auditlog

import (
	"bufio"
	"fmt"
	"os"
)

// Tail returns the last n entries of the audit log, oldest first. A missing
// file returns no entries.
func Tail(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		e, err := ParseLine(line)
		if err != nil {
			continue // tolerate corrupt lines on read
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// VerifyResult summarizes an audit log integrity check.
type VerifyResult struct {
	Lines     int `json:"lines"`
	Malformed int `json:"malformed"`
	Allowed   int `json:"allowed"`
	Blocked   int `json:"blocked"`
}

// Verify scans the whole log and reports how many lines parse cleanly.
// Timestamps must be non-decreasing apart from lock-contention interleaving,
// so ordering is not treated as an error.
func Verify(path string) (VerifyResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var result VerifyResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		result.Lines++
		e, err := ParseLine(scanner.Text())
		if err != nil {
			result.Malformed++
			continue
		}
		if e.Allowed {
			result.Allowed++
		} else {
			result.Blocked++
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read audit log: %w", err)
	}
	return result, nil
}
