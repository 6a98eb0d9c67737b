// Package batch reads files listing one search per line.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/snonux/flickfinder/internal/query"
)

// Entry is one search read from a batch file
type Entry struct {
	Line     int // 1-based line number in the file
	Criteria query.Criteria
}

// ReadBatchFile reads searches from a file. Supports formats:
// - a phrase: "snowy owl"
// - a location: "@ 51.5, -0.12" (latitude, longitude)
// - comments: "# anything"
// Blank lines are skipped. Values are validated when the search runs.
func ReadBatchFile(filename string) ([]Entry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer file.Close()

	entries, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return entries, nil
}

// Parse reads batch entries from r
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if location, ok := strings.CutPrefix(line, "@"); ok {
			lat, lon, _ := strings.Cut(location, ",")
			entries = append(entries, Entry{
				Line:     lineNo,
				Criteria: query.LatLon(strings.TrimSpace(lat), strings.TrimSpace(lon)),
			})
			continue
		}

		entries = append(entries, Entry{Line: lineNo, Criteria: query.Phrase(line)})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
