package processor

import (
	"fmt"
	"io"

	"codeberg.org/snonux/flickfinder/internal/failure"
	"codeberg.org/snonux/flickfinder/internal/finder"
	"codeberg.org/snonux/flickfinder/internal/query"
)

// consoleReporter prints search progress
type consoleReporter struct {
	out      io.Writer
	criteria query.Criteria
	done     func(*finder.Result, error)
}

func (r *consoleReporter) Searching() {
	fmt.Fprintf(r.out, "Searching Flickr (%s)...\n", r.criteria)
}

func (r *consoleReporter) Succeeded(result *finder.Result) {
	fmt.Fprintf(r.out, "  Found: %s (page %d of %d)\n", result.Title, result.Page, result.TotalPages)
	r.done(result, nil)
}

func (r *consoleReporter) Failed(err error) {
	fmt.Fprintf(r.out, "  %s\n", failure.UserMessage(err))
	r.done(nil, err)
}
