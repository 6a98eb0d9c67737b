package finder

import (
	"context"

	"codeberg.org/snonux/flickfinder/internal/query"
)

// Status is the state a search reports
type Status int

const (
	StatusSearching Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSearching:
		return "searching"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Update is one report of a search. Result is set for StatusSuccess and
// Err for StatusFailure.
type Update struct {
	Status Status
	Result *Result
	Err    error
}

// Reporter receives the progress of a search started with Start.
// Searching is called first, then exactly one of Succeeded or Failed.
type Reporter interface {
	Searching()
	Succeeded(result *Result)
	Failed(err error)
}

// ReporterFunc adapts a function receiving Updates to a Reporter
type ReporterFunc func(Update)

func (fn ReporterFunc) Searching() { fn(Update{Status: StatusSearching}) }

func (fn ReporterFunc) Succeeded(result *Result) {
	fn(Update{Status: StatusSuccess, Result: result})
}

func (fn ReporterFunc) Failed(err error) { fn(Update{Status: StatusFailure, Err: err}) }

// Dispatch delivers fn on the goroutine that owns the presentation state,
// like fyne.Do does for a GUI. Calls must run in the order they are made.
type Dispatch func(fn func())

// Inline runs fn on the calling goroutine
func Inline(fn func()) { fn() }

// Start runs Find in the background and reports through the Finder's
// Dispatch. The returned channel is closed once the terminal report has
// been handed to Dispatch. Start may be called from the dispatching
// goroutine itself.
func (f *Finder) Start(ctx context.Context, criteria query.Criteria, reporter Reporter) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		f.dispatch(reporter.Searching)

		result, err := f.Find(ctx, criteria)
		if err != nil {
			f.dispatch(func() { reporter.Failed(err) })
			return
		}
		f.dispatch(func() { reporter.Succeeded(result) })
	}()

	return done
}
