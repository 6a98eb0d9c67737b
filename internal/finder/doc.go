// Package finder runs the photo search pipeline: it builds the query,
// learns the page count from a first request, fetches one random page
// (capped at MaxPage), picks one random photo from it and downloads the
// image. Results are handed to a Reporter through a Dispatch function so
// a front end can apply them on its own goroutine.
package finder
