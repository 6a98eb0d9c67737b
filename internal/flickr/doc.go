// Package flickr is a small client for the Flickr REST API. It runs
// flickr.photos.search requests, validates and decodes the JSON replies
// and downloads photo data. Requests are paced with a token bucket and
// guarded by a circuit breaker.
package flickr
