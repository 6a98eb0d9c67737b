package query

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidEndpoint is returned for an endpoint missing its scheme or host
var ErrInvalidEndpoint = errors.New("invalid API endpoint")

// Endpoint is the fixed location of the REST API
type Endpoint struct {
	Scheme string
	Host   string
	Path   string
}

// DefaultEndpoint is the public Flickr REST endpoint
var DefaultEndpoint = Endpoint{
	Scheme: "https",
	Host:   "api.flickr.com",
	Path:   "/services/rest",
}

// ParseEndpoint splits a base URL such as "https://api.flickr.com/services/rest"
func ParseEndpoint(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	ep := Endpoint{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	if err := ep.Validate(); err != nil {
		return Endpoint{}, err
	}
	return ep, nil
}

// Validate checks that the endpoint can produce absolute URLs
func (e Endpoint) Validate() error {
	if e.Scheme == "" || e.Host == "" {
		return fmt.Errorf("%w: scheme and host are required (got %q)", ErrInvalidEndpoint, e.String())
	}
	if e.Scheme != "http" && e.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, e.Scheme)
	}
	return nil
}

// Encode builds the request URL for params. Every value is percent-encoded;
// keys come out sorted, so the same parameters always give the same URL.
func (e Endpoint) Encode(params Parameters) (*url.URL, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	u := &url.URL{
		Scheme:   e.Scheme,
		Host:     e.Host,
		Path:     e.Path,
		RawQuery: values.Encode(),
	}

	// Round-trip to catch anything url.URL cannot represent
	if _, err := url.Parse(u.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	return u, nil
}

// String returns the base URL without a query
func (e Endpoint) String() string {
	u := url.URL{Scheme: e.Scheme, Host: e.Host, Path: e.Path}
	return u.String()
}
