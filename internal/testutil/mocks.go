package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// SearchPath is where the fake server answers flickr.photos.search
const SearchPath = "/services/rest"

// MockResponse represents a mocked HTTP response
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// FlickrServer mocks the Flickr REST API and its photo host
type FlickrServer struct {
	*httptest.Server

	// OnSearch answers search requests; nil answers 404
	OnSearch func(q url.Values) MockResponse

	// Images maps a path under /photos/ to its response
	Images map[string]MockResponse

	mu    sync.Mutex
	Calls []string
}

// NewFlickrServer starts a fake Flickr server that is closed when the test ends
func NewFlickrServer(t *testing.T) *FlickrServer {
	t.Helper()

	s := &FlickrServer{
		Images: make(map[string]MockResponse),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *FlickrServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.Calls = append(s.Calls, fmt.Sprintf("%s %s", r.Method, r.URL.RequestURI()))
	onSearch := s.OnSearch
	image, hasImage := s.Images[strings.TrimPrefix(r.URL.Path, "/photos/")]
	s.mu.Unlock()

	var resp MockResponse
	switch {
	case r.URL.Path == SearchPath && onSearch != nil:
		resp = onSearch(r.URL.Query())
	case strings.HasPrefix(r.URL.Path, "/photos/") && hasImage:
		resp = image
	default:
		resp = MockResponse{StatusCode: http.StatusNotFound, Body: "Not Found"}
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp.Body))
}

// Endpoint returns the search endpoint URL of the fake server
func (s *FlickrServer) Endpoint() string {
	return s.URL + SearchPath
}

// ImageURL returns the URL the fake server serves Images[name] at
func (s *FlickrServer) ImageURL(name string) string {
	return s.URL + "/photos/" + name
}

// SearchCalls returns the query of every search request received so far
func (s *FlickrServer) SearchCalls() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	var calls []url.Values
	for _, call := range s.Calls {
		u, err := url.Parse(strings.TrimPrefix(call, "GET "))
		if err != nil || u.Path != SearchPath {
			continue
		}
		calls = append(calls, u.Query())
	}
	return calls
}

// CallCount returns the number of requests received so far
func (s *FlickrServer) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// Photo describes one entry of a fake result page
type Photo struct {
	ID    string
	Title *string
	URL   *string
}

// Titled returns a photo with a title and image URL
func Titled(id, title, imageURL string) Photo {
	return Photo{ID: id, Title: &title, URL: &imageURL}
}

// Untitled returns a photo without a title
func Untitled(id, imageURL string) Photo {
	return Photo{ID: id, URL: &imageURL}
}

// SearchOK renders a successful search reply
func SearchOK(page, pages int, photos ...Photo) MockResponse {
	list := make([]map[string]interface{}, 0, len(photos))
	for _, p := range photos {
		entry := map[string]interface{}{"id": p.ID}
		if p.Title != nil {
			entry["title"] = *p.Title
		}
		if p.URL != nil {
			entry["url_m"] = *p.URL
		}
		list = append(list, entry)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"stat": "ok",
		"photos": map[string]interface{}{
			"page":    page,
			"pages":   pages,
			"perpage": 100,
			"total":   pages * len(photos),
			"photo":   list,
		},
	})
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// SearchFail renders a Flickr error reply
func SearchFail(code int, message string) MockResponse {
	body, _ := json.Marshal(map[string]interface{}{
		"stat":    "fail",
		"code":    code,
		"message": message,
	})
	return MockResponse{StatusCode: http.StatusOK, Body: string(body)}
}

// JPEG returns a response carrying a tiny JPEG-looking payload
func JPEG() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(ImageData()),
		Headers:    map[string]string{"Content-Type": "image/jpeg"},
	}
}

// ImageData returns mock image data
func ImageData() []byte {
	// Simple mock JPEG header
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
}
