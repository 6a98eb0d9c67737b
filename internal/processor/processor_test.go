package processor

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"codeberg.org/snonux/flickfinder/internal/cli"
	"codeberg.org/snonux/flickfinder/internal/failure"
	"codeberg.org/snonux/flickfinder/internal/logging"
	"codeberg.org/snonux/flickfinder/internal/query"
	"codeberg.org/snonux/flickfinder/internal/testutil"
)

// newServer answers every search with one photo named after the search text
func newServer(t *testing.T) *testutil.FlickrServer {
	t.Helper()

	srv := testutil.NewFlickrServer(t)
	srv.Images["photo.jpg"] = testutil.JPEG()
	srv.OnSearch = func(q url.Values) testutil.MockResponse {
		text := q.Get(query.KeyText)
		if text == "" {
			text = "place"
		}
		return testutil.SearchOK(1, 2, testutil.Titled(text, strings.ToUpper(text), srv.ImageURL("photo.jpg")))
	}
	return srv
}

func testFlags(t *testing.T, srv *testutil.FlickrServer) *cli.Flags {
	t.Helper()

	flags := cli.NewFlags()
	flags.APIKey = "test-key"
	flags.Endpoint = srv.Endpoint()
	flags.Rate = 0
	flags.OutputDir = testutil.CreateTestDirectory(t)
	return flags
}

func newTestProcessor(t *testing.T, flags *cli.Flags) (*Processor, *bytes.Buffer) {
	t.Helper()

	p, err := NewProcessor(flags, logging.Discard())
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	var buf bytes.Buffer
	p.out = &buf
	return p, &buf
}

func TestNewProcessor(t *testing.T) {
	srv := newServer(t)
	flags := testFlags(t, srv)

	p, _ := newTestProcessor(t, flags)
	if p.flags != flags {
		t.Error("Processor flags not set correctly")
	}
	if p.finder == nil {
		t.Error("Finder not initialized")
	}
	if p.writer == nil {
		t.Error("Writer not initialized")
	}

	flags.NoSave = true
	p, _ = newTestProcessor(t, flags)
	if p.writer != nil {
		t.Error("Writer should be nil with --no-save")
	}
}

func TestNewProcessor_MissingAPIKey(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv(cli.APIKeyEnv, "")

	flags := cli.NewFlags()
	_, err := NewProcessor(flags, logging.Discard())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("NewProcessor() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestNewProcessor_KeyFromEnvironment(t *testing.T) {
	srv := newServer(t)
	t.Setenv(cli.APIKeyEnv, "env-key")

	flags := testFlags(t, srv)
	flags.APIKey = ""
	p, _ := newTestProcessor(t, flags)

	if err := p.ProcessSingle(context.Background(), query.Phrase("owl")); err != nil {
		t.Fatalf("ProcessSingle() error = %v", err)
	}
	if got := srv.SearchCalls()[0].Get(query.KeyAPIKey); got != "env-key" {
		t.Errorf("api_key = %q, want env-key", got)
	}
}

func TestNewProcessor_InvalidEndpoint(t *testing.T) {
	flags := cli.NewFlags()
	flags.APIKey = "test-key"
	flags.Endpoint = "api.flickr.com/services/rest"

	_, err := NewProcessor(flags, logging.Discard())
	if !errors.Is(err, query.ErrInvalidEndpoint) {
		t.Errorf("NewProcessor() error = %v, want ErrInvalidEndpoint", err)
	}
}

func TestProcessSingle(t *testing.T) {
	srv := newServer(t)
	flags := testFlags(t, srv)
	p, out := newTestProcessor(t, flags)

	if err := p.ProcessSingle(context.Background(), query.Phrase("owl")); err != nil {
		t.Fatalf("ProcessSingle() error = %v", err)
	}

	path := filepath.Join(flags.OutputDir, "OWL_owl.jpg")
	testutil.AssertFileContent(t, path, testutil.ImageData())
	testutil.AssertFileContains(t, filepath.Join(flags.OutputDir, "OWL_owl_info.txt"), "Title: OWL")

	for _, want := range []string{"Searching Flickr (phrase=owl)", "Found: OWL (page", "Saved: " + path} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestProcessSingle_NoSave(t *testing.T) {
	srv := newServer(t)
	flags := testFlags(t, srv)
	flags.NoSave = true
	p, out := newTestProcessor(t, flags)

	if err := p.ProcessSingle(context.Background(), query.LatLon("51.5", "-0.25")); err != nil {
		t.Fatalf("ProcessSingle() error = %v", err)
	}

	entries, _ := os.ReadDir(flags.OutputDir)
	if len(entries) != 0 {
		t.Errorf("expected no files with --no-save, found %d", len(entries))
	}
	if !strings.Contains(out.String(), "Source: "+srv.ImageURL("photo.jpg")) {
		t.Errorf("output missing source URL:\n%s", out.String())
	}
}

func TestProcessSingle_Validation(t *testing.T) {
	srv := newServer(t)
	p, out := newTestProcessor(t, testFlags(t, srv))

	err := p.ProcessSingle(context.Background(), query.LatLon("95", "10"))
	if !failure.Is(err, failure.KindValidation) {
		t.Fatalf("ProcessSingle() error = %v, want validation failure", err)
	}
	if srv.CallCount() != 0 {
		t.Errorf("expected no requests, got %d", srv.CallCount())
	}
	if !strings.Contains(out.String(), "Lat should be [-90, 90].") {
		t.Errorf("output missing hint:\n%s", out.String())
	}
}

func TestProcessSingle_RemoteFailure(t *testing.T) {
	srv := testutil.NewFlickrServer(t)
	srv.OnSearch = func(url.Values) testutil.MockResponse {
		return testutil.SearchFail(100, "Invalid API Key")
	}
	p, out := newTestProcessor(t, testFlags(t, srv))

	err := p.ProcessSingle(context.Background(), query.Phrase("owl"))
	if !failure.Is(err, failure.KindRemoteStatus) {
		t.Fatalf("ProcessSingle() error = %v, want remote status failure", err)
	}
	if !strings.Contains(out.String(), "No Image found") {
		t.Errorf("output missing user message:\n%s", out.String())
	}
}

func TestProcessBatch(t *testing.T) {
	srv := newServer(t)
	flags := testFlags(t, srv)
	flags.BatchFile = filepath.Join(t.TempDir(), "queries.txt")
	testutil.CreateTestFile(t, flags.BatchFile, []byte("# searches\nowl\n@ 95, 0\nfox\n"))

	p, out := newTestProcessor(t, flags)
	err := p.ProcessBatch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "1 of 3 searches failed") {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	testutil.AssertFileExists(t, filepath.Join(flags.OutputDir, "OWL_owl.jpg"))
	testutil.AssertFileExists(t, filepath.Join(flags.OutputDir, "FOX_fox.jpg"))

	for _, want := range []string{"Processing 2/3 (line 3)", "Total searches: 3", "Found: 2", "Failed: 1", "Photos saved to: " + flags.OutputDir} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	srv := newServer(t)
	flags := testFlags(t, srv)
	flags.BatchFile = filepath.Join(t.TempDir(), "empty.txt")
	testutil.CreateTestFile(t, flags.BatchFile, []byte("# nothing\n"))

	p, _ := newTestProcessor(t, flags)
	if err := p.ProcessBatch(context.Background()); err == nil {
		t.Error("expected error for batch file without searches")
	}
}

func TestProcessBatch_Cancelled(t *testing.T) {
	srv := newServer(t)
	flags := testFlags(t, srv)
	flags.BatchFile = filepath.Join(t.TempDir(), "queries.txt")
	testutil.CreateTestFile(t, flags.BatchFile, []byte("owl\nfox\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := newTestProcessor(t, flags)
	if err := p.ProcessBatch(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ProcessBatch() error = %v, want context.Canceled", err)
	}
	if srv.CallCount() != 0 {
		t.Errorf("expected no requests, got %d", srv.CallCount())
	}
}

func TestProcessorWritesToStdout(t *testing.T) {
	srv := newServer(t)
	flags := testFlags(t, srv)
	flags.NoSave = true

	stdout, _ := testutil.CaptureOutput(t, func() {
		p, err := NewProcessor(flags, logging.Discard())
		if err != nil {
			t.Errorf("NewProcessor() error = %v", err)
			return
		}
		if err := p.ProcessSingle(context.Background(), query.Phrase("owl")); err != nil {
			t.Errorf("ProcessSingle() error = %v", err)
		}
	})

	if !strings.Contains(stdout, "Found: OWL") {
		t.Errorf("stdout missing result:\n%s", stdout)
	}
}
