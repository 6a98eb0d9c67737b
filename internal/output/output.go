// Package output saves found photos to disk together with a small text
// file describing where they came from.
package output

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/flickfinder/internal"
	"codeberg.org/snonux/flickfinder/internal/finder"
	"codeberg.org/snonux/flickfinder/internal/logging"
)

// ErrExists is returned when the target file exists and overwriting is off
var ErrExists = errors.New("file already exists")

const (
	maxBaseNameRunes = 50
	defaultExtension = ".jpg"
	infoSuffix       = "_info.txt"
)

var extensionsByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Options configures a Writer
type Options struct {
	Directory    string // Directory to save photos in
	Overwrite    bool   // Whether to replace existing files
	MaxSizeBytes int64  // Largest image accepted (0 = no limit)
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Directory:    "./photos",
		MaxSizeBytes: 10 * 1024 * 1024, // 10MB
	}
}

// Saved lists the files written for one photo
type Saved struct {
	ImagePath string
	InfoPath  string
}

// Writer saves search results
type Writer struct {
	options Options
	logger  logrus.FieldLogger
}

// NewWriter creates a Writer. A nil logger discards log output.
func NewWriter(options Options, logger logrus.FieldLogger) *Writer {
	if options.Directory == "" {
		options.Directory = DefaultOptions().Directory
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Writer{options: options, logger: logger}
}

// Directory returns where photos are saved
func (w *Writer) Directory() string {
	return w.options.Directory
}

// Save writes the image and its info file. The info file is best effort:
// failing to write it is logged, not returned.
func (w *Writer) Save(result *finder.Result) (Saved, error) {
	if result == nil || len(result.Image) == 0 {
		return Saved{}, errors.New("nothing to save")
	}
	if w.options.MaxSizeBytes > 0 && int64(len(result.Image)) > w.options.MaxSizeBytes {
		return Saved{}, fmt.Errorf("image exceeds maximum size of %d bytes", w.options.MaxSizeBytes)
	}

	if err := os.MkdirAll(w.options.Directory, 0755); err != nil {
		return Saved{}, fmt.Errorf("failed to create directory: %w", err)
	}

	base := FileBaseName(result)
	saved := Saved{
		ImagePath: filepath.Join(w.options.Directory, base+Extension(result)),
		InfoPath:  filepath.Join(w.options.Directory, base+infoSuffix),
	}

	if err := w.writeFile(saved.ImagePath, result.Image); err != nil {
		return Saved{}, err
	}

	if err := w.writeFile(saved.InfoPath, []byte(Describe(result))); err != nil {
		w.logger.WithError(err).WithField("path", saved.InfoPath).Warn("Failed to save photo info")
		saved.InfoPath = ""
	}

	w.logger.WithFields(logrus.Fields{
		"path":  saved.ImagePath,
		"bytes": len(result.Image),
	}).Info("Saved photo")
	return saved, nil
}

func (w *Writer) writeFile(name string, data []byte) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !w.options.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	file, err := os.OpenFile(name, flags, 0644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(name) // Clean up on error
		return fmt.Errorf("failed to write file: %w", err)
	}
	return file.Close()
}

// FileBaseName returns "<title>_<photo id>" made safe for file systems
func FileBaseName(result *finder.Result) string {
	title := strings.Trim(internal.SanitizeFilename(result.Title), "_")
	if utf8.RuneCountInString(title) > maxBaseNameRunes {
		title = string([]rune(title)[:maxBaseNameRunes])
	}
	if title == "" {
		title = "photo"
	}

	id := strings.Trim(internal.SanitizeFilename(result.PhotoID), "_")
	if id == "" {
		return title
	}
	return title + "_" + id
}

// Extension picks the file extension from the content type, then the
// source URL, then falls back to .jpg
func Extension(result *finder.Result) string {
	contentType, _, _ := strings.Cut(result.ContentType, ";")
	if ext, ok := extensionsByType[strings.ToLower(strings.TrimSpace(contentType))]; ok {
		return ext
	}

	if u, err := url.Parse(result.SourceURL); err == nil {
		ext := strings.ToLower(path.Ext(u.Path))
		if ext != "" && len(ext) <= 5 { // Probably a real extension
			return ext
		}
	}
	return defaultExtension
}

// Describe renders the info file content for a result
func Describe(result *finder.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", result.Title)
	if result.PhotoID != "" {
		fmt.Fprintf(&b, "Photo ID: %s\n", result.PhotoID)
	}
	fmt.Fprintf(&b, "Source: %s\n", result.SourceURL)
	fmt.Fprintf(&b, "Page: %d of %d\n", result.Page, result.TotalPages)
	if result.RequestID != "" {
		fmt.Fprintf(&b, "Request ID: %s\n", result.RequestID)
	}
	return b.String()
}
