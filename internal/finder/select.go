package finder

import (
	"math/rand/v2"
	"net/url"
	"strings"

	"codeberg.org/snonux/flickfinder/internal/failure"
	"codeberg.org/snonux/flickfinder/internal/flickr"
)

// MaxPage caps the page number drawn for the second request
const MaxPage = 40

// UntitledPlaceholder is the title reported for photos without one
const UntitledPlaceholder = "(untitled)"

// Rand is the source of uniform random integers. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a value in [0, n); n > 0
	IntN(n int) int
}

// globalRand uses the package level math/rand/v2 source, which is safe
// for concurrent use
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// ChoosePage returns a uniform page number in [1, min(totalPages, MaxPage)].
// A non-positive page count is treated as a single page.
func ChoosePage(totalPages int, rnd Rand) int {
	limit := min(totalPages, MaxPage)
	if limit <= 0 {
		limit = 1
	}
	return rnd.IntN(limit) + 1
}

// PickPhoto returns a uniformly chosen record. A missing list is a
// failure.KindMissingField, an empty one a failure.KindEmptyResultSet.
func PickPhoto(photos []flickr.PhotoRecord, rnd Rand) (flickr.PhotoRecord, error) {
	if photos == nil {
		return flickr.PhotoRecord{}, failure.New(failure.KindMissingField, "page has no photo list").
			WithContext("field", "photo")
	}
	if len(photos) == 0 {
		return flickr.PhotoRecord{}, failure.New(failure.KindEmptyResultSet, "no photos returned")
	}
	return photos[rnd.IntN(len(photos))], nil
}

// ImageURLOf returns the record's medium image URL if it is an absolute
// http(s) URL
func ImageURLOf(photo flickr.PhotoRecord) (string, error) {
	if photo.ImageURL == nil || strings.TrimSpace(*photo.ImageURL) == "" {
		return "", failure.New(failure.KindMissingImageURL, "photo %q has no url_m", photo.ID)
	}

	raw := strings.TrimSpace(*photo.ImageURL)
	u, err := url.Parse(raw)
	if err != nil {
		return "", failure.Wrap(failure.KindMissingImageURL, err, "photo %q has an unparsable url_m", photo.ID)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", failure.New(failure.KindMissingImageURL, "photo %q url_m %q is not an absolute http(s) URL", photo.ID, raw)
	}
	return u.String(), nil
}

// TitleOf returns the record's title or UntitledPlaceholder
func TitleOf(photo flickr.PhotoRecord) string {
	if photo.Title == nil || strings.TrimSpace(*photo.Title) == "" {
		return UntitledPlaceholder
	}
	return *photo.Title
}
