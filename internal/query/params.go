package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"codeberg.org/snonux/flickfinder/internal/failure"
)

// Parameter keys understood by flickr.photos.search
const (
	KeyMethod         = "method"
	KeyAPIKey         = "api_key"
	KeyFormat         = "format"
	KeyNoJSONCallback = "nojsoncallback"
	KeySafeSearch     = "safe_search"
	KeyExtras         = "extras"
	KeyText           = "text"
	KeyBoundingBox    = "bbox"
	KeyPage           = "page"
)

// Fixed parameter values
const (
	SearchMethod        = "flickr.photos.search"
	ResponseFormat      = "json"
	DisableJSONCallback = "1"
	UseSafeSearch       = "1"
	MediumURL           = "url_m"
)

// Coordinate domain and default bounding box half extents, in degrees
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0

	DefaultHalfWidth  = 1.0
	DefaultHalfHeight = 1.0
)

// Messages shown to the user for rejected criteria
const (
	PhraseEmptyHint = "Phrase Empty."
	LatLonRangeHint = "Lat should be [-90, 90].\nLon should be [-180, 180]."
)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Parameters maps query keys to pre-stringified values
type Parameters map[string]string

// With returns a copy of p with key set to value
func (p Parameters) With(key, value string) Parameters {
	out := make(Parameters, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[key] = value
	return out
}

// WithPage returns a copy of p requesting the given result page
func (p Parameters) WithPage(page int) Parameters {
	return p.With(KeyPage, strconv.Itoa(page))
}

// Builder turns search criteria into flickr.photos.search parameters
type Builder struct {
	apiKey     string
	halfWidth  float64
	halfHeight float64
	safeSearch string
}

// Option configures a Builder
type Option func(*Builder)

// WithHalfExtents overrides the bounding box half width and half height
func WithHalfExtents(width, height float64) Option {
	return func(b *Builder) {
		if width > 0 {
			b.halfWidth = width
		}
		if height > 0 {
			b.halfHeight = height
		}
	}
}

// WithSafeSearch overrides the safe_search level ("1", "2" or "3")
func WithSafeSearch(level string) Option {
	return func(b *Builder) {
		if level != "" {
			b.safeSearch = level
		}
	}
}

// NewBuilder creates a parameter builder for the given API key
func NewBuilder(apiKey string, opts ...Option) *Builder {
	b := &Builder{
		apiKey:     apiKey,
		halfWidth:  DefaultHalfWidth,
		halfHeight: DefaultHalfHeight,
		safeSearch: UseSafeSearch,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build dispatches on the criteria variant
func (b *Builder) Build(c Criteria) (Parameters, error) {
	switch {
	case c.IsPhrase():
		return b.BuildPhraseQuery(c.phrase)
	case c.IsLatLon():
		return b.BuildLatLonQuery(c.latitude, c.longitude)
	default:
		return nil, failure.New(failure.KindValidation, "no search criteria given")
	}
}

// BuildPhraseQuery builds a text search. The phrase is kept as given;
// only a blank phrase is rejected.
func (b *Builder) BuildPhraseQuery(phrase string) (Parameters, error) {
	if strings.TrimSpace(phrase) == "" {
		return nil, failure.New(failure.KindValidation, "phrase is empty").
			WithContext("hint", PhraseEmptyHint)
	}

	params := b.base()
	params[KeyText] = phrase
	return params, nil
}

// BuildLatLonQuery builds a bounding box search centred on the given
// coordinates
func (b *Builder) BuildLatLonQuery(latStr, lonStr string) (Parameters, error) {
	if _, err := parseCoordinate("latitude", latStr, MinLatitude, MaxLatitude); err != nil {
		return nil, err
	}
	if _, err := parseCoordinate("longitude", lonStr, MinLongitude, MaxLongitude); err != nil {
		return nil, err
	}

	params := b.base()
	params[KeyBoundingBox] = BoundingBoxFromStrings(latStr, lonStr, b.halfWidth, b.halfHeight).String()
	return params, nil
}

func (b *Builder) base() Parameters {
	return Parameters{
		KeyMethod:         SearchMethod,
		KeyAPIKey:         b.apiKey,
		KeyFormat:         ResponseFormat,
		KeyNoJSONCallback: DisableJSONCallback,
		KeySafeSearch:     b.safeSearch,
		KeyExtras:         MediumURL,
	}
}

// ParseDecimal parses s as a finite decimal number. Hex floats, NaN and
// infinities are rejected.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseCoordinate(field, raw string, min, max float64) (float64, error) {
	v, ok := ParseDecimal(raw)
	if !ok {
		return 0, failure.New(failure.KindValidation, "%s %q is not a decimal number", field, raw).
			WithContext("field", field).
			WithContext("hint", LatLonRangeHint)
	}
	if v < min || v > max {
		return 0, failure.New(failure.KindValidation, "%s %v is outside [%v, %v]", field, v, min, max).
			WithContext("field", field).
			WithContext("hint", LatLonRangeHint)
	}
	return v, nil
}
