package query

import (
	"errors"
	"strings"
	"testing"

	"codeberg.org/snonux/flickfinder/internal/failure"
)

func TestBuildPhraseQuery(t *testing.T) {
	b := NewBuilder("test-key")

	phrases := []string{"penguins", "  padded  ", "ябълка", "a&b=c", "x"}
	for _, phrase := range phrases {
		t.Run(phrase, func(t *testing.T) {
			params, err := b.BuildPhraseQuery(phrase)
			if err != nil {
				t.Fatalf("BuildPhraseQuery(%q) failed: %v", phrase, err)
			}
			if params[KeyText] != phrase {
				t.Errorf("Expected text %q, got %q", phrase, params[KeyText])
			}
			if _, ok := params[KeyBoundingBox]; ok {
				t.Error("Phrase query must not carry a bbox")
			}
		})
	}
}

func TestBuildPhraseQuery_Empty(t *testing.T) {
	b := NewBuilder("test-key")

	for _, phrase := range []string{"", " ", "\t\n"} {
		_, err := b.BuildPhraseQuery(phrase)
		if !failure.Is(err, failure.KindValidation) {
			t.Errorf("BuildPhraseQuery(%q) error = %v, want validation failure", phrase, err)
		}
	}
}

func TestBuildPhraseQuery_FixedParameters(t *testing.T) {
	params, err := NewBuilder("secret").BuildPhraseQuery("cats")
	if err != nil {
		t.Fatalf("BuildPhraseQuery failed: %v", err)
	}

	expected := map[string]string{
		KeyMethod:         "flickr.photos.search",
		KeyAPIKey:         "secret",
		KeyFormat:         "json",
		KeyNoJSONCallback: "1",
		KeySafeSearch:     "1",
		KeyExtras:         "url_m",
	}
	for k, v := range expected {
		if params[k] != v {
			t.Errorf("Expected %s=%q, got %q", k, v, params[k])
		}
	}
	if _, ok := params[KeyPage]; ok {
		t.Error("Base parameters must not carry a page")
	}
}

func TestBuildLatLonQuery(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lon     string
		wantErr bool
		bbox    string
	}{
		{"centre", "0", "0", false, "-1,-1,1,1"},
		{"decimal", "51.5", "-0.25", false, "-1.25,50.5,0.75,52.5"},
		{"upper corner", "90", "180", false, "179,89,180,90"},
		{"lower corner", "-90", "-180", false, "-180,-90,-179,-89"},
		{"exponent", "1e1", "2E1", false, "19,9,21,11"},
		{"latitude too large", "95", "10", true, ""},
		{"latitude too small", "-90.5", "10", true, ""},
		{"longitude too large", "10", "180.01", true, ""},
		{"empty latitude", "", "10", true, ""},
		{"empty longitude", "10", "", true, ""},
		{"not a number", "abc", "10", true, ""},
		{"nan", "NaN", "10", true, ""},
		{"infinity", "10", "Inf", true, ""},
		{"hex float", "0x1p-2", "10", true, ""},
	}

	b := NewBuilder("test-key")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := b.BuildLatLonQuery(tt.lat, tt.lon)
			if tt.wantErr {
				if !failure.Is(err, failure.KindValidation) {
					t.Fatalf("Expected validation failure, got %v", err)
				}
				var fe *failure.Error
				if !errors.As(err, &fe) || fe.UserMessage() != LatLonRangeHint {
					t.Errorf("Expected user message %q", LatLonRangeHint)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildLatLonQuery failed: %v", err)
			}
			if params[KeyBoundingBox] != tt.bbox {
				t.Errorf("Expected bbox %q, got %q", tt.bbox, params[KeyBoundingBox])
			}
			if _, ok := params[KeyText]; ok {
				t.Error("Lat/lon query must not carry text")
			}
		})
	}
}

func TestBuildLatLonQuery_PaddedInput(t *testing.T) {
	b := NewBuilder("test-key")

	params, err := b.BuildLatLonQuery(" 51.5 ", "\t-0.25")
	if err != nil {
		t.Fatalf("BuildLatLonQuery failed: %v", err)
	}
	want := BoundingBoxFromStrings(" 51.5 ", "\t-0.25", DefaultHalfWidth, DefaultHalfHeight).String()
	if params[KeyBoundingBox] != want {
		t.Errorf("Expected bbox %q, got %q", want, params[KeyBoundingBox])
	}
	if want != "-1.25,50.5,0.75,52.5" {
		t.Errorf("Padding changed the box: %q", want)
	}
}

func TestBuilderOptions(t *testing.T) {
	b := NewBuilder("k", WithHalfExtents(0.5, 0.25), WithSafeSearch("3"))

	params, err := b.BuildLatLonQuery("10", "20")
	if err != nil {
		t.Fatalf("BuildLatLonQuery failed: %v", err)
	}
	if params[KeyBoundingBox] != "19.5,9.75,20.5,10.25" {
		t.Errorf("Unexpected bbox %q", params[KeyBoundingBox])
	}
	if params[KeySafeSearch] != "3" {
		t.Errorf("Expected safe_search 3, got %q", params[KeySafeSearch])
	}

	// Non-positive extents keep the defaults
	b = NewBuilder("k", WithHalfExtents(0, -1))
	if b.halfWidth != DefaultHalfWidth || b.halfHeight != DefaultHalfHeight {
		t.Errorf("Expected default extents, got %v/%v", b.halfWidth, b.halfHeight)
	}
}

func TestBuild(t *testing.T) {
	b := NewBuilder("k")

	params, err := b.Build(Phrase("owls"))
	if err != nil || params[KeyText] != "owls" {
		t.Errorf("Build(Phrase) = %v, %v", params, err)
	}

	params, err = b.Build(LatLon("1", "2"))
	if err != nil || params[KeyBoundingBox] == "" {
		t.Errorf("Build(LatLon) = %v, %v", params, err)
	}

	if _, err := b.Build(Criteria{}); !failure.Is(err, failure.KindValidation) {
		t.Errorf("Build(zero) error = %v, want validation failure", err)
	}
}

func TestParametersWith(t *testing.T) {
	base := Parameters{KeyText: "a"}
	paged := base.WithPage(7)

	if paged[KeyPage] != "7" {
		t.Errorf("Expected page 7, got %q", paged[KeyPage])
	}
	if _, ok := base[KeyPage]; ok {
		t.Error("With must not modify the receiver")
	}
	if paged[KeyText] != "a" {
		t.Error("With must keep existing keys")
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" -3.5 ", -3.5, true},
		{"+.5", 0.5, true},
		{"7.", 7, true},
		{"1_000", 0, false},
		{".", 0, false},
		{"1e400", 0, false},
		{"12abc", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDecimal(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseDecimal(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCriteriaString(t *testing.T) {
	if s := Phrase("x").String(); !strings.Contains(s, "phrase=x") {
		t.Errorf("Unexpected %q", s)
	}
	if s := LatLon("1", "2").String(); s != "lat=1,lon=2" {
		t.Errorf("Unexpected %q", s)
	}
	if !Phrase("x").IsPhrase() || !LatLon("1", "2").IsLatLon() {
		t.Error("Variant predicates are wrong")
	}
}
