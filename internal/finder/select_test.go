package finder

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/flickfinder/internal/failure"
	"codeberg.org/snonux/flickfinder/internal/flickr"
)

// scriptedRand returns queued values and records the bounds it was asked for
type scriptedRand struct {
	values []int
	bounds []int
}

func (r *scriptedRand) IntN(n int) int {
	r.bounds = append(r.bounds, n)
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func strPtr(s string) *string { return &s }

func TestChoosePage_Range(t *testing.T) {
	tests := []struct {
		totalPages int
		limit      int
	}{
		{5, 5},
		{1, 1},
		{40, 40},
		{41, 40},
		{1000, 40},
	}

	rnd := seeded()
	for _, tt := range tests {
		seen := make(map[int]bool)
		for i := 0; i < 2000; i++ {
			page := ChoosePage(tt.totalPages, rnd)
			require.GreaterOrEqual(t, page, 1)
			require.LessOrEqual(t, page, tt.limit, "totalPages=%d", tt.totalPages)
			seen[page] = true
		}
		assert.Len(t, seen, tt.limit, "every page in [1, %d] should be drawn", tt.limit)
	}
}

func TestChoosePage_NonPositive(t *testing.T) {
	for _, total := range []int{0, -1, -500} {
		rnd := &scriptedRand{}
		assert.Equal(t, 1, ChoosePage(total, rnd))
		assert.Equal(t, []int{1}, rnd.bounds)
	}
}

func TestChoosePage_UsesWholeRange(t *testing.T) {
	rnd := &scriptedRand{values: []int{0, 11, 39}}

	assert.Equal(t, 1, ChoosePage(12, rnd))
	assert.Equal(t, 12, ChoosePage(12, rnd))
	assert.Equal(t, 40, ChoosePage(3988, rnd))
	assert.Equal(t, []int{12, 12, 40}, rnd.bounds)
}

func TestPickPhoto(t *testing.T) {
	_, err := PickPhoto(nil, seeded())
	assert.True(t, failure.Is(err, failure.KindMissingField), "error: %v", err)

	_, err = PickPhoto([]flickr.PhotoRecord{}, seeded())
	assert.True(t, failure.Is(err, failure.KindEmptyResultSet), "error: %v", err)

	photos := []flickr.PhotoRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	rnd := &scriptedRand{values: []int{2}}
	got, err := PickPhoto(photos, rnd)
	require.NoError(t, err)
	assert.Equal(t, "c", got.ID)
	assert.Equal(t, []int{3}, rnd.bounds)
}

func TestPickPhoto_Uniform(t *testing.T) {
	photos := []flickr.PhotoRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	counts := make(map[string]int)

	rnd := seeded()
	const draws = 8000
	for i := 0; i < draws; i++ {
		p, err := PickPhoto(photos, rnd)
		require.NoError(t, err)
		counts[p.ID]++
	}

	for _, p := range photos {
		assert.InDelta(t, draws/len(photos), counts[p.ID], draws/10, "photo %s", p.ID)
	}
}

func TestImageURLOf(t *testing.T) {
	tests := []struct {
		name    string
		url     *string
		want    string
		wantErr bool
	}{
		{"https", strPtr("https://live.staticflickr.com/65535/1_abc_m.jpg"), "https://live.staticflickr.com/65535/1_abc_m.jpg", false},
		{"padded", strPtr("  http://example.com/a.jpg "), "http://example.com/a.jpg", false},
		{"absent", nil, "", true},
		{"blank", strPtr("   "), "", true},
		{"relative", strPtr("/65535/1_m.jpg"), "", true},
		{"other scheme", strPtr("ftp://example.com/a.jpg"), "", true},
		{"unparsable", strPtr("http://[::1"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageURLOf(flickr.PhotoRecord{ID: "1", ImageURL: tt.url})
			if tt.wantErr {
				assert.True(t, failure.Is(err, failure.KindMissingImageURL), "error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleOf(t *testing.T) {
	assert.Equal(t, "Snowy owl", TitleOf(flickr.PhotoRecord{Title: strPtr("Snowy owl")}))
	assert.Equal(t, UntitledPlaceholder, TitleOf(flickr.PhotoRecord{}))
	assert.Equal(t, UntitledPlaceholder, TitleOf(flickr.PhotoRecord{Title: strPtr(" ")}))
}
