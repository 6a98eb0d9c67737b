package query

import (
	"math"
	"strconv"
	"strings"
)

// BoundingBox is a rectangular lat/lon region in degrees
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// BoundingBoxFor returns the box of the given half extents around a centre
// point, clamped to the global coordinate domain
func BoundingBoxFor(lat, lon, halfWidth, halfHeight float64) BoundingBox {
	return BoundingBox{
		MinLon: math.Max(lon-halfWidth, MinLongitude),
		MinLat: math.Max(lat-halfHeight, MinLatitude),
		MaxLon: math.Min(lon+halfWidth, MaxLongitude),
		MaxLat: math.Min(lat+halfHeight, MaxLatitude),
	}
}

// BoundingBoxFromStrings parses the centre point and computes its box. An
// unparsable pair yields the empty box (0,0,0,0); callers are expected to
// have validated the input already.
func BoundingBoxFromStrings(latStr, lonStr string, halfWidth, halfHeight float64) BoundingBox {
	lat, okLat := ParseDecimal(latStr)
	lon, okLon := ParseDecimal(lonStr)
	if !okLat || !okLon {
		return BoundingBox{}
	}
	return BoundingBoxFor(lat, lon, halfWidth, halfHeight)
}

// String renders the box in Flickr's bbox format: minLon,minLat,maxLon,maxLat
func (b BoundingBox) String() string {
	parts := []string{
		formatDegrees(b.MinLon),
		formatDegrees(b.MinLat),
		formatDegrees(b.MaxLon),
		formatDegrees(b.MaxLat),
	}
	return strings.Join(parts, ",")
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
