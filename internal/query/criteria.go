package query

type criteriaKind int

const (
	kindNone criteriaKind = iota
	kindPhrase
	kindLatLon
)

// Criteria is either a text phrase or a raw latitude/longitude pair. The
// zero value holds neither and fails validation.
type Criteria struct {
	kind      criteriaKind
	phrase    string
	latitude  string
	longitude string
}

// Phrase returns criteria for a free text search
func Phrase(phrase string) Criteria {
	return Criteria{kind: kindPhrase, phrase: phrase}
}

// LatLon returns criteria for a geographic search. The values are kept
// as typed by the user and validated when the query is built.
func LatLon(latitude, longitude string) Criteria {
	return Criteria{kind: kindLatLon, latitude: latitude, longitude: longitude}
}

// IsPhrase reports whether c is a text search
func (c Criteria) IsPhrase() bool { return c.kind == kindPhrase }

// IsLatLon reports whether c is a geographic search
func (c Criteria) IsLatLon() bool { return c.kind == kindLatLon }

// String describes the criteria for logs
func (c Criteria) String() string {
	switch c.kind {
	case kindPhrase:
		return "phrase=" + c.phrase
	case kindLatLon:
		return "lat=" + c.latitude + ",lon=" + c.longitude
	default:
		return "none"
	}
}
