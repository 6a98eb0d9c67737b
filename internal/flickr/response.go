package flickr

import (
	"encoding/json"
	"strconv"

	"codeberg.org/snonux/flickfinder/internal/failure"
)

// Response keys and values of flickr.photos.search
const (
	keyStatus  = "stat"
	keyCode    = "code"
	keyMessage = "message"
	keyPhotos  = "photos"
	keyPage    = "page"
	keyPages   = "pages"
	keyTotal   = "total"
	keyPhoto   = "photo"
	keyID      = "id"
	keyTitle   = "title"
	keyURLM    = "url_m"

	// StatusOK is the stat value of a successful call
	StatusOK = "ok"
)

// SearchResponse is the validated part of a search reply
type SearchResponse struct {
	Status     string
	Page       int
	TotalPages int
	Total      int
	// Photos is nil when the reply has no photo list at all and empty when
	// the list is present but has no entries
	Photos []PhotoRecord
}

// PhotoRecord is one entry of a result page. Title and ImageURL are nil
// when the reply does not carry them as strings.
type PhotoRecord struct {
	ID       string
	Title    *string
	ImageURL *string
}

// DecodeSearchResponse parses and validates a search reply body. The checks
// run in order: JSON object, stat == "ok", photos object, integer pages.
func DecodeSearchResponse(body []byte) (*SearchResponse, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, failure.Wrap(failure.KindDecode, err, "response is not a JSON object")
	}
	if top == nil {
		return nil, failure.New(failure.KindDecode, "response is not a JSON object")
	}

	status, err := checkStatus(top)
	if err != nil {
		return nil, err
	}

	photosRaw, ok := present(top, keyPhotos)
	if !ok {
		return nil, failure.New(failure.KindMissingField, "response has no %q object", keyPhotos).
			WithContext("field", keyPhotos)
	}
	var photos map[string]json.RawMessage
	if err := json.Unmarshal(photosRaw, &photos); err != nil {
		return nil, failure.Wrap(failure.KindDecode, err, "%q is not an object", keyPhotos)
	}

	pagesRaw, ok := present(photos, keyPages)
	if !ok {
		return nil, failure.New(failure.KindMissingField, "%q has no %q field", keyPhotos, keyPages).
			WithContext("field", keyPages)
	}
	var pages int
	if err := json.Unmarshal(pagesRaw, &pages); err != nil {
		return nil, failure.Wrap(failure.KindDecode, err, "%q is not an integer", keyPages)
	}

	resp := &SearchResponse{
		Status:     status,
		TotalPages: pages,
		Page:       lenientInt(photos[keyPage]),
		Total:      lenientInt(photos[keyTotal]),
	}

	if photoRaw, ok := present(photos, keyPhoto); ok {
		records, err := decodePhotos(photoRaw)
		if err != nil {
			return nil, err
		}
		resp.Photos = records
	}

	return resp, nil
}

func checkStatus(top map[string]json.RawMessage) (string, error) {
	raw, ok := present(top, keyStatus)
	if !ok {
		return "", failure.New(failure.KindRemoteStatus, "response has no %q", keyStatus)
	}

	var status string
	if err := json.Unmarshal(raw, &status); err != nil {
		return "", failure.Wrap(failure.KindDecode, err, "%q is not a string", keyStatus)
	}

	if status != StatusOK {
		fe := failure.New(failure.KindRemoteStatus, "Flickr returned stat %q", status).
			WithContext("stat", status)
		if code := lenientInt(top[keyCode]); code != 0 {
			fe.WithContext("code", code)
		}
		if msg := optionalString(top[keyMessage]); msg != nil {
			fe.Message += ": " + *msg
			fe.WithContext("message", *msg)
		}
		return "", fe
	}
	return status, nil
}

func decodePhotos(raw json.RawMessage) ([]PhotoRecord, error) {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, failure.Wrap(failure.KindDecode, err, "%q is not an array of objects", keyPhoto)
	}

	records := make([]PhotoRecord, 0, len(entries))
	for _, entry := range entries {
		rec := PhotoRecord{
			Title:    optionalString(entry[keyTitle]),
			ImageURL: optionalString(entry[keyURLM]),
		}
		if id := optionalString(entry[keyID]); id != nil {
			rec.ID = *id
		}
		records = append(records, rec)
	}
	return records, nil
}

// present returns the raw value of key unless it is absent or null
func present(obj map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := obj[key]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// optionalString returns the value if it is a JSON string, nil otherwise
func optionalString(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// lenientInt accepts a JSON integer or a numeric string and returns 0 for
// anything else. Flickr has sent "total" both ways.
func lenientInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return 0
}
