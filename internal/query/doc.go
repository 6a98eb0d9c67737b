// Package query builds and encodes Flickr photo search requests. It
// validates user supplied criteria (a text phrase or a latitude/longitude
// pair), derives a clamped bounding box for geographic searches and turns
// the resulting parameter map into a request URL.
package query
