// Package processor drives searches for the command line: it wires the
// Flickr client, the finder and the output writer together from the
// parsed flags, runs single or batch searches and prints progress.
package processor
