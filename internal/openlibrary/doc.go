// Package openlibrary provides a thin client for the Open Library search API.
// It performs one HTTP search per call and stays a pure adapter: pacing
// between calls is the caller's responsibility.
package openlibrary
