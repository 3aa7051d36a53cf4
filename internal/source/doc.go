// Package source retrieves and parses the hand-authored book list: a CSV
// fetched from a share URL (Dropbox links are rewritten to direct downloads)
// or read from a local file.
package source
