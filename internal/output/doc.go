// Package output writes build artifacts: the final books dataset consumed by
// the static site, and a CSV export that bakes resolved ISBNs back into the
// master book list.
package output
