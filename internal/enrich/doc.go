// Package enrich resolves raw (title, author) records against the Open
// Library search API and drives the incremental, rate-limited enrichment loop
// over the persistent cache.
package enrich
