// Package runlog persists a history of enrichment builds in SQLite so past
// runs can be inspected after the fact: when each build ran, how many records
// it touched, and whether it completed or aborted.
package runlog
