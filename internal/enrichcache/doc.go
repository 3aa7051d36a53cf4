// Package enrichcache persists enrichment results across builds as a JSON
// object keyed by the normalized title|author identity, so repeated builds
// only look up books they have not seen before.
package enrichcache
