// Package catalog defines the book records flowing through a build and merges
// raw user records with cached enrichment results into the final dataset
// entries.
package catalog
