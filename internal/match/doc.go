// Package match scores how well an external search candidate matches a
// user-entered (title, author) query and classifies the winning score into a
// confidence tier.
package match
