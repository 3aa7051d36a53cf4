package match

import "strings"

// Weighting between the title and author similarities. Titles carry slightly
// more signal since author spellings vary across editions.
const (
	titleWeight  = 0.6
	authorWeight = 0.4
)

// Confidence classifies how trustworthy a selected candidate match is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// Score compares a user query against a search candidate and returns a value
// in [0, 1]. Both sides are case-folded; the candidate author field is the
// space-joined concatenation of all candidate author names. Pure and
// deterministic.
func Score(queryTitle, queryAuthor, candidateTitle string, candidateAuthors []string) float64 {
	titleScore := Ratio(strings.ToLower(queryTitle), strings.ToLower(candidateTitle))
	authorScore := Ratio(strings.ToLower(queryAuthor), strings.ToLower(strings.Join(candidateAuthors, " ")))
	return titleScore*titleWeight + authorScore*authorWeight
}

// Classify maps a winning score onto a confidence tier.
func Classify(score float64) Confidence {
	switch {
	case score >= 0.9:
		return ConfidenceHigh
	case score >= 0.7:
		return ConfidenceMedium
	case score >= 0.5:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}
