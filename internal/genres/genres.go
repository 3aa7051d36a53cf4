// Package genres reduces raw bibliographic subject strings to a short,
// display-ready genre list.
package genres

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxGenres caps how many genres a record carries in the final dataset.
const maxGenres = 5

// maxSubjectLen drops run-on subject strings that never render well.
const maxSubjectLen = 50

// ignoreSubjects are too generic to be useful as genres.
var ignoreSubjects = map[string]struct{}{
	"fiction":    {},
	"nonfiction": {},
	"general":    {},
	"literary":   {},
	"literature": {},
	"in library": {},
}

// canonical maps common variants to one display name.
var canonical = map[string]string{
	"sci-fi":            "Science Fiction",
	"science fiction":   "Science Fiction",
	"self-help":         "Self-Help",
	"selfhelp":          "Self-Help",
	"self help":         "Self-Help",
	"biography":         "Biography",
	"biographies":       "Biography",
	"memoir":            "Memoir",
	"memoirs":           "Memoir",
	"history":           "History",
	"historical":        "History",
	"psychology":        "Psychology",
	"philosophy":        "Philosophy",
	"economics":         "Economics",
	"politics":          "Politics",
	"political science": "Politics",
}

var titleCaser = cases.Title(language.English)

// Clean filters, canonicalizes, and deduplicates raw subjects into at most
// five genres, preserving input order. Subjects containing digits are dropped
// since they are usually date-range noise ("Fiction, 1900-1999"). Pure
// function; total ordering is input order minus drops.
func Clean(subjects []string) []string {
	cleaned := make([]string, 0, maxGenres)
	seen := make(map[string]struct{}, maxGenres)

	for _, subject := range subjects {
		lower := strings.ToLower(strings.TrimSpace(subject))
		if _, skip := ignoreSubjects[lower]; skip {
			continue
		}
		if containsDigit(subject) {
			continue
		}
		if len(subject) > maxSubjectLen {
			continue
		}

		name, ok := canonical[lower]
		if !ok {
			name = titleCaser.String(strings.TrimSpace(subject))
		}
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, name)

		if len(cleaned) == maxGenres {
			break
		}
	}
	return cleaned
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
