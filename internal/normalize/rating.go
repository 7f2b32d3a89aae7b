package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ratingRe      = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)
	reviewCountRe = regexp.MustCompile(`\((\d+)\)`)
)

// ExtractRating parses a combined rating field like "4.5 (120)" into a rating
// and review count. Either part missing yields 0 for that part.
func ExtractRating(text string) (float64, int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0
	}

	var count int
	if m := reviewCountRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			count = v
		}
	}

	// The count is removed before the rating match so a count-only field
	// like "(120)" does not read as a rating of 120.
	var rating float64
	if m := ratingRe.FindStringSubmatch(reviewCountRe.ReplaceAllString(text, "")); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
			rating = v
		}
	}

	return rating, count
}

// MaxImagesPerCompany caps how many image URLs one row may carry.
const MaxImagesPerCompany = 10

// ExtractImageURLs splits an image-list field on ';' or ',' and keeps only
// http(s) URLs, capped at MaxImagesPerCompany.
func ExtractImageURLs(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == ','
	})

	var urls []string
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if !strings.HasPrefix(tok, "http") {
			continue
		}
		urls = append(urls, tok)
		if len(urls) == MaxImagesPerCompany {
			break
		}
	}
	return urls
}

// SplitList splits a delimited list field (services, specialties, tags) on
// ';' or ',' and trims entries, dropping empties.
func SplitList(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == ','
	})
	var out []string
	for _, tok := range tokens {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
