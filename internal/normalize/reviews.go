package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Subhe93/murbaat-import/internal/model"
)

// unknownAuthor is the placeholder for reviews with no author name.
const unknownAuthor = "مجهول"

// rawReviewJSON matches the loosely typed review entries in the export:
// ratings arrive as numbers or strings, field names vary by export version.
type rawReviewJSON struct {
	Author string          `json:"author"`
	Name   string          `json:"name"`
	Title  string          `json:"title"`
	Text   string          `json:"text"`
	Body   string          `json:"body"`
	Rating json.RawMessage `json:"rating"`
	Date   string          `json:"date"`
}

// ParseReviews decodes the JSON-encoded Reviews column. It never fails: a
// malformed field is logged and yields an empty list. Entry coercions:
// missing author becomes the placeholder, rating defaults to 5, missing or
// unparseable dates default to now.
func ParseReviews(text string, now time.Time) []model.RawReview {
	text = strings.TrimSpace(text)
	if text == "" || text == "[]" {
		return nil
	}

	var entries []rawReviewJSON
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		zap.L().Debug("normalize: unparseable reviews field", zap.Error(err))
		return nil
	}

	reviews := make([]model.RawReview, 0, len(entries))
	for _, e := range entries {
		r := model.RawReview{
			Author:  strings.TrimSpace(e.Author),
			Title:   strings.TrimSpace(e.Title),
			Text:    strings.TrimSpace(e.Text),
			Rating:  coerceRating(e.Rating),
			RawDate: strings.TrimSpace(e.Date),
		}
		if r.Author == "" {
			r.Author = strings.TrimSpace(e.Name)
		}
		if r.Author == "" {
			r.Author = unknownAuthor
		}
		if r.Text == "" {
			r.Text = strings.TrimSpace(e.Body)
		}
		if r.Title == "" {
			r.Title = deriveTitle(r.Text)
		}
		r.Date = ParseReviewDate(r.RawDate, now)
		reviews = append(reviews, r)
	}
	return reviews
}

// titleWords caps how many leading comment words make a derived title.
const titleWords = 6

// deriveTitle builds a short review title from the leading words of the
// comment.
func deriveTitle(comment string) string {
	words := strings.Fields(comment)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	return strings.Join(words, " ")
}

// coerceRating accepts a numeric or string rating and defaults to 5.
func coerceRating(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 5
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(f)
		}
	}
	return 5
}

// Relative-time phrases in English and Arabic ("2 years ago", "قبل سنتين").
var (
	relTimeRe       = regexp.MustCompile(`(?i)(\d+|a|an|one)\s+(year|month|week|day|hour)s?\s+ago`)
	arabicRelTimeRe = regexp.MustCompile(`قبل\s+(\d+)?\s*(سنة|سنتين|سنوات|شهر|شهرين|أشهر|شهور|أسبوع|أسبوعين|أسابيع|يوم|يومين|أيام|ساعة|ساعات)`)
)

// ParseReviewDate back-dates a review from relative-time text, falls back to
// literal date parsing, and defaults to now.
func ParseReviewDate(text string, now time.Time) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return now
	}

	if t, ok := parseRelative(text, now); ok {
		return t
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02", "02/01/2006", "1/2/2006"} {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}

	return now
}

func parseRelative(text string, now time.Time) (time.Time, bool) {
	if m := relTimeRe.FindStringSubmatch(text); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		return backdate(now, strings.ToLower(m[2]), n), true
	}

	if m := arabicRelTimeRe.FindStringSubmatch(text); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		unit := m[2]
		switch unit {
		case "سنتين", "شهرين", "أسبوعين", "يومين":
			n = 2
		}
		switch {
		case strings.HasPrefix(unit, "سن"):
			return backdate(now, "year", n), true
		case strings.HasPrefix(unit, "شه"), strings.HasPrefix(unit, "أشهر"):
			return backdate(now, "month", n), true
		case strings.HasPrefix(unit, "أس"):
			return backdate(now, "week", n), true
		case strings.HasPrefix(unit, "يوم"), strings.HasPrefix(unit, "أيام"):
			return backdate(now, "day", n), true
		default:
			return backdate(now, "hour", n), true
		}
	}

	return time.Time{}, false
}

func backdate(now time.Time, unit string, n int) time.Time {
	switch unit {
	case "year":
		return now.AddDate(-n, 0, 0)
	case "month":
		return now.AddDate(0, -n, 0)
	case "week":
		return now.AddDate(0, 0, -7*n)
	case "day":
		return now.AddDate(0, 0, -n)
	default:
		return now.Add(-time.Duration(n) * time.Hour)
	}
}
