package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func TestParseReviews(t *testing.T) {
	text := `[
		{"author": "أحمد", "text": "خدمة ممتازة", "rating": 5, "date": "2 years ago"},
		{"author": "سارة", "text": "جيد", "rating": "4"}
	]`
	reviews := ParseReviews(text, testNow)
	require.Len(t, reviews, 2)

	assert.Equal(t, "أحمد", reviews[0].Author)
	assert.Equal(t, "خدمة ممتازة", reviews[0].Text)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, testNow.AddDate(-2, 0, 0), reviews[0].Date)

	assert.Equal(t, 4, reviews[1].Rating)
	assert.Equal(t, testNow, reviews[1].Date)
}

func TestParseReviewsCoercions(t *testing.T) {
	text := `[{"text": "bon"}]`
	reviews := ParseReviews(text, testNow)
	require.Len(t, reviews, 1)
	assert.Equal(t, "مجهول", reviews[0].Author)
	assert.Equal(t, 5, reviews[0].Rating)
}

func TestParseReviewsTitle(t *testing.T) {
	text := `[
		{"author": "أحمد", "title": "تجربة رائعة", "text": "كل شيء كان ممتازاً", "rating": 5},
		{"author": "سارة", "text": "المكان نظيف والخدمة سريعة والأسعار مناسبة جداً للجميع", "rating": 4},
		{"author": "Omar", "rating": 3}
	]`
	reviews := ParseReviews(text, testNow)
	require.Len(t, reviews, 3)

	// An explicit title survives untouched.
	assert.Equal(t, "تجربة رائعة", reviews[0].Title)

	// A missing title comes from the leading words of the comment.
	assert.Equal(t, "المكان نظيف والخدمة سريعة والأسعار مناسبة", reviews[1].Title)

	// No title and no comment stays empty.
	assert.Empty(t, reviews[2].Title)
}

func TestParseReviewsAlternateFieldNames(t *testing.T) {
	text := `[{"name": "Omar", "body": "nice place", "rating": 3}]`
	reviews := ParseReviews(text, testNow)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Omar", reviews[0].Author)
	assert.Equal(t, "nice place", reviews[0].Text)
	assert.Equal(t, 3, reviews[0].Rating)
}

func TestParseReviewsNeverFails(t *testing.T) {
	assert.Nil(t, ParseReviews("", testNow))
	assert.Nil(t, ParseReviews("[]", testNow))
	assert.Nil(t, ParseReviews("not json at all", testNow))
	assert.Nil(t, ParseReviews(`{"object": "not a list"}`, testNow))
}

func TestParseReviewDateRelativeEnglish(t *testing.T) {
	assert.Equal(t, testNow.AddDate(-3, 0, 0), ParseReviewDate("3 years ago", testNow))
	assert.Equal(t, testNow.AddDate(0, -1, 0), ParseReviewDate("a month ago", testNow))
	assert.Equal(t, testNow.AddDate(0, 0, -14), ParseReviewDate("2 weeks ago", testNow))
	assert.Equal(t, testNow.AddDate(0, 0, -5), ParseReviewDate("5 days ago", testNow))
}

func TestParseReviewDateRelativeArabic(t *testing.T) {
	assert.Equal(t, testNow.AddDate(-2, 0, 0), ParseReviewDate("قبل سنتين", testNow))
	assert.Equal(t, testNow.AddDate(-3, 0, 0), ParseReviewDate("قبل 3 سنوات", testNow))
	assert.Equal(t, testNow.AddDate(0, -2, 0), ParseReviewDate("قبل شهرين", testNow))
	assert.Equal(t, testNow.AddDate(0, 0, -2), ParseReviewDate("قبل يومين", testNow))
}

func TestParseReviewDateLiteral(t *testing.T) {
	assert.Equal(t,
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		ParseReviewDate("2024-03-15", testNow))
	assert.Equal(t,
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		ParseReviewDate("15/03/2024", testNow))
}

func TestParseReviewDateDefaultsToNow(t *testing.T) {
	assert.Equal(t, testNow, ParseReviewDate("", testNow))
	assert.Equal(t, testNow, ParseReviewDate("yesterday-ish", testNow))
}
