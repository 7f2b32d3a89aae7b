package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRating(t *testing.T) {
	rating, count := ExtractRating("4.5 (120)")
	assert.Equal(t, 4.5, rating)
	assert.Equal(t, 120, count)
}

func TestExtractRatingCommaDecimal(t *testing.T) {
	rating, count := ExtractRating("4,2 (33)")
	assert.Equal(t, 4.2, rating)
	assert.Equal(t, 33, count)
}

func TestExtractRatingPartsMissing(t *testing.T) {
	rating, count := ExtractRating("4.8")
	assert.Equal(t, 4.8, rating)
	assert.Equal(t, 0, count)

	rating, count = ExtractRating("")
	assert.Equal(t, 0.0, rating)
	assert.Equal(t, 0, count)

	rating, count = ExtractRating("no rating yet")
	assert.Equal(t, 0.0, rating)
	assert.Equal(t, 0, count)
}

func TestExtractRatingCountOnly(t *testing.T) {
	// A bare review count must not be mistaken for the rating.
	rating, count := ExtractRating("(120)")
	assert.Equal(t, 0.0, rating)
	assert.Equal(t, 120, count)
}

func TestExtractImageURLs(t *testing.T) {
	urls := ExtractImageURLs("https://a.example/1.jpg;https://a.example/2.png, https://b.example/3.webp")
	assert.Equal(t, []string{
		"https://a.example/1.jpg",
		"https://a.example/2.png",
		"https://b.example/3.webp",
	}, urls)
}

func TestExtractImageURLsDropsNonHTTP(t *testing.T) {
	urls := ExtractImageURLs("ftp://x/1.jpg; /local/2.jpg; https://a.example/3.jpg")
	assert.Equal(t, []string{"https://a.example/3.jpg"}, urls)
}

func TestExtractImageURLsCap(t *testing.T) {
	var text string
	for i := 0; i < 15; i++ {
		text += "https://a.example/img.jpg;"
	}
	urls := ExtractImageURLs(text)
	assert.Len(t, urls, MaxImagesPerCompany)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"توصيل", "حجز مسبق"}, SplitList("توصيل; حجز مسبق"))
	assert.Nil(t, SplitList("  "))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,,b"))
}
