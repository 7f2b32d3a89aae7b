package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// arabicTranslit maps Arabic letters to Latin approximations for URL slugs.
var arabicTranslit = map[rune]string{
	'ا': "a", 'أ': "a", 'إ': "i", 'آ': "a", 'ء': "a", 'ؤ': "o", 'ئ': "e",
	'ب': "b", 'ت': "t", 'ث': "th", 'ج': "j", 'ح': "h", 'خ': "kh",
	'د': "d", 'ذ': "th", 'ر': "r", 'ز': "z", 'س': "s", 'ش': "sh",
	'ص': "s", 'ض': "d", 'ط': "t", 'ظ': "z", 'ع': "a", 'غ': "gh",
	'ف': "f", 'ق': "q", 'ك': "k", 'ل': "l", 'م': "m", 'ن': "n",
	'ه': "h", 'ة': "a", 'و': "w", 'ي': "y", 'ى': "a",
}

var (
	slugKeepRe     = regexp.MustCompile(`[^\w\x{0600}-\x{06FF}-]`)
	latinKeepRe    = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRunRe    = regexp.MustCompile(`-{2,}`)
	diacriticStrip = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify lowercases a name, turns spaces into hyphens, strips everything
// outside word characters and the Arabic block, and collapses hyphen runs.
// An empty result yields the fallback. Used for category/city slugs, which
// may stay in Arabic.
func Slugify(name, fallback string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	s = slugKeepRe.ReplaceAllString(s, "")
	s = collapseHyphens(s)
	if s == "" {
		return fallback
	}
	return s
}

// SlugifyLatin builds an ASCII slug, transliterating Arabic letters to Latin.
// Used for company slugs, where a numeric-suffix collision loop relies on a
// stable ASCII base. An empty result yields the fallback.
func SlugifyLatin(name, fallback string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	// Strip combining marks (Arabic tashkeel, Latin accents) first so the
	// transliteration table only has to cover base letters.
	if stripped, _, err := transform.String(diacriticStrip, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	for _, r := range s {
		if t, ok := arabicTranslit[r]; ok {
			b.WriteString(t)
			continue
		}
		b.WriteRune(r)
	}

	s = strings.Join(strings.Fields(b.String()), "-")
	s = latinKeepRe.ReplaceAllString(s, "")
	s = collapseHyphens(s)
	if s == "" {
		return fallback
	}
	return s
}

func collapseHyphens(s string) string {
	s = hyphenRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
