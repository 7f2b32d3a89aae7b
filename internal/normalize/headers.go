// Package normalize turns raw, loosely structured export rows into canonical
// company input. Everything here is pure: no I/O, no failure modes beyond
// returning defaults.
package normalize

import (
	"strings"

	"github.com/Subhe93/murbaat-import/internal/model"
)

// headerAliases maps source header labels (the exports use French labels,
// occasionally English ones) to canonical column names.
var headerAliases = map[string]string{
	"nom":         model.ColName,
	"name":        model.ColName,
	"note":        model.ColRating,
	"rating":      model.ColRating,
	"catégorie":   model.ColCategory,
	"categorie":   model.ColCategory,
	"category":    model.ColCategory,
	"adresse":     model.ColAddress,
	"address":     model.ColAddress,
	"téléphone":   model.ColPhone,
	"telephone":   model.ColPhone,
	"phone":       model.ColPhone,
	"email":       model.ColEmail,
	"e-mail":      model.ColEmail,
	"siteweb":     model.ColWebsite,
	"site web":    model.ColWebsite,
	"website":     model.ColWebsite,
	"images":      model.ColImages,
	"photos":      model.ColImages,
	"reviews":     model.ColReviews,
	"avis":        model.ColReviews,
	"pays":        model.ColCountry,
	"country":     model.ColCountry,
	"ville":       model.ColCity,
	"city":        model.ColCity,
	"description": model.ColDescription,
	"services":    model.ColServices,
	"tags":        model.ColTags,
}

// MapHeaders maps a header record to canonical column name → index.
// Unknown headers are ignored; duplicate labels keep the first occurrence.
func MapHeaders(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, label := range header {
		key := strings.ToLower(strings.TrimSpace(label))
		col, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, seen := index[col]; seen {
			continue
		}
		index[col] = i
	}
	return index
}

// Row builds a RawRow from one record using a header index from MapHeaders.
func Row(record []string, index map[string]int) model.RawRow {
	row := make(model.RawRow, len(index))
	for col, i := range index {
		if i < len(record) {
			row[col] = strings.TrimSpace(record[i])
		}
	}
	return row
}
