package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subhe93/murbaat-import/internal/model"
)

func TestMapHeadersFrenchLabels(t *testing.T) {
	index := MapHeaders([]string{"Nom", "Note", "Catégorie", "Adresse", "Téléphone", "SiteWeb", "Images", "Reviews"})

	assert.Equal(t, 0, index[model.ColName])
	assert.Equal(t, 1, index[model.ColRating])
	assert.Equal(t, 2, index[model.ColCategory])
	assert.Equal(t, 3, index[model.ColAddress])
	assert.Equal(t, 4, index[model.ColPhone])
	assert.Equal(t, 5, index[model.ColWebsite])
	assert.Equal(t, 6, index[model.ColImages])
	assert.Equal(t, 7, index[model.ColReviews])
}

func TestMapHeadersUnknownAndDuplicate(t *testing.T) {
	index := MapHeaders([]string{"Nom", "Mystery", "name"})

	// Unknown labels vanish; the first occurrence of a column wins.
	assert.Equal(t, 0, index[model.ColName])
	assert.Len(t, index, 1)
}

func TestRowShortRecord(t *testing.T) {
	index := MapHeaders([]string{"Nom", "Ville"})
	row := Row([]string{" Acme "}, index)

	assert.Equal(t, "Acme", row.Get(model.ColName))
	assert.Equal(t, "", row.Get(model.ColCity))
}

func TestCompanyAssemblesInput(t *testing.T) {
	raw := model.RawRow{
		model.ColName:     "مطعم الشام",
		model.ColCategory: "مطاعم",
		model.ColRating:   "4.5 (120)",
		model.ColPhone:    "0912345678",
		model.ColEmail:    "Info@Example.com",
		model.ColImages:   "https://a.example/1.jpg",
		model.ColTags:     "شعبي;عائلي",
	}
	in := Company(raw, testNow)

	assert.Equal(t, "مطعم الشام", in.Name)
	assert.Equal(t, "مطاعم", in.CategoryText)
	assert.Equal(t, 4.5, in.Rating)
	assert.Equal(t, 120, in.ReviewCount)
	assert.Equal(t, "+963912345678", in.Phone)
	assert.Equal(t, "info@example.com", in.Email)
	require.Len(t, in.Images, 1)
	assert.Equal(t, []string{"شعبي", "عائلي"}, in.Tags)
	assert.NotEmpty(t, in.Description)
}

func TestCompanyCapsReviewsAndTags(t *testing.T) {
	reviews := "["
	for i := 0; i < 15; i++ {
		if i > 0 {
			reviews += ","
		}
		reviews += `{"author":"x","text":"y","rating":5}`
	}
	reviews += "]"

	tags := ""
	for i := 0; i < 15; i++ {
		tags += "tag;"
	}

	in := Company(model.RawRow{
		model.ColName:    "Acme",
		model.ColReviews: reviews,
		model.ColTags:    tags,
	}, testNow)

	assert.Len(t, in.Reviews, MaxReviewsPerCompany)
	assert.Len(t, in.Tags, MaxTagsPerCompany)
}
