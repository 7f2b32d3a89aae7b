package normalize

import (
	"strings"
	"time"

	"github.com/Subhe93/murbaat-import/internal/model"
)

// MaxReviewsPerCompany caps how many reviews one row may import.
const MaxReviewsPerCompany = 10

// MaxTagsPerCompany caps how many tags one row may import.
const MaxTagsPerCompany = 10

// Company turns one raw row into normalized company input. It never fails:
// unparseable fields fall back to zero values or derived defaults.
func Company(raw model.RawRow, now time.Time) model.CompanyInput {
	in := model.CompanyInput{
		Name:         raw.Get(model.ColName),
		CategoryText: raw.Get(model.ColCategory),
		CountryText:  raw.Get(model.ColCountry),
		CityText:     raw.Get(model.ColCity),
		Address:      raw.Get(model.ColAddress),
		Email:        strings.ToLower(raw.Get(model.ColEmail)),
		Website:      raw.Get(model.ColWebsite),
		Description:  raw.Get(model.ColDescription),
	}

	in.Phone = NormalizePhone(raw.Get(model.ColPhone))
	in.Rating, in.ReviewCount = ExtractRating(raw.Get(model.ColRating))
	in.Images = ExtractImageURLs(raw.Get(model.ColImages))

	in.Reviews = ParseReviews(raw.Get(model.ColReviews), now)
	if len(in.Reviews) > MaxReviewsPerCompany {
		in.Reviews = in.Reviews[:MaxReviewsPerCompany]
	}

	in.Services = SplitList(raw.Get(model.ColServices))
	if len(in.Services) == 0 {
		in.Services = DeriveServices(in.CategoryText)
	}

	in.Tags = SplitList(raw.Get(model.ColTags))
	if len(in.Tags) > MaxTagsPerCompany {
		in.Tags = in.Tags[:MaxTagsPerCompany]
	}

	if in.Description == "" && in.Name != "" {
		in.Description = DeriveDescription(in.Name, in.CategoryText)
	}

	return in
}
