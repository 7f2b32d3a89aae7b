// Package importer orchestrates one import row from raw record to persisted
// company with images, reviews and tags.
package importer

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Subhe93/murbaat-import/internal/images"
	"github.com/Subhe93/murbaat-import/internal/model"
	"github.com/Subhe93/murbaat-import/internal/normalize"
	"github.com/Subhe93/murbaat-import/internal/resolver"
	"github.com/Subhe93/murbaat-import/internal/store"
	"github.com/Subhe93/murbaat-import/internal/validate"
)

// slugAttempts bounds the collision loop before falling back to a random
// suffix.
const slugAttempts = 50

// Importer processes import rows. Safe for concurrent use; the resolver
// serializes its own cache.
type Importer struct {
	store          store.Store
	resolver       *resolver.Resolver
	fetcher        *images.Fetcher
	defaultCountry string
	defaultCity    string
}

// New creates an Importer. The default country and city are the fallback
// locale for rows carrying no resolvable location.
func New(s store.Store, r *resolver.Resolver, f *images.Fetcher, defaultCountry, defaultCity string) *Importer {
	return &Importer{
		store:          s,
		resolver:       r,
		fetcher:        f,
		defaultCountry: defaultCountry,
		defaultCity:    defaultCity,
	}
}

func failed(msg string) model.ImportResult {
	return model.ImportResult{Error: msg}
}

func skipped(msg string) model.ImportResult {
	return model.ImportResult{Skipped: true, Error: msg}
}

// ImportRow runs the full pipeline for one raw row and returns a terminal
// result: success, skipped or failed. It never returns an error; store and
// resolver failures become a failed result so one bad row cannot abort the
// batch.
func (i *Importer) ImportRow(ctx context.Context, raw model.RawRow, s model.ImportSettings) model.ImportResult {
	in := normalize.Company(raw, time.Now())

	if in.Name == "" {
		return failed("اسم الشركة مطلوب")
	}

	if s.SkipDuplicates {
		dup, err := i.store.FindDuplicateCompany(ctx, in.Name, in.Phone, in.Email)
		if err != nil {
			return failed("خطأ في قاعدة البيانات: " + err.Error())
		}
		if dup != nil {
			return skipped("شركة مكررة: " + dup.Name)
		}
	}

	if err := validate.Row(in, s); err != nil {
		return failed(err.Error())
	}

	category, err := i.resolver.ResolveCategory(ctx, in.CategoryText, s.CreateMissingCategories)
	if err != nil {
		return failed("خطأ في قاعدة البيانات: " + err.Error())
	}
	if category == nil {
		return failed("تعذر تحديد فئة الشركة: " + in.CategoryText)
	}

	country, city, err := i.resolveLocale(ctx, in, s)
	if err != nil {
		return failed("خطأ في قاعدة البيانات: " + err.Error())
	}
	if country == nil || city == nil {
		return failed("تعذر تحديد موقع الشركة")
	}

	company := model.Company{
		Name:         in.Name,
		Description:  in.Description,
		CategoryID:   category.ID,
		CityID:       city.ID,
		CountryID:    country.ID,
		Phone:        in.Phone,
		Email:        in.Email,
		Website:      in.Website,
		Address:      in.Address,
		Rating:       in.Rating,
		ReviewsCount: in.ReviewCount,
		Services:     in.Services,
		Specialties:  in.Specialties,
		IsActive:     true,
	}
	if err := i.createWithUniqueSlug(ctx, &company); err != nil {
		return failed("خطأ في إنشاء الشركة: " + err.Error())
	}

	if err := i.store.IncrementCompanyCounts(ctx, country.ID, city.ID); err != nil {
		zap.L().Warn("increment counts failed",
			zap.String("company", company.ID), zap.Error(err))
	}

	res := model.ImportResult{Success: true, CompanyID: company.ID}

	if s.DownloadImages && len(in.Images) > 0 {
		res.ImagesDownloaded, res.ImagesFailed = i.importImages(ctx, &company, in.Images)
	}

	i.importReviews(ctx, &company, in)
	i.importTags(ctx, company.ID, in.Tags)

	zap.L().Info("company imported",
		zap.String("id", company.ID),
		zap.String("slug", company.Slug),
		zap.Int("images", res.ImagesDownloaded))
	return res
}

// resolveLocale picks the company location. Explicit country and city columns
// win; then an address heuristic against existing records; then the
// configured default locale, which may be created on first use.
func (i *Importer) resolveLocale(ctx context.Context, in model.CompanyInput, s model.ImportSettings) (*model.Country, *model.City, error) {
	if in.CountryText != "" || in.CityText != "" {
		countryText := in.CountryText
		if countryText == "" {
			countryText = i.defaultCountry
		}
		country, city, err := i.resolver.ResolveLocation(ctx, countryText, in.CityText, s.CreateMissingCities)
		if err != nil {
			return nil, nil, err
		}
		if country != nil && city == nil {
			// The explicit country is authoritative. A missing or
			// unresolvable city falls back to the default city inside that
			// country, never to the default locale wholesale.
			country, city, err = i.resolver.ResolveLocation(ctx, countryText, i.defaultCity, true)
			if err != nil {
				return nil, nil, err
			}
		}
		if country != nil && city != nil {
			return country, city, nil
		}
	}

	if in.Address != "" {
		country, city, err := i.resolver.ResolveFromAddress(ctx, in.Address, s.CreateMissingCities)
		if err != nil {
			return nil, nil, err
		}
		if country != nil && city != nil {
			return country, city, nil
		}
	}

	return i.resolver.ResolveLocation(ctx, i.defaultCountry, i.defaultCity, true)
}

// createWithUniqueSlug inserts the company, retrying with numeric suffixes on
// slug collisions. The store-level unique constraint closes the gap between
// the existence check and the insert.
func (i *Importer) createWithUniqueSlug(ctx context.Context, c *model.Company) error {
	base := normalize.SlugifyLatin(c.Name, "company")

	for n := 0; n < slugAttempts; n++ {
		slug := base
		if n > 0 {
			slug = base + "-" + strconv.Itoa(n)
		}
		exists, err := i.store.CompanySlugExists(ctx, slug)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		c.Slug = slug
		err = i.store.CreateCompany(ctx, c)
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrSlugTaken) {
			// Lost the race; try the next suffix.
			continue
		}
		return err
	}

	// Pathological collision density. A random suffix always lands.
	c.Slug = base + "-" + strconv.FormatInt(time.Now().UnixNano()%100000, 10)
	return i.store.CreateCompany(ctx, c)
}

// importImages downloads each image sequentially. One failure never fails the
// row. The first stored image becomes the company main image.
func (i *Importer) importImages(ctx context.Context, c *model.Company, urls []string) (downloaded, failed int) {
	for idx, u := range urls {
		res := i.fetcher.Download(ctx, u, c.ID, idx)
		if !res.OK {
			failed++
			continue
		}

		img := model.CompanyImage{
			CompanyID: c.ID,
			ImageURL:  res.LocalPath,
			SortOrder: idx,
			AltText:   c.Name,
		}
		if err := i.store.CreateCompanyImage(ctx, &img); err != nil {
			zap.L().Warn("record image failed",
				zap.String("company", c.ID), zap.Error(err))
			failed++
			continue
		}

		if downloaded == 0 {
			if err := i.store.SetCompanyMainImage(ctx, c.ID, res.LocalPath); err != nil {
				zap.L().Warn("set main image failed",
					zap.String("company", c.ID), zap.Error(err))
			}
		}
		downloaded++
	}
	return downloaded, failed
}

// importReviews inserts the parsed reviews and recomputes the company rating
// from all stored reviews. The recompute always aggregates over the full set,
// never increments.
func (i *Importer) importReviews(ctx context.Context, c *model.Company, in model.CompanyInput) {
	inserted := 0
	for _, rv := range in.Reviews {
		rating := rv.Rating
		if rating < 1 {
			rating = 1
		}
		if rating > 5 {
			rating = 5
		}
		r := model.Review{
			CompanyID: c.ID,
			UserName:  rv.Author,
			Rating:    rating,
			Title:     rv.Title,
			Comment:   rv.Text,
			CreatedAt: rv.Date,
		}
		if err := i.store.CreateReview(ctx, &r); err != nil {
			zap.L().Warn("insert review failed",
				zap.String("company", c.ID), zap.Error(err))
			continue
		}
		inserted++
	}
	if inserted == 0 {
		return
	}

	all, err := i.store.ListReviews(ctx, c.ID)
	if err != nil || len(all) == 0 {
		if err != nil {
			zap.L().Warn("list reviews failed",
				zap.String("company", c.ID), zap.Error(err))
		}
		return
	}
	sum := 0
	for _, r := range all {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(all))
	if err := i.store.UpdateCompanyRating(ctx, c.ID, avg, len(all)); err != nil {
		zap.L().Warn("update rating failed",
			zap.String("company", c.ID), zap.Error(err))
	}
}

// importTags attaches tags with per-tag isolation.
func (i *Importer) importTags(ctx context.Context, companyID string, tags []string) {
	for _, tag := range tags {
		t := model.CompanyTag{CompanyID: companyID, TagName: tag}
		if err := i.store.CreateCompanyTag(ctx, &t); err != nil {
			zap.L().Warn("insert tag failed",
				zap.String("company", companyID), zap.String("tag", tag), zap.Error(err))
		}
	}
}
