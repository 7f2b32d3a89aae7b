// Package store provides persistence for directory entities behind a single
// interface with SQLite and Postgres implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/Subhe93/murbaat-import/internal/model"
)

// ErrSlugTaken is returned by CreateCompany when the slug hit the unique
// constraint. The importer reacts by retrying with the next numeric suffix,
// which also covers concurrent rows racing on the same name.
var ErrSlugTaken = eris.New("store: company slug already taken")

// Store defines the persistence operations the import pipeline needs.
type Store interface {
	// Categories
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error

	// Locations
	ListCountries(ctx context.Context) ([]model.Country, error)
	CreateCountry(ctx context.Context, c *model.Country) error
	ListCities(ctx context.Context) ([]model.City, error)
	CreateCity(ctx context.Context, c *model.City) error
	ListSubAreas(ctx context.Context, cityID string) ([]model.SubArea, error)
	CreateSubArea(ctx context.Context, sa *model.SubArea) error

	// Companies
	FindDuplicateCompany(ctx context.Context, name, phone, email string) (*model.Company, error)
	CompanySlugExists(ctx context.Context, slug string) (bool, error)
	CreateCompany(ctx context.Context, c *model.Company) error
	UpdateCompanyRating(ctx context.Context, companyID string, rating float64, reviewsCount int) error
	SetCompanyMainImage(ctx context.Context, companyID, imageURL string) error
	IncrementCompanyCounts(ctx context.Context, countryID, cityID string) error

	// Child records
	CreateCompanyImage(ctx context.Context, img *model.CompanyImage) error
	CreateReview(ctx context.Context, r *model.Review) error
	ListReviews(ctx context.Context, companyID string) ([]model.Review, error)
	CreateCompanyTag(ctx context.Context, t *model.CompanyTag) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
