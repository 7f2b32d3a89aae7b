// Package model defines the directory entities and import types shared across
// the import pipeline.
package model

import "time"

// Category is a canonical business category that free-text import values
// resolve against.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Name      string    `json:"name" db:"name"`
	Icon      string    `json:"icon,omitempty" db:"icon"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Country is a canonical country record.
type Country struct {
	ID             string    `json:"id" db:"id"`
	Code           string    `json:"code" db:"code"`
	Name           string    `json:"name" db:"name"`
	CompaniesCount int       `json:"companies_count" db:"companies_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// City is a canonical city record. A city belongs to exactly one country;
// CountryCode is denormalized from its parent at creation time.
type City struct {
	ID             string    `json:"id" db:"id"`
	Slug           string    `json:"slug" db:"slug"`
	Name           string    `json:"name" db:"name"`
	CountryID      string    `json:"country_id" db:"country_id"`
	CountryCode    string    `json:"country_code" db:"country_code"`
	CompaniesCount int       `json:"companies_count" db:"companies_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// SubArea is a neighborhood within a city.
type SubArea struct {
	ID          string    `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	CityID      string    `json:"city_id" db:"city_id"`
	CountryID   string    `json:"country_id" db:"country_id"`
	CountryCode string    `json:"country_code" db:"country_code"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Company is the persisted listing created by the importer.
type Company struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Description  string    `json:"description,omitempty" db:"description"`
	CategoryID   string    `json:"category_id" db:"category_id"`
	CityID       string    `json:"city_id" db:"city_id"`
	CountryID    string    `json:"country_id" db:"country_id"`
	SubAreaID    string    `json:"sub_area_id,omitempty" db:"sub_area_id"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Email        string    `json:"email,omitempty" db:"email"`
	Website      string    `json:"website,omitempty" db:"website"`
	Address      string    `json:"address,omitempty" db:"address"`
	Rating       float64   `json:"rating" db:"rating"`
	ReviewsCount int       `json:"reviews_count" db:"reviews_count"`
	Latitude     *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64  `json:"longitude,omitempty" db:"longitude"`
	MainImage    string    `json:"main_image,omitempty" db:"main_image"`
	Services     []string  `json:"services,omitempty" db:"services"`
	Specialties  []string  `json:"specialties,omitempty" db:"specialties"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	IsFeatured   bool      `json:"is_featured" db:"is_featured"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CompanyImage is one downloaded listing image. SortOrder preserves the
// position in the source image list; failed downloads produce no record.
type CompanyImage struct {
	ID        string    `json:"id" db:"id"`
	CompanyID string    `json:"company_id" db:"company_id"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	AltText   string    `json:"alt_text,omitempty" db:"alt_text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Review is an imported customer review. CreatedAt is back-dated from
// relative-time text in the source export ("2 years ago").
type Review struct {
	ID        string    `json:"id" db:"id"`
	CompanyID string    `json:"company_id" db:"company_id"`
	UserName  string    `json:"user_name" db:"user_name"`
	Rating    int       `json:"rating" db:"rating"`
	Title     string    `json:"title,omitempty" db:"title"`
	Comment   string    `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CompanyTag is a free-form label attached to a company.
type CompanyTag struct {
	ID        string    `json:"id" db:"id"`
	CompanyID string    `json:"company_id" db:"company_id"`
	TagName   string    `json:"tag_name" db:"tag_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
