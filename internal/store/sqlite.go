package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Subhe93/murbaat-import/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS categories (
	id         TEXT PRIMARY KEY,
	slug       TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	icon       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS countries (
	id              TEXT PRIMARY KEY,
	code            TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	companies_count INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS cities (
	id              TEXT PRIMARY KEY,
	slug            TEXT NOT NULL,
	name            TEXT NOT NULL,
	country_id      TEXT NOT NULL REFERENCES countries(id),
	country_code    TEXT NOT NULL,
	companies_count INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(country_id, slug)
);

CREATE TABLE IF NOT EXISTS sub_areas (
	id           TEXT PRIMARY KEY,
	slug         TEXT NOT NULL,
	name         TEXT NOT NULL,
	city_id      TEXT NOT NULL REFERENCES cities(id),
	country_id   TEXT NOT NULL REFERENCES countries(id),
	country_code TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(city_id, slug)
);

CREATE TABLE IF NOT EXISTS companies (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	slug          TEXT NOT NULL UNIQUE,
	description   TEXT NOT NULL DEFAULT '',
	category_id   TEXT NOT NULL REFERENCES categories(id),
	city_id       TEXT NOT NULL REFERENCES cities(id),
	country_id    TEXT NOT NULL REFERENCES countries(id),
	sub_area_id   TEXT,
	phone         TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	website       TEXT NOT NULL DEFAULT '',
	address       TEXT NOT NULL DEFAULT '',
	rating        REAL NOT NULL DEFAULT 0,
	reviews_count INTEGER NOT NULL DEFAULT 0,
	latitude      REAL,
	longitude     REAL,
	main_image    TEXT NOT NULL DEFAULT '',
	services      TEXT NOT NULL DEFAULT '[]',
	specialties   TEXT NOT NULL DEFAULT '[]',
	is_active     INTEGER NOT NULL DEFAULT 1,
	is_verified   INTEGER NOT NULL DEFAULT 0,
	is_featured   INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS company_images (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	image_url  TEXT NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0,
	alt_text   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reviews (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	user_name  TEXT NOT NULL,
	rating     INTEGER NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	comment    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS company_tags (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id),
	tag_name   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(company_id, tag_name)
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
CREATE INDEX IF NOT EXISTS idx_companies_phone ON companies(phone);
CREATE INDEX IF NOT EXISTS idx_companies_email ON companies(email);
CREATE INDEX IF NOT EXISTS idx_company_images_company ON company_images(company_id);
CREATE INDEX IF NOT EXISTS idx_reviews_company ON reviews(company_id);
CREATE INDEX IF NOT EXISTS idx_company_tags_company ON company_tags(company_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, name, icon, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list categories")
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Icon, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan category")
		}
		cats = append(cats, c)
	}
	return cats, eris.Wrap(rows.Err(), "sqlite: list categories iterate")
}

func (s *SQLiteStore) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, icon, created_at FROM categories WHERE slug = ?`, slug,
	).Scan(&c.ID, &c.Slug, &c.Name, &c.Icon, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get category by slug")
	}
	return &c, nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, slug, name, icon, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Slug, c.Name, c.Icon, c.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert category")
}

func (s *SQLiteStore) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, companies_count, created_at FROM countries ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list countries")
	}
	defer rows.Close()

	var countries []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.CompaniesCount, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan country")
		}
		countries = append(countries, c)
	}
	return countries, eris.Wrap(rows.Err(), "sqlite: list countries iterate")
}

func (s *SQLiteStore) CreateCountry(ctx context.Context, c *model.Country) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO countries (id, code, name, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Code, c.Name, c.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert country")
}

func (s *SQLiteStore) ListCities(ctx context.Context) ([]model.City, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, name, country_id, country_code, companies_count, created_at FROM cities ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list cities")
	}
	defer rows.Close()

	var cities []model.City
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.CountryID, &c.CountryCode, &c.CompaniesCount, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan city")
		}
		cities = append(cities, c)
	}
	return cities, eris.Wrap(rows.Err(), "sqlite: list cities iterate")
}

func (s *SQLiteStore) CreateCity(ctx context.Context, c *model.City) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cities (id, slug, name, country_id, country_code, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Slug, c.Name, c.CountryID, c.CountryCode, c.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert city")
}

func (s *SQLiteStore) ListSubAreas(ctx context.Context, cityID string) ([]model.SubArea, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, name, city_id, country_id, country_code, created_at FROM sub_areas WHERE city_id = ? ORDER BY name`,
		cityID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sub areas")
	}
	defer rows.Close()

	var areas []model.SubArea
	for rows.Next() {
		var sa model.SubArea
		if err := rows.Scan(&sa.ID, &sa.Slug, &sa.Name, &sa.CityID, &sa.CountryID, &sa.CountryCode, &sa.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sub area")
		}
		areas = append(areas, sa)
	}
	return areas, eris.Wrap(rows.Err(), "sqlite: list sub areas iterate")
}

func (s *SQLiteStore) CreateSubArea(ctx context.Context, sa *model.SubArea) error {
	if sa.ID == "" {
		sa.ID = uuid.New().String()
	}
	sa.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sub_areas (id, slug, name, city_id, country_id, country_code, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sa.ID, sa.Slug, sa.Name, sa.CityID, sa.CountryID, sa.CountryCode, sa.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert sub area")
}

func (s *SQLiteStore) FindDuplicateCompany(ctx context.Context, name, phone, email string) (*model.Company, error) {
	query := `SELECT id, name, slug FROM companies WHERE lower(name) = lower(?)`
	args := []any{name}

	if phone != "" {
		query += ` OR phone = ?`
		args = append(args, phone)
	}
	if email != "" {
		query += ` OR lower(email) = lower(?)`
		args = append(args, email)
	}
	query += ` LIMIT 1`

	var c model.Company
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find duplicate company")
	}
	return &c, nil
}

func (s *SQLiteStore) CompanySlugExists(ctx context.Context, slug string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM companies WHERE slug = ?`, slug).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "sqlite: slug exists")
	}
	return true, nil
}

func (s *SQLiteStore) CreateCompany(ctx context.Context, c *model.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	services, err := json.Marshal(emptyIfNil(c.Services))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal services")
	}
	specialties, err := json.Marshal(emptyIfNil(c.Specialties))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal specialties")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO companies (
			id, name, slug, description, category_id, city_id, country_id, sub_area_id,
			phone, email, website, address, rating, reviews_count, latitude, longitude,
			main_image, services, specialties, is_active, is_verified, is_featured,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Description, c.CategoryID, c.CityID, c.CountryID, nullIfEmpty(c.SubAreaID),
		c.Phone, c.Email, c.Website, c.Address, c.Rating, c.ReviewsCount, c.Latitude, c.Longitude,
		c.MainImage, string(services), string(specialties), c.IsActive, c.IsVerified, c.IsFeatured,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: companies.slug") {
			return ErrSlugTaken
		}
		return eris.Wrap(err, "sqlite: insert company")
	}
	return nil
}

func (s *SQLiteStore) UpdateCompanyRating(ctx context.Context, companyID string, rating float64, reviewsCount int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET rating = ?, reviews_count = ?, updated_at = ? WHERE id = ?`,
		rating, reviewsCount, time.Now().UTC(), companyID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update rating for company %s", companyID)
	}
	return checkRowsAffected(res, "company", companyID)
}

func (s *SQLiteStore) SetCompanyMainImage(ctx context.Context, companyID, imageURL string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET main_image = ?, updated_at = ? WHERE id = ?`,
		imageURL, time.Now().UTC(), companyID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set main image for company %s", companyID)
	}
	return checkRowsAffected(res, "company", companyID)
}

func (s *SQLiteStore) IncrementCompanyCounts(ctx context.Context, countryID, cityID string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE countries SET companies_count = companies_count + 1 WHERE id = ?`, countryID,
	); err != nil {
		return eris.Wrap(err, "sqlite: increment country count")
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE cities SET companies_count = companies_count + 1 WHERE id = ?`, cityID,
	); err != nil {
		return eris.Wrap(err, "sqlite: increment city count")
	}
	return nil
}

func (s *SQLiteStore) CreateCompanyImage(ctx context.Context, img *model.CompanyImage) error {
	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	img.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO company_images (id, company_id, image_url, sort_order, alt_text, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.ID, img.CompanyID, img.ImageURL, img.SortOrder, img.AltText, img.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert company image")
}

func (s *SQLiteStore) CreateReview(ctx context.Context, r *model.Review) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (id, company_id, user_name, rating, title, comment, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CompanyID, r.UserName, r.Rating, r.Title, r.Comment, r.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert review")
}

func (s *SQLiteStore) ListReviews(ctx context.Context, companyID string) ([]model.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, user_name, rating, title, comment, created_at FROM reviews WHERE company_id = ? ORDER BY created_at`,
		companyID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reviews")
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.UserName, &r.Rating, &r.Title, &r.Comment, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan review")
		}
		reviews = append(reviews, r)
	}
	return reviews, eris.Wrap(rows.Err(), "sqlite: list reviews iterate")
}

func (s *SQLiteStore) CreateCompanyTag(ctx context.Context, t *model.CompanyTag) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO company_tags (id, company_id, tag_name, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.CompanyID, t.TagName, t.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert company tag")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
