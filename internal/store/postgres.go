package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Subhe93/murbaat-import/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, extracted so tests can
// substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS categories (
	id         UUID PRIMARY KEY,
	slug       TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	icon       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS countries (
	id              UUID PRIMARY KEY,
	code            TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	companies_count INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cities (
	id              UUID PRIMARY KEY,
	slug            TEXT NOT NULL,
	name            TEXT NOT NULL,
	country_id      UUID NOT NULL REFERENCES countries(id),
	country_code    TEXT NOT NULL,
	companies_count INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(country_id, slug)
);

CREATE TABLE IF NOT EXISTS sub_areas (
	id           UUID PRIMARY KEY,
	slug         TEXT NOT NULL,
	name         TEXT NOT NULL,
	city_id      UUID NOT NULL REFERENCES cities(id),
	country_id   UUID NOT NULL REFERENCES countries(id),
	country_code TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(city_id, slug)
);

CREATE TABLE IF NOT EXISTS companies (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	slug          TEXT NOT NULL UNIQUE,
	description   TEXT NOT NULL DEFAULT '',
	category_id   UUID NOT NULL REFERENCES categories(id),
	city_id       UUID NOT NULL REFERENCES cities(id),
	country_id    UUID NOT NULL REFERENCES countries(id),
	sub_area_id   UUID,
	phone         TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	website       TEXT NOT NULL DEFAULT '',
	address       TEXT NOT NULL DEFAULT '',
	rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
	reviews_count INTEGER NOT NULL DEFAULT 0,
	latitude      DOUBLE PRECISION,
	longitude     DOUBLE PRECISION,
	main_image    TEXT NOT NULL DEFAULT '',
	services      JSONB NOT NULL DEFAULT '[]',
	specialties   JSONB NOT NULL DEFAULT '[]',
	is_active     BOOLEAN NOT NULL DEFAULT true,
	is_verified   BOOLEAN NOT NULL DEFAULT false,
	is_featured   BOOLEAN NOT NULL DEFAULT false,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS company_images (
	id         UUID PRIMARY KEY,
	company_id UUID NOT NULL REFERENCES companies(id),
	image_url  TEXT NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0,
	alt_text   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reviews (
	id         UUID PRIMARY KEY,
	company_id UUID NOT NULL REFERENCES companies(id),
	user_name  TEXT NOT NULL,
	rating     INTEGER NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	comment    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS company_tags (
	id         UUID PRIMARY KEY,
	company_id UUID NOT NULL REFERENCES companies(id),
	tag_name   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(company_id, tag_name)
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(lower(name));
CREATE INDEX IF NOT EXISTS idx_companies_phone ON companies(phone);
CREATE INDEX IF NOT EXISTS idx_companies_email ON companies(lower(email));
CREATE INDEX IF NOT EXISTS idx_company_images_company ON company_images(company_id);
CREATE INDEX IF NOT EXISTS idx_reviews_company ON reviews(company_id);
CREATE INDEX IF NOT EXISTS idx_company_tags_company ON company_tags(company_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, slug, name, icon, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list categories")
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Icon, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan category")
		}
		cats = append(cats, c)
	}
	return cats, eris.Wrap(rows.Err(), "postgres: list categories iterate")
}

func (s *PostgresStore) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := s.pool.QueryRow(ctx,
		`SELECT id, slug, name, icon, created_at FROM categories WHERE slug = $1`, slug,
	).Scan(&c.ID, &c.Slug, &c.Name, &c.Icon, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get category by slug")
	}
	return &c, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO categories (id, slug, name, icon, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Slug, c.Name, c.Icon, c.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert category")
}

func (s *PostgresStore) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, code, name, companies_count, created_at FROM countries ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list countries")
	}
	defer rows.Close()

	var countries []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.CompaniesCount, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan country")
		}
		countries = append(countries, c)
	}
	return countries, eris.Wrap(rows.Err(), "postgres: list countries iterate")
}

func (s *PostgresStore) CreateCountry(ctx context.Context, c *model.Country) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO countries (id, code, name, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Code, c.Name, c.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert country")
}

func (s *PostgresStore) ListCities(ctx context.Context) ([]model.City, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, slug, name, country_id, country_code, companies_count, created_at FROM cities ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list cities")
	}
	defer rows.Close()

	var cities []model.City
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.CountryID, &c.CountryCode, &c.CompaniesCount, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan city")
		}
		cities = append(cities, c)
	}
	return cities, eris.Wrap(rows.Err(), "postgres: list cities iterate")
}

func (s *PostgresStore) CreateCity(ctx context.Context, c *model.City) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cities (id, slug, name, country_id, country_code, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Slug, c.Name, c.CountryID, c.CountryCode, c.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert city")
}

func (s *PostgresStore) ListSubAreas(ctx context.Context, cityID string) ([]model.SubArea, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, slug, name, city_id, country_id, country_code, created_at FROM sub_areas WHERE city_id = $1 ORDER BY name`,
		cityID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sub areas")
	}
	defer rows.Close()

	var areas []model.SubArea
	for rows.Next() {
		var sa model.SubArea
		if err := rows.Scan(&sa.ID, &sa.Slug, &sa.Name, &sa.CityID, &sa.CountryID, &sa.CountryCode, &sa.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sub area")
		}
		areas = append(areas, sa)
	}
	return areas, eris.Wrap(rows.Err(), "postgres: list sub areas iterate")
}

func (s *PostgresStore) CreateSubArea(ctx context.Context, sa *model.SubArea) error {
	if sa.ID == "" {
		sa.ID = uuid.New().String()
	}
	sa.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sub_areas (id, slug, name, city_id, country_id, country_code, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sa.ID, sa.Slug, sa.Name, sa.CityID, sa.CountryID, sa.CountryCode, sa.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert sub area")
}

func (s *PostgresStore) FindDuplicateCompany(ctx context.Context, name, phone, email string) (*model.Company, error) {
	// OR semantics: any single matching field marks the row a duplicate.
	// Empty phone/email must not match rows that also have them empty.
	query := `SELECT id, name, slug FROM companies
		WHERE lower(name) = lower($1)
		   OR ($2 != '' AND phone = $2)
		   OR ($3 != '' AND lower(email) = lower($3))
		LIMIT 1`

	var c model.Company
	err := s.pool.QueryRow(ctx, query, name, phone, email).Scan(&c.ID, &c.Name, &c.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find duplicate company")
	}
	return &c, nil
}

func (s *PostgresStore) CompanySlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM companies WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrap(err, "postgres: slug exists")
	}
	return exists, nil
}

func (s *PostgresStore) CreateCompany(ctx context.Context, c *model.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	services, err := json.Marshal(emptyIfNil(c.Services))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal services")
	}
	specialties, err := json.Marshal(emptyIfNil(c.Specialties))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal specialties")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO companies (
			id, name, slug, description, category_id, city_id, country_id, sub_area_id,
			phone, email, website, address, rating, reviews_count, latitude, longitude,
			main_image, services, specialties, is_active, is_verified, is_featured,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		c.ID, c.Name, c.Slug, c.Description, c.CategoryID, c.CityID, c.CountryID, nullIfEmpty(c.SubAreaID),
		c.Phone, c.Email, c.Website, c.Address, c.Rating, c.ReviewsCount, c.Latitude, c.Longitude,
		c.MainImage, services, specialties, c.IsActive, c.IsVerified, c.IsFeatured,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "companies_slug_key" {
			return ErrSlugTaken
		}
		return eris.Wrap(err, "postgres: insert company")
	}
	return nil
}

func (s *PostgresStore) UpdateCompanyRating(ctx context.Context, companyID string, rating float64, reviewsCount int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET rating = $1, reviews_count = $2, updated_at = $3 WHERE id = $4`,
		rating, reviewsCount, time.Now().UTC(), companyID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update rating for company %s", companyID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", companyID)
	}
	return nil
}

func (s *PostgresStore) SetCompanyMainImage(ctx context.Context, companyID, imageURL string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET main_image = $1, updated_at = $2 WHERE id = $3`,
		imageURL, time.Now().UTC(), companyID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set main image for company %s", companyID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", companyID)
	}
	return nil
}

func (s *PostgresStore) IncrementCompanyCounts(ctx context.Context, countryID, cityID string) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE countries SET companies_count = companies_count + 1 WHERE id = $1`, countryID,
	); err != nil {
		return eris.Wrap(err, "postgres: increment country count")
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE cities SET companies_count = companies_count + 1 WHERE id = $1`, cityID,
	); err != nil {
		return eris.Wrap(err, "postgres: increment city count")
	}
	return nil
}

func (s *PostgresStore) CreateCompanyImage(ctx context.Context, img *model.CompanyImage) error {
	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	img.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO company_images (id, company_id, image_url, sort_order, alt_text, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		img.ID, img.CompanyID, img.ImageURL, img.SortOrder, img.AltText, img.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert company image")
}

func (s *PostgresStore) CreateReview(ctx context.Context, r *model.Review) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reviews (id, company_id, user_name, rating, title, comment, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.CompanyID, r.UserName, r.Rating, r.Title, r.Comment, r.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert review")
}

func (s *PostgresStore) ListReviews(ctx context.Context, companyID string) ([]model.Review, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, user_name, rating, title, comment, created_at FROM reviews WHERE company_id = $1 ORDER BY created_at`,
		companyID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reviews")
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.UserName, &r.Rating, &r.Title, &r.Comment, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan review")
		}
		reviews = append(reviews, r)
	}
	return reviews, eris.Wrap(rows.Err(), "postgres: list reviews iterate")
}

func (s *PostgresStore) CreateCompanyTag(ctx context.Context, t *model.CompanyTag) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO company_tags (id, company_id, tag_name, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (company_id, tag_name) DO NOTHING`,
		t.ID, t.CompanyID, t.TagName, t.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert company tag")
}
