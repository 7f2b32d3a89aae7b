// Package resolver maps free-text category and location values from import
// rows onto canonical records, creating missing ones when the run allows it.
package resolver

import (
	"context"
	_ "embed"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Subhe93/murbaat-import/internal/model"
	"github.com/Subhe93/murbaat-import/internal/normalize"
	"github.com/Subhe93/murbaat-import/internal/store"
)

//go:embed mappings.yaml
var mappingsYAML []byte

type categoryMapping struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type mappings struct {
	Categories map[string]categoryMapping `yaml:"categories"`
	Countries  map[string]string          `yaml:"countries"`
}

func loadMappings() mappings {
	var m mappings
	if err := yaml.Unmarshal(mappingsYAML, &m); err != nil {
		// The dictionary is embedded; a parse failure is a build defect.
		panic(eris.Wrap(err, "resolver: parse mappings.yaml"))
	}
	return m
}

// Resolver resolves free-text values against a snapshot of the canonical
// tables. The snapshot is loaded once per run and updated in place as records
// are created, so later rows see what earlier rows created. All lookups and
// creations are serialized through the mutex; two rows racing on the same
// missing category produce one record.
type Resolver struct {
	store store.Store
	dict  mappings

	mu        sync.Mutex
	loaded    bool
	cats      []model.Category
	countries []model.Country
	cities    []model.City
	subAreas  map[string][]model.SubArea
}

// New creates a Resolver with an empty snapshot. The snapshot loads lazily on
// the first resolve call.
func New(s store.Store) *Resolver {
	return &Resolver{
		store:    s,
		dict:     loadMappings(),
		subAreas: make(map[string][]model.SubArea),
	}
}

func (r *Resolver) ensureLoaded(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	cats, err := r.store.ListCategories(ctx)
	if err != nil {
		return eris.Wrap(err, "resolver: load categories")
	}
	countries, err := r.store.ListCountries(ctx)
	if err != nil {
		return eris.Wrap(err, "resolver: load countries")
	}
	cities, err := r.store.ListCities(ctx)
	if err != nil {
		return eris.Wrap(err, "resolver: load cities")
	}
	r.cats = cats
	r.countries = countries
	r.cities = cities
	r.loaded = true
	return nil
}

// matchName runs the fuzzy cascade over candidate names: exact match, then
// case-insensitive, then substring either way. Substring ties go to the
// candidate closest in length to the input.
func matchName(input string, names []string) int {
	for i, n := range names {
		if n == input {
			return i
		}
	}
	for i, n := range names {
		if strings.EqualFold(n, input) {
			return i
		}
	}
	low := strings.ToLower(input)
	best := -1
	bestDiff := 0
	for i, n := range names {
		ln := strings.ToLower(n)
		if !strings.Contains(ln, low) && !strings.Contains(low, ln) {
			continue
		}
		diff := len([]rune(n)) - len([]rune(input))
		if diff < 0 {
			diff = -diff
		}
		if best == -1 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}

// ResolveCategory resolves a free-text category value. The cascade is fuzzy
// match against existing categories, then the known-phrase dictionary, then
// verbatim creation when createMissing is set. Returns nil with no error when
// the value cannot be resolved and creation is not permitted.
func (r *Resolver) ResolveCategory(ctx context.Context, text string, createMissing bool) (*model.Category, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	names := make([]string, len(r.cats))
	for i, c := range r.cats {
		names[i] = c.Name
	}
	if i := matchName(text, names); i >= 0 {
		c := r.cats[i]
		return &c, nil
	}

	if m, ok := r.dict.Categories[strings.ToLower(text)]; ok {
		for _, c := range r.cats {
			if c.Slug == m.Slug {
				cc := c
				return &cc, nil
			}
		}
		// The store may hold the slug already (created outside this run,
		// or after the snapshot loaded).
		existing, err := r.store.GetCategoryBySlug(ctx, m.Slug)
		if err != nil {
			return nil, eris.Wrapf(err, "resolver: look up category slug %q", m.Slug)
		}
		if existing != nil {
			r.cats = append(r.cats, *existing)
			return existing, nil
		}
		if createMissing {
			return r.createCategory(ctx, m.Name, m.Slug, m.Icon)
		}
	}

	if createMissing {
		slug := normalize.Slugify(text, "category")
		return r.createCategory(ctx, text, slug, "🏢")
	}
	return nil, nil
}

func (r *Resolver) createCategory(ctx context.Context, name, slug, icon string) (*model.Category, error) {
	c := model.Category{Slug: slug, Name: name, Icon: icon}
	if err := r.store.CreateCategory(ctx, &c); err != nil {
		return nil, eris.Wrapf(err, "resolver: create category %q", name)
	}
	r.cats = append(r.cats, c)
	zap.L().Info("created category", zap.String("name", name), zap.String("slug", slug))
	return &c, nil
}

// ResolveLocation resolves country and city text. The city match is scoped to
// the resolved country. Either return value may be nil when unresolved and
// creation is off.
func (r *Resolver) ResolveLocation(ctx context.Context, countryText, cityText string, createMissing bool) (*model.Country, *model.City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, nil, err
	}

	country, err := r.resolveCountryLocked(ctx, countryText, createMissing)
	if err != nil || country == nil {
		return country, nil, err
	}
	city, err := r.resolveCityLocked(ctx, cityText, country, createMissing)
	return country, city, err
}

func (r *Resolver) resolveCountryLocked(ctx context.Context, text string, createMissing bool) (*model.Country, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	names := make([]string, len(r.countries))
	for i, c := range r.countries {
		names[i] = c.Name
	}
	if i := matchName(text, names); i >= 0 {
		c := r.countries[i]
		return &c, nil
	}

	// Codes are also accepted as input ("sy", "SY").
	for _, c := range r.countries {
		if strings.EqualFold(c.Code, text) {
			cc := c
			return &cc, nil
		}
	}

	if !createMissing {
		return nil, nil
	}
	code := r.countryCode(text)
	for _, c := range r.countries {
		if c.Code == code {
			cc := c
			return &cc, nil
		}
	}
	c := model.Country{Code: code, Name: text}
	if err := r.store.CreateCountry(ctx, &c); err != nil {
		return nil, eris.Wrapf(err, "resolver: create country %q", text)
	}
	r.countries = append(r.countries, c)
	zap.L().Info("created country", zap.String("name", text), zap.String("code", code))
	return &c, nil
}

// countryCode derives a 2-letter code from a display name via the dictionary,
// falling back to the first two letters of the slug.
func (r *Resolver) countryCode(name string) string {
	if code, ok := r.dict.Countries[strings.ToLower(strings.TrimSpace(name))]; ok {
		return code
	}
	slug := normalize.SlugifyLatin(name, "xx")
	slug = strings.ReplaceAll(slug, "-", "")
	if len(slug) < 2 {
		return "xx"
	}
	return slug[:2]
}

func (r *Resolver) resolveCityLocked(ctx context.Context, text string, country *model.Country, createMissing bool) (*model.City, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var scoped []model.City
	var names []string
	for _, c := range r.cities {
		if c.CountryID != country.ID {
			continue
		}
		scoped = append(scoped, c)
		names = append(names, c.Name)
	}
	if i := matchName(text, names); i >= 0 {
		c := scoped[i]
		return &c, nil
	}

	if !createMissing {
		return nil, nil
	}
	c := model.City{
		Slug:        normalize.Slugify(text, "city"),
		Name:        text,
		CountryID:   country.ID,
		CountryCode: country.Code,
	}
	if err := r.store.CreateCity(ctx, &c); err != nil {
		return nil, eris.Wrapf(err, "resolver: create city %q", text)
	}
	r.cities = append(r.cities, c)
	zap.L().Info("created city", zap.String("name", text), zap.String("country", country.Code))
	return &c, nil
}

// ResolveFromAddress extracts a locale from a comma-separated address when the
// row carries no explicit country and city. The last segment is tried as the
// country; the remaining segments, right to left, as the city. Either return
// value may be nil.
func (r *Resolver) ResolveFromAddress(ctx context.Context, address string, createMissing bool) (*model.Country, *model.City, error) {
	parts := strings.Split(address, ",")
	var segs []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segs = append(segs, p)
		}
	}
	if len(segs) == 0 {
		return nil, nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, nil, err
	}

	// Only match against existing records here. Address segments are too
	// noisy to create canonical locations from.
	country, err := r.resolveCountryLocked(ctx, segs[len(segs)-1], false)
	if err != nil {
		return nil, nil, err
	}
	if country == nil {
		return nil, nil, nil
	}

	for i := len(segs) - 2; i >= 0; i-- {
		city, err := r.resolveCityLocked(ctx, segs[i], country, false)
		if err != nil {
			return nil, nil, err
		}
		if city != nil {
			return country, city, nil
		}
	}
	return country, nil, nil
}

// ResolveSubArea resolves a neighborhood within a city.
func (r *Resolver) ResolveSubArea(ctx context.Context, text string, city *model.City, createMissing bool) (*model.SubArea, error) {
	text = strings.TrimSpace(text)
	if text == "" || city == nil {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	areas, ok := r.subAreas[city.ID]
	if !ok {
		loaded, err := r.store.ListSubAreas(ctx, city.ID)
		if err != nil {
			return nil, eris.Wrap(err, "resolver: load sub areas")
		}
		r.subAreas[city.ID] = loaded
		areas = loaded
	}

	names := make([]string, len(areas))
	for i, a := range areas {
		names[i] = a.Name
	}
	if i := matchName(text, names); i >= 0 {
		a := areas[i]
		return &a, nil
	}

	if !createMissing {
		return nil, nil
	}
	sa := model.SubArea{
		Slug:        normalize.Slugify(text, "area"),
		Name:        text,
		CityID:      city.ID,
		CountryID:   city.CountryID,
		CountryCode: city.CountryCode,
	}
	if err := r.store.CreateSubArea(ctx, &sa); err != nil {
		return nil, eris.Wrapf(err, "resolver: create sub area %q", text)
	}
	r.subAreas[city.ID] = append(r.subAreas[city.ID], sa)
	return &sa, nil
}
