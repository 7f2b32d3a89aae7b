package resolver

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subhe93/murbaat-import/internal/model"
)

// fakeStore is an in-memory Store covering what the resolver touches.
// Company-side methods are stubs.
type fakeStore struct {
	mu        sync.Mutex
	cats      []model.Category
	countries []model.Country
	cities    []model.City
	subAreas  []model.SubArea
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Category(nil), f.cats...), nil
}

func (f *fakeStore) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cats {
		if c.Slug == slug {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateCategory(ctx context.Context, c *model.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = "cat-" + strconv.Itoa(len(f.cats)+1)
	f.cats = append(f.cats, *c)
	return nil
}

func (f *fakeStore) ListCountries(ctx context.Context) ([]model.Country, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Country(nil), f.countries...), nil
}

func (f *fakeStore) CreateCountry(ctx context.Context, c *model.Country) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = "country-" + strconv.Itoa(len(f.countries)+1)
	f.countries = append(f.countries, *c)
	return nil
}

func (f *fakeStore) ListCities(ctx context.Context) ([]model.City, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.City(nil), f.cities...), nil
}

func (f *fakeStore) CreateCity(ctx context.Context, c *model.City) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = "city-" + strconv.Itoa(len(f.cities)+1)
	f.cities = append(f.cities, *c)
	return nil
}

func (f *fakeStore) ListSubAreas(ctx context.Context, cityID string) ([]model.SubArea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SubArea
	for _, sa := range f.subAreas {
		if sa.CityID == cityID {
			out = append(out, sa)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSubArea(ctx context.Context, sa *model.SubArea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sa.ID = "area-" + strconv.Itoa(len(f.subAreas)+1)
	f.subAreas = append(f.subAreas, *sa)
	return nil
}

func (f *fakeStore) FindDuplicateCompany(ctx context.Context, name, phone, email string) (*model.Company, error) {
	return nil, nil
}
func (f *fakeStore) CompanySlugExists(ctx context.Context, slug string) (bool, error) {
	return false, nil
}
func (f *fakeStore) CreateCompany(ctx context.Context, c *model.Company) error { return nil }
func (f *fakeStore) UpdateCompanyRating(ctx context.Context, companyID string, rating float64, reviewsCount int) error {
	return nil
}
func (f *fakeStore) SetCompanyMainImage(ctx context.Context, companyID, imageURL string) error {
	return nil
}
func (f *fakeStore) IncrementCompanyCounts(ctx context.Context, countryID, cityID string) error {
	return nil
}
func (f *fakeStore) CreateCompanyImage(ctx context.Context, img *model.CompanyImage) error {
	return nil
}
func (f *fakeStore) CreateReview(ctx context.Context, r *model.Review) error { return nil }
func (f *fakeStore) ListReviews(ctx context.Context, companyID string) ([]model.Review, error) {
	return nil, nil
}
func (f *fakeStore) CreateCompanyTag(ctx context.Context, t *model.CompanyTag) error { return nil }
func (f *fakeStore) Migrate(ctx context.Context) error                               { return nil }
func (f *fakeStore) Close() error                                                    { return nil }

func seededStore() *fakeStore {
	return &fakeStore{
		cats: []model.Category{
			{ID: "cat-rest", Slug: "restaurants", Name: "مطاعم"},
			{ID: "cat-hotel", Slug: "hotels", Name: "فنادق"},
			{ID: "cat-fast", Slug: "fast-food", Name: "مطاعم وجبات سريعة"},
		},
		countries: []model.Country{
			{ID: "sy", Code: "sy", Name: "سوريا"},
			{ID: "jo", Code: "jo", Name: "الأردن"},
		},
		cities: []model.City{
			{ID: "dam", Slug: "دمشق", Name: "دمشق", CountryID: "sy", CountryCode: "sy"},
			{ID: "alp", Slug: "حلب", Name: "حلب", CountryID: "sy", CountryCode: "sy"},
			{ID: "amm", Slug: "عمان", Name: "عمان", CountryID: "jo", CountryCode: "jo"},
		},
	}
}

func TestResolveCategoryExact(t *testing.T) {
	r := New(seededStore())
	cat, err := r.ResolveCategory(context.Background(), "مطاعم", false)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "cat-rest", cat.ID)
}

func TestResolveCategoryCaseInsensitive(t *testing.T) {
	st := seededStore()
	st.cats = append(st.cats, model.Category{ID: "cat-en", Slug: "bakeries", Name: "Bakeries"})
	r := New(st)

	cat, err := r.ResolveCategory(context.Background(), "BAKERIES", false)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "cat-en", cat.ID)
}

func TestResolveCategorySubstringPrefersClosestLength(t *testing.T) {
	r := New(seededStore())

	// The input contains both "مطاعم" and "مطاعم وجبات سريعة"; the candidate
	// closest in length wins.
	cat, err := r.ResolveCategory(context.Background(), "مطاعم وجبات سريعة ولذيذة", false)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "cat-fast", cat.ID)
}

func TestResolveCategoryDictionaryPhrase(t *testing.T) {
	r := New(seededStore())

	// "restaurant" maps onto the existing restaurants slug.
	cat, err := r.ResolveCategory(context.Background(), "Restaurant", false)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "cat-rest", cat.ID)
}

func TestResolveCategoryDictionarySlugFromStore(t *testing.T) {
	st := seededStore()
	r := New(st)

	// Load the snapshot, then add the category behind its back.
	_, err := r.ResolveCategory(context.Background(), "مطاعم", false)
	require.NoError(t, err)
	st.mu.Lock()
	st.cats = append(st.cats, model.Category{ID: "cat-ph", Slug: "pharmacies", Name: "صيدليات"})
	st.mu.Unlock()

	// The dictionary step consults the store for the slug and adopts the
	// existing record instead of creating a second one.
	cat, err := r.ResolveCategory(context.Background(), "pharmacy", true)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "cat-ph", cat.ID)
	assert.Len(t, st.cats, 4)
}

func TestResolveCategoryDictionaryCreates(t *testing.T) {
	st := seededStore()
	r := New(st)

	cat, err := r.ResolveCategory(context.Background(), "pharmacy", true)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "pharmacies", cat.Slug)
	assert.Equal(t, "صيدليات", cat.Name)
}

func TestResolveCategoryCreatesVerbatim(t *testing.T) {
	st := seededStore()
	r := New(st)

	cat, err := r.ResolveCategory(context.Background(), "خدمات تنظيف", true)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "خدمات تنظيف", cat.Name)

	// A later row with the same value hits the snapshot, not a second create.
	again, err := r.ResolveCategory(context.Background(), "خدمات تنظيف", true)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, cat.ID, again.ID)
	assert.Len(t, st.cats, 4)
}

func TestResolveCategoryUnresolvedWithoutCreate(t *testing.T) {
	r := New(seededStore())
	cat, err := r.ResolveCategory(context.Background(), "خدمات تنظيف", false)
	require.NoError(t, err)
	assert.Nil(t, cat)
}

func TestResolveLocationScopesCityToCountry(t *testing.T) {
	r := New(seededStore())

	country, city, err := r.ResolveLocation(context.Background(), "الأردن", "عمان", false)
	require.NoError(t, err)
	require.NotNil(t, country)
	require.NotNil(t, city)
	assert.Equal(t, "jo", country.ID)
	assert.Equal(t, "amm", city.ID)
}

func TestResolveLocationCreatesCity(t *testing.T) {
	st := seededStore()
	r := New(st)

	country, city, err := r.ResolveLocation(context.Background(), "سوريا", "حمص", true)
	require.NoError(t, err)
	require.NotNil(t, country)
	require.NotNil(t, city)
	assert.Equal(t, "sy", city.CountryID)
	assert.Equal(t, "sy", city.CountryCode)
	assert.Equal(t, "حمص", city.Name)
}

func TestResolveLocationCreatesCountryWithDictionaryCode(t *testing.T) {
	st := seededStore()
	r := New(st)

	country, _, err := r.ResolveLocation(context.Background(), "لبنان", "", true)
	require.NoError(t, err)
	require.NotNil(t, country)
	assert.Equal(t, "lb", country.Code)
}

func TestResolveFromAddress(t *testing.T) {
	r := New(seededStore())

	country, city, err := r.ResolveFromAddress(context.Background(), "شارع الحمرا, دمشق, سوريا", false)
	require.NoError(t, err)
	require.NotNil(t, country)
	require.NotNil(t, city)
	assert.Equal(t, "sy", country.ID)
	assert.Equal(t, "dam", city.ID)
}

func TestResolveFromAddressUnknown(t *testing.T) {
	r := New(seededStore())

	country, city, err := r.ResolveFromAddress(context.Background(), "Nowhere Street 5", false)
	require.NoError(t, err)
	assert.Nil(t, country)
	assert.Nil(t, city)
}

func TestResolveSubAreaCreates(t *testing.T) {
	st := seededStore()
	r := New(st)
	city := &model.City{ID: "dam", Name: "دمشق", CountryID: "sy", CountryCode: "sy"}

	sa, err := r.ResolveSubArea(context.Background(), "المزة", city, true)
	require.NoError(t, err)
	require.NotNil(t, sa)
	assert.Equal(t, "dam", sa.CityID)
	assert.Equal(t, "sy", sa.CountryCode)

	again, err := r.ResolveSubArea(context.Background(), "المزة", city, false)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, sa.ID, again.ID)
}
