package model

import "time"

// Canonical column names for an import row. The source exports use
// French-labeled headers (Nom, Catégorie, ...); normalize.MapHeaders
// translates those into these keys so the pipeline never sees raw labels.
const (
	ColName        = "name"
	ColRating      = "rating"
	ColCategory    = "category"
	ColAddress     = "address"
	ColPhone       = "phone"
	ColEmail       = "email"
	ColWebsite     = "website"
	ColImages      = "images"
	ColReviews     = "reviews"
	ColCountry     = "country"
	ColCity        = "city"
	ColDescription = "description"
	ColServices    = "services"
	ColTags        = "tags"
)

// RawRow is one CSV/XLSX record keyed by canonical column name.
// Missing columns are simply absent.
type RawRow map[string]string

// Get returns the trimmed value for a column, or "" when absent.
func (r RawRow) Get(col string) string {
	return r[col]
}

// RawReview is one review entry parsed from the JSON-encoded Reviews column.
// Title is derived from the leading words of Text when the entry has none.
type RawReview struct {
	Author  string    `json:"author"`
	Title   string    `json:"title"`
	Text    string    `json:"text"`
	Rating  int       `json:"rating"`
	Date    time.Time `json:"-"`
	RawDate string    `json:"date"`
}

// CompanyInput is the normalized form of one raw row, consumed by the
// validator and the importer. It is never persisted.
type CompanyInput struct {
	Name         string
	CategoryText string
	CountryText  string
	CityText     string
	Address      string
	Phone        string
	Email        string
	Website      string
	Description  string
	Rating       float64
	ReviewCount  int
	Images       []string
	Reviews      []RawReview
	Services     []string
	Specialties  []string
	Tags         []string
}

// ImportSettings controls per-run import behavior.
type ImportSettings struct {
	DownloadImages          bool `json:"download_images"`
	CreateMissingCategories bool `json:"create_missing_categories"`
	CreateMissingCities     bool `json:"create_missing_cities"`
	SkipDuplicates          bool `json:"skip_duplicates"`
	ValidateEmails          bool `json:"validate_emails"`
	ValidatePhones          bool `json:"validate_phones"`
	BatchSize               int  `json:"batch_size"`
}

// ImportResult is the per-row outcome returned to the batch driver.
// Exactly one of the three terminal states holds: success, skipped, or failed.
type ImportResult struct {
	Success          bool   `json:"success"`
	Skipped          bool   `json:"skipped,omitempty"`
	Error            string `json:"error,omitempty"`
	CompanyID        string `json:"company_id,omitempty"`
	ImagesDownloaded int    `json:"images_downloaded,omitempty"`
	ImagesFailed     int    `json:"images_failed,omitempty"`
}

// RowError records a failed row for the summary report.
type RowError struct {
	Row         int    `json:"row"`
	CompanyName string `json:"company_name"`
	Error       string `json:"error"`
}

// RowSkip records a skipped (duplicate) row for the summary report.
type RowSkip struct {
	Row         int    `json:"row"`
	CompanyName string `json:"company_name"`
	Reason      string `json:"reason"`
}

// ImportSummary aggregates per-row results across a whole batch.
type ImportSummary struct {
	TotalRows         int        `json:"total_rows"`
	ProcessedRows     int        `json:"processed_rows"`
	SuccessfulImports int        `json:"successful_imports"`
	FailedImports     int        `json:"failed_imports"`
	SkippedRows       int        `json:"skipped_rows"`
	DownloadedImages  int        `json:"downloaded_images"`
	FailedImages      int        `json:"failed_images"`
	Errors            []RowError `json:"errors,omitempty"`
	Skipped           []RowSkip  `json:"skipped,omitempty"`
}

// Add folds one row result into the summary.
func (s *ImportSummary) Add(row int, name string, res ImportResult) {
	s.ProcessedRows++
	s.DownloadedImages += res.ImagesDownloaded
	s.FailedImages += res.ImagesFailed
	switch {
	case res.Skipped:
		s.SkippedRows++
		s.Skipped = append(s.Skipped, RowSkip{Row: row, CompanyName: name, Reason: res.Error})
	case res.Success:
		s.SuccessfulImports++
	default:
		s.FailedImports++
		s.Errors = append(s.Errors, RowError{Row: row, CompanyName: name, Error: res.Error})
	}
}
