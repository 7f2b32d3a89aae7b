package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Subhe93/murbaat-import/internal/images"
	"github.com/Subhe93/murbaat-import/internal/importer"
	"github.com/Subhe93/murbaat-import/internal/model"
	"github.com/Subhe93/murbaat-import/internal/normalize"
	"github.com/Subhe93/murbaat-import/internal/resolver"
)

var (
	importCSV         string
	importXLSX        string
	importLimit       int
	importConcurrency int
	importDryRun      bool
	importOutput      string

	flagDownloadImages   bool
	flagCreateCategories bool
	flagCreateCities     bool
	flagSkipDuplicates   bool
	flagValidateEmails   bool
	flagValidatePhones   bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import companies from a CSV or XLSX export",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if importCSV == "" && importXLSX == "" {
			return eris.New("one of --csv or --xlsx is required")
		}

		rows, err := readRows()
		if err != nil {
			return err
		}
		if importLimit > 0 && len(rows) > importLimit {
			rows = rows[:importLimit]
		}
		zap.L().Info("rows loaded", zap.Int("count", len(rows)))

		settings := buildSettings(cmd)

		if importDryRun {
			return dryRun(rows)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		imp := importer.New(
			st,
			resolver.New(st),
			images.New(cfg.Images),
			cfg.Import.DefaultCountry,
			cfg.Import.DefaultCity,
		)

		concurrency := importConcurrency
		if concurrency < 1 {
			concurrency = cfg.Import.Concurrency
		}
		if concurrency < 1 {
			concurrency = 1
		}

		summary := model.ImportSummary{TotalRows: len(rows)}
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for n, raw := range rows {
			g.Go(func() error {
				res := imp.ImportRow(gctx, raw, settings)
				mu.Lock()
				summary.Add(n+2, raw.Get(model.ColName), res) // +2: header row, 1-based
				mu.Unlock()
				return nil // row failures are summary entries, not batch aborts
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "process rows")
		}

		zap.L().Info("import finished",
			zap.Int("total", summary.TotalRows),
			zap.Int("imported", summary.SuccessfulImports),
			zap.Int("failed", summary.FailedImports),
			zap.Int("skipped", summary.SkippedRows),
			zap.Int("images_downloaded", summary.DownloadedImages),
			zap.Int("images_failed", summary.FailedImages))

		if importOutput != "" {
			if err := writeJSON(importOutput, summary); err != nil {
				return err
			}
			zap.L().Info("results written", zap.String("path", importOutput))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSV, "csv", "", "path to CSV export")
	importCmd.Flags().StringVar(&importXLSX, "xlsx", "", "path to XLSX export")
	importCmd.Flags().IntVar(&importLimit, "limit", 0, "process at most N rows (0 = all)")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 0, "concurrent rows (default from config)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "print normalized rows without writing")
	importCmd.Flags().StringVar(&importOutput, "output", "", "write the JSON summary to this path")

	importCmd.Flags().BoolVar(&flagDownloadImages, "download-images", true, "download listing images")
	importCmd.Flags().BoolVar(&flagCreateCategories, "create-missing-categories", true, "create unknown categories")
	importCmd.Flags().BoolVar(&flagCreateCities, "create-missing-cities", true, "create unknown cities")
	importCmd.Flags().BoolVar(&flagSkipDuplicates, "skip-duplicates", true, "skip rows matching an existing company")
	importCmd.Flags().BoolVar(&flagValidateEmails, "validate-emails", true, "reject rows with malformed emails")
	importCmd.Flags().BoolVar(&flagValidatePhones, "validate-phones", true, "reject rows with malformed phones")

	rootCmd.AddCommand(importCmd)
}

// buildSettings starts from the configured defaults and applies only the
// flags the operator actually set.
func buildSettings(cmd *cobra.Command) model.ImportSettings {
	s := model.ImportSettings{
		DownloadImages:          cfg.Import.DownloadImages,
		CreateMissingCategories: cfg.Import.CreateMissingCategories,
		CreateMissingCities:     cfg.Import.CreateMissingCities,
		SkipDuplicates:          cfg.Import.SkipDuplicates,
		ValidateEmails:          cfg.Import.ValidateEmails,
		ValidatePhones:          cfg.Import.ValidatePhones,
		BatchSize:               cfg.Import.BatchSize,
	}
	f := cmd.Flags()
	if f.Changed("download-images") {
		s.DownloadImages = flagDownloadImages
	}
	if f.Changed("create-missing-categories") {
		s.CreateMissingCategories = flagCreateCategories
	}
	if f.Changed("create-missing-cities") {
		s.CreateMissingCities = flagCreateCities
	}
	if f.Changed("skip-duplicates") {
		s.SkipDuplicates = flagSkipDuplicates
	}
	if f.Changed("validate-emails") {
		s.ValidateEmails = flagValidateEmails
	}
	if f.Changed("validate-phones") {
		s.ValidatePhones = flagValidatePhones
	}
	return s
}

func readRows() ([]model.RawRow, error) {
	if importCSV != "" {
		return readCSVRows(importCSV)
	}
	return readXLSXRows(importXLSX)
}

func readCSVRows(path string) ([]model.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}
	index := normalize.MapHeaders(header)

	var rows []model.RawRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read record")
		}
		rows = append(rows, normalize.Row(record, index))
	}
	return rows, nil
}

func readXLSXRows(path string) ([]model.RawRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("sheet is empty")
	}

	header := make([]string, len(sheet.Rows[0].Cells))
	for i, cell := range sheet.Rows[0].Cells {
		header[i] = cell.String()
	}
	index := normalize.MapHeaders(header)

	var rows []model.RawRow
	for _, xr := range sheet.Rows[1:] {
		record := make([]string, len(xr.Cells))
		for i, cell := range xr.Cells {
			record[i] = cell.String()
		}
		rows = append(rows, normalize.Row(record, index))
	}
	return rows, nil
}

func dryRun(rows []model.RawRow) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, raw := range rows {
		in := normalize.Company(raw, time.Now())
		if err := enc.Encode(struct {
			Name     string   `json:"name"`
			Category string   `json:"category"`
			Country  string   `json:"country"`
			City     string   `json:"city"`
			Phone    string   `json:"phone"`
			Email    string   `json:"email"`
			Rating   float64  `json:"rating"`
			Reviews  int      `json:"reviews"`
			Images   []string `json:"images,omitempty"`
		}{
			Name:     in.Name,
			Category: in.CategoryText,
			Country:  in.CountryText,
			City:     in.CityText,
			Phone:    in.Phone,
			Email:    in.Email,
			Rating:   in.Rating,
			Reviews:  len(in.Reviews),
			Images:   in.Images,
		}); err != nil {
			return eris.Wrap(err, "encode row")
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}
