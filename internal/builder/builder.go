// Package builder turns the external wanted-persons dataset into a roster
// snapshot: fetch the CSV, validate its schema, fetch and embed every
// reference photo, and keep only the rows that produced a usable embedding.
package builder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-roster/internal/config"
	"github.com/kozaktomas/face-roster/internal/fingerprint"
	"github.com/kozaktomas/face-roster/internal/imaging"
	"github.com/kozaktomas/face-roster/internal/roster"
)

// SkipReason classifies why a dataset row was excluded from the roster.
type SkipReason string

const (
	SkipMissingFields SkipReason = "missing_fields" // nombre or imagen_url blank
	SkipMalformedRow  SkipReason = "malformed_row"  // CSV row could not be parsed
	SkipImageFetch    SkipReason = "image_fetch"    // reference photo unreachable
	SkipImageDecode   SkipReason = "image_decode"   // bytes were not a decodable image
	SkipProvider      SkipReason = "provider_error" // embedding service failed or returned a bad vector
	SkipNoFace        SkipReason = "no_face"        // image decoded but contained no detectable face
)

// RowResult is the outcome of processing a single dataset row. Row numbers
// are spreadsheet rows (data starts at row 2, after the header).
type RowResult struct {
	Row    int
	Name   string
	Person *roster.Person
	Skip   SkipReason
	Err    error
}

// Skipped reports whether the row was excluded.
func (r RowResult) Skipped() bool {
	return r.Skip != ""
}

// Report aggregates a full build run.
type Report struct {
	Rows    int                `json:"rows"`
	Valid   int                `json:"valid"`
	Skipped map[SkipReason]int `json:"skipped,omitempty"`
}

// Builder assembles roster records from the configured dataset. Per-row
// failures are isolated; only dataset-level problems abort a build.
type Builder struct {
	datasetURL    string
	columns       []string
	expectedDim   int
	maxImageBytes int64
	maxImageSize  int

	provider fingerprint.Provider
	client   *http.Client

	// OnRow, when set, is called after every processed row. Used by the CLI
	// for progress reporting and skip warnings.
	OnRow func(RowResult)
}

func New(cfg *config.Config, provider fingerprint.Provider) *Builder {
	return &Builder{
		datasetURL:    cfg.Dataset.URL,
		columns:       cfg.Dataset.Columns,
		expectedDim:   cfg.Embedding.Dim,
		maxImageBytes: cfg.Imaging.MaxBytes,
		maxImageSize:  cfg.Imaging.MaxSize,
		provider:      provider,
		client:        &http.Client{Timeout: 60 * time.Second},
	}
}

// Build runs the full pipeline and returns the valid records in dataset
// order. An unreachable dataset or a missing required column is fatal and
// returns an error before any image is fetched.
func (b *Builder) Build(ctx context.Context) ([]roster.Person, *Report, error) {
	if b.datasetURL == "" {
		return nil, nil, errors.New("dataset URL is not configured")
	}

	rows, colIndex, err := b.fetchDataset(ctx)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{Skipped: make(map[SkipReason]int)}
	var persons []roster.Person

	for i, row := range rows {
		result := b.processRow(ctx, i+2, row, colIndex)
		report.Rows++
		if result.Skipped() {
			report.Skipped[result.Skip]++
		} else {
			persons = append(persons, *result.Person)
			report.Valid++
		}
		if b.OnRow != nil {
			b.OnRow(result)
		}
	}

	return persons, report, nil
}

// fetchDataset downloads and parses the CSV, validating that every required
// column is present. Returns the data rows and a column name to index map.
func (b *Builder) fetchDataset(ctx context.Context) ([][]string, map[string]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.datasetURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create dataset request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("dataset fetch failed with status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1 // row length is validated per row

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("could not read dataset header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range b.columns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("dataset is missing required columns %v (expected %v, found %v)",
			missing, b.columns, header)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("could not read dataset rows: %w", err)
		}
		rows = append(rows, row)
	}

	return rows, colIndex, nil
}

// processRow turns one dataset row into a roster record, or a skip.
func (b *Builder) processRow(ctx context.Context, rowNum int, row []string, colIndex map[string]int) RowResult {
	field := func(col string) string {
		i := colIndex[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := RowResult{Row: rowNum}

	if len(row) < len(colIndex) {
		result.Skip = SkipMalformedRow
		result.Err = fmt.Errorf("row has %d fields, expected %d", len(row), len(colIndex))
		return result
	}

	name := field("nombre")
	result.Name = name
	imageURL := field("imagen_url")
	if name == "" || imageURL == "" {
		result.Skip = SkipMissingFields
		result.Err = errors.New("missing 'nombre' or 'imagen_url'")
		return result
	}

	imageData, err := b.fetchImage(ctx, imageURL)
	if err != nil {
		result.Skip = SkipImageFetch
		result.Err = err
		return result
	}

	normalized, err := imaging.Normalize(imageData, b.maxImageSize)
	if err != nil {
		result.Skip = SkipImageDecode
		result.Err = err
		return result
	}

	faces, err := b.provider.DetectFaces(ctx, normalized)
	if err != nil {
		result.Skip = SkipProvider
		result.Err = err
		return result
	}

	if len(faces.Faces) == 0 {
		result.Skip = SkipNoFace
		result.Err = errors.New("no face detected in reference image")
		return result
	}

	// Reference photos are assumed to show one canonical face; when more are
	// detected, only the first embedding is kept.
	embedding := faces.Faces[0].Embedding
	if len(embedding) == 0 || (b.expectedDim > 0 && len(embedding) != b.expectedDim) {
		result.Skip = SkipProvider
		result.Err = fmt.Errorf("embedding has dim %d, expected %d", len(embedding), b.expectedDim)
		return result
	}

	result.Person = &roster.Person{
		ID:       field("id"),
		Name:     name,
		Sex:      field("sexo"),
		Location: field("lugar_rq"),
		Offense:  field("delito"),
		Reward:   field("recompensa"),
		Encoding: embedding,
	}
	return result
}

// fetchImage downloads a reference photo with a size cap.
func (b *Builder) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create image request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("could not read image: %w", err)
	}
	if int64(len(data)) > b.maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d byte limit", b.maxImageBytes)
	}

	return data, nil
}
