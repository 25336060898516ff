// Package dataset persists transcript records as a flat CSV file, the
// artifact consumed by the analysis notebook.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"avatar-transcripts/pkg/domain"
)

// Header is the CSV header row. Column order matches TranscriptRecord.
var Header = []string{"book", "episode", "title", "position", "speaker", "line"}

// Writer appends transcript records to a CSV dataset file.
//
// Creating a writer truncates any existing file: re-running the pipeline
// replaces the dataset wholesale rather than appending duplicates.
type Writer struct {
	file  *os.File
	csv   *csv.Writer
	count int
}

// NewWriter creates the dataset file and writes the header row
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset file: %w", err)
	}

	w := &Writer{
		file: file,
		csv:  csv.NewWriter(file),
	}

	if err := w.csv.Write(Header); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write dataset header: %w", err)
	}

	return w, nil
}

// Append writes one record to the dataset
func (w *Writer) Append(rec domain.TranscriptRecord) error {
	row := []string{
		strconv.Itoa(rec.Book),
		strconv.Itoa(rec.Episode),
		rec.Title,
		strconv.Itoa(rec.Position),
		rec.Speaker,
		rec.Line,
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.count++
	return nil
}

// AppendAll writes a batch of records to the dataset
func (w *Writer) AppendAll(recs []domain.TranscriptRecord) error {
	for _, rec := range recs {
		if err := w.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records written so far
func (w *Writer) Count() int {
	return w.count
}

// Close flushes buffered rows and closes the dataset file
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	return w.file.Close()
}

// Read loads a dataset file back into transcript records. Used by the
// replicator and by round-trip checks; the notebook reads the same file.
func Read(path string) ([]domain.TranscriptRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset is empty (missing header)")
	}

	// Skip the header row
	records := make([]domain.TranscriptRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to parse dataset row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// parseRow converts one CSV row into a transcript record
func parseRow(row []string) (domain.TranscriptRecord, error) {
	if len(row) != len(Header) {
		return domain.TranscriptRecord{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(row))
	}

	book, err := strconv.Atoi(row[0])
	if err != nil {
		return domain.TranscriptRecord{}, fmt.Errorf("invalid book number %q: %w", row[0], err)
	}
	episode, err := strconv.Atoi(row[1])
	if err != nil {
		return domain.TranscriptRecord{}, fmt.Errorf("invalid episode number %q: %w", row[1], err)
	}
	position, err := strconv.Atoi(row[3])
	if err != nil {
		return domain.TranscriptRecord{}, fmt.Errorf("invalid position %q: %w", row[3], err)
	}

	return domain.TranscriptRecord{
		Book:     book,
		Episode:  episode,
		Title:    row[2],
		Position: position,
		Speaker:  row[4],
		Line:     row[5],
	}, nil
}
