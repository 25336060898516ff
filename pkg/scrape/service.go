// Package scrape orchestrates the transcript pipeline: collect episode URLs
// from the wiki index, fetch each page, extract dialogue lines, and append
// them to the CSV dataset.
//
// Processing is strictly sequential: one request in flight, one parse, one
// append at a time. A page gets a single attempt; failures are logged with
// the offending URL and the run continues with the remaining pages.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"avatar-transcripts/pkg/dataset"
	"avatar-transcripts/pkg/db"
	"avatar-transcripts/pkg/domain"
	"avatar-transcripts/pkg/httpclient"
	"avatar-transcripts/pkg/transcript"
	"avatar-transcripts/pkg/wiki"
)

// Config holds configuration for the scrape service
type Config struct {
	// IndexURL is the wiki page listing all episode transcript links
	IndexURL string

	// BookSections are the heading ids of the book sections on the index
	// page. Defaults to wiki.DefaultBookSections when empty.
	BookSections []string

	// OutputPath is the CSV dataset file. An existing file is replaced.
	OutputPath string

	// Client performs all page fetches
	Client *httpclient.HTTPClient

	// DB is the optional MongoDB sink; nil disables database writes
	DB *db.Client

	// Filters narrow the collected episode references before extraction
	Filters []wiki.Filter
}

// Summary reports what a pipeline run did
type Summary struct {
	Episodes int // episode references after filtering
	Written  int // episodes whose records reached the dataset
	Failed   int // episodes that failed fetch or extraction
	Records  int // dialogue lines written
}

// Service runs the collect -> extract -> persist pipeline
type Service struct {
	cfg Config
}

// New creates a new scrape service
func New(cfg Config) *Service {
	if cfg.Client == nil {
		cfg.Client = httpclient.NewClient(httpclient.BrowserClient)
	}
	if len(cfg.BookSections) == 0 {
		cfg.BookSections = wiki.DefaultBookSections
	}
	return &Service{cfg: cfg}
}

// Run executes the full pipeline once.
//
// The collector failing is fatal. Per-page failures are skipped with a logged
// warning; Run returns an error only when no episode could be written at all.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	refs, err := s.collectEpisodes(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Collected %d episode references from index", len(refs))

	refs, err = wiki.FilterReferences(ctx, refs, s.cfg.Filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter references: %w", err)
	}
	log.Printf("%d episode references after filtering", len(refs))

	writer, err := dataset.NewWriter(s.cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Episodes: len(refs)}

	for _, group := range wiki.GroupByURL(refs) {
		select {
		case <-ctx.Done():
			_ = writer.Close()
			return summary, ctx.Err()
		default:
		}

		written, failed := s.processPage(ctx, writer, group)
		summary.Written += written
		summary.Failed += failed
	}
	summary.Records = writer.Count()

	if err := writer.Close(); err != nil {
		return summary, err
	}

	log.Printf("Completed: %d episodes written, %d failed, %d records", summary.Written, summary.Failed, summary.Records)

	if summary.Written == 0 && summary.Failed > 0 {
		return summary, fmt.Errorf("all %d episodes failed", summary.Failed)
	}
	return summary, nil
}

// collectEpisodes fetches the index page once and parses it into ordered
// episode references
func (s *Service) collectEpisodes(ctx context.Context) ([]domain.EpisodeReference, error) {
	html, err := s.fetchHTML(ctx, s.cfg.IndexURL)
	if err != nil {
		return nil, &NetworkError{URL: s.cfg.IndexURL, Err: err}
	}

	refs, err := wiki.ParseIndex(html, s.cfg.IndexURL, s.cfg.BookSections)
	if err != nil {
		return nil, &ParseError{URL: s.cfg.IndexURL, Err: err}
	}

	return refs, nil
}

// processPage fetches one transcript page and writes the records for every
// episode it hosts. Returns how many episodes were written and how many
// failed.
func (s *Service) processPage(ctx context.Context, writer *dataset.Writer, group wiki.PageGroup) (written, failed int) {
	html, err := s.fetchHTML(ctx, group.URL)
	if err != nil {
		log.Printf("WARNING: skipping %d episode(s): %v", len(group.Episodes), &NetworkError{URL: group.URL, Err: err})
		return 0, len(group.Episodes)
	}

	for part, ref := range group.Episodes {
		if err := s.writeEpisode(ctx, writer, group, html, part, ref); err != nil {
			log.Printf("WARNING: skipping book %d episode %d: %v", ref.Book, ref.Episode, err)
			failed++
			continue
		}
		written++
	}

	return written, failed
}

// writeEpisode extracts one episode from an already-fetched page and persists
// it. part is the 0-based index of the episode within the page; pages hosting
// a single episode are extracted whole.
func (s *Service) writeEpisode(ctx context.Context, writer *dataset.Writer, group wiki.PageGroup, html string, part int, ref domain.EpisodeReference) error {
	var lines []domain.TranscriptLine
	var err error

	if len(group.Episodes) == 1 {
		lines, err = transcript.Extract(html)
	} else {
		lines, err = transcript.ExtractPart(html, part+1)
	}
	if err != nil {
		return &ParseError{URL: group.URL, Err: err}
	}

	title := ref.Title
	if strings.TrimSpace(title) == "" {
		// Index link text was empty; fall back to the page's own title.
		if extracted, err := transcript.ExtractTitle(html); err == nil {
			title = extracted
		}
	}

	records := buildRecords(ref, title, lines)
	if err := writer.AppendAll(records); err != nil {
		return fmt.Errorf("failed to append records for %s: %w", group.URL, err)
	}
	log.Printf("Book %d episode %d (%s): %d lines", ref.Book, ref.Episode, title, len(records))

	if s.cfg.DB != nil {
		doc := &domain.EpisodeTranscript{
			URL:       group.URL,
			Book:      ref.Book,
			Episode:   ref.Episode,
			Title:     title,
			Lines:     lines,
			CrawledAt: time.Now(),
		}
		if err := s.cfg.DB.SaveEpisode(ctx, doc); err != nil {
			return fmt.Errorf("failed to save episode to database: %w", err)
		}
	}

	return nil
}

// buildRecords turns extracted lines into flat dataset records with 1-based
// positions
func buildRecords(ref domain.EpisodeReference, title string, lines []domain.TranscriptLine) []domain.TranscriptRecord {
	records := make([]domain.TranscriptRecord, 0, len(lines))
	for i, line := range lines {
		records = append(records, domain.TranscriptRecord{
			Book:     ref.Book,
			Episode:  ref.Episode,
			Title:    title,
			Position: i + 1,
			Speaker:  line.Speaker,
			Line:     line.Text,
		})
	}
	return records
}

// fetchHTML fetches HTML content from a URL
func (s *Service) fetchHTML(ctx context.Context, url string) (string, error) {
	resp, err := s.cfg.Client.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if strings.TrimSpace(string(body)) == "" {
		return "", fmt.Errorf("server returned empty response (status: %d)", resp.StatusCode)
	}

	return string(body), nil
}
