package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"avatar-transcripts/pkg/domain"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

var (
	ErrTranscriptNotFound = errors.New("transcript container not found in page")
	ErrNoDialogueLines    = errors.New("no dialogue lines found in transcript")
	ErrPartNotFound       = errors.New("part heading not found in page")
)

// stageDirectionPattern matches one bracketed stage direction, e.g.
// "[Cut to the deck of a small ship.] "
var stageDirectionPattern = regexp.MustCompile(`\[[^\]]*\] ?`)

// Extract parses a transcript page and returns its dialogue lines in document
// order. The transcript body lives in the #WikiaArticle container; each
// dialogue row names the speaker in a th cell with the line text in the
// sibling cell.
func Extract(html string) ([]domain.TranscriptLine, error) {
	article, err := findArticle(html)
	if err != nil {
		return nil, err
	}
	return extractLines(article)
}

// ExtractPart parses one part of a multi-part transcript page. Parts are
// separated by "Part N" span headings; the part body is the heading's next
// element sibling. part is 1-based.
func ExtractPart(html string, part int) ([]domain.TranscriptLine, error) {
	article, err := findArticle(html)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("Part %d", part)
	heading := article.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.HasPrefix(strings.TrimSpace(s.Text()), prefix)
	}).First()
	if heading.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, prefix)
	}

	body := heading.Parent().Next()
	if body.Length() == 0 {
		return nil, fmt.Errorf("%w: no content after heading %s", ErrPartNotFound, prefix)
	}

	return extractLines(body)
}

// findArticle parses the HTML and locates the transcript container
func findArticle(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	article := doc.Find("#WikiaArticle")
	if article.Length() == 0 {
		return nil, ErrTranscriptNotFound
	}

	return article, nil
}

// extractLines walks the dialogue rows within a selection. Rows whose line
// text is empty after stripping stage directions are dropped.
func extractLines(sel *goquery.Selection) ([]domain.TranscriptLine, error) {
	var lines []domain.TranscriptLine

	sel.Find("th").Each(func(_ int, speakerCell *goquery.Selection) {
		lineCell := speakerCell.Next()
		if lineCell.Length() == 0 {
			return
		}

		speaker := strings.TrimSpace(speakerCell.Text())
		text := StripStageDirections(lineCell.Text())
		if speaker == "" || text == "" {
			return
		}

		lines = append(lines, domain.TranscriptLine{
			Speaker: speaker,
			Text:    text,
		})
	})

	if len(lines) == 0 {
		return nil, ErrNoDialogueLines
	}

	return lines, nil
}

// StripStageDirections removes bracketed stage directions from a line of
// dialogue. The pattern is applied until the text stops changing so that
// brackets uncovered by an earlier pass are removed too.
func StripStageDirections(text string) string {
	for {
		stripped := stageDirectionPattern.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}
	return strings.TrimSpace(text)
}

// ExtractTitle extracts the page title from HTML content with fallback
// mechanisms. Used when the index link text for an episode is empty.
func ExtractTitle(htmlContent string) (string, error) {
	// Try readability first
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err == nil {
		title := strings.TrimSpace(article.Title)
		if title != "" {
			return title, nil
		}
	}

	// Fallback: parse HTML directly with goquery
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Try <title> tag
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}

	// Try <h1> tag (often the main heading)
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}

	// Try meta property="og:title"
	if title, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}

	return "", fmt.Errorf("title not found in HTML")
}
