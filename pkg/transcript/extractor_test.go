package transcript

import (
	"errors"
	"testing"
)

const singleEpisodePage = `<html><body>
<div id="WikiaArticle">
	<table>
		<tr><th>Aang</th><td>I'm the Avatar. [Grins.] You gotta deal with it!</td></tr>
		<tr><th>Katara</th><td>[Gasps.] Aang!</td></tr>
		<tr><th>Aang</th><td>See you later!</td></tr>
	</table>
</div>
</body></html>`

func TestExtract_DialogueLines(t *testing.T) {
	lines, err := Extract(singleEpisodePage)
	if err != nil {
		t.Fatalf("Failed to extract transcript: %v", err)
	}

	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}

	if lines[0].Speaker != "Aang" {
		t.Errorf("Expected first speaker 'Aang', got '%s'", lines[0].Speaker)
	}
	if lines[0].Text != "I'm the Avatar. You gotta deal with it!" {
		t.Errorf("Unexpected first line text: '%s'", lines[0].Text)
	}

	if lines[1].Speaker != "Katara" {
		t.Errorf("Expected second speaker 'Katara', got '%s'", lines[1].Speaker)
	}
	if lines[1].Text != "Aang!" {
		t.Errorf("Expected stage direction stripped, got '%s'", lines[1].Text)
	}

	if lines[2].Speaker != "Aang" {
		t.Errorf("Expected third speaker 'Aang', got '%s'", lines[2].Speaker)
	}
}

func TestExtract_DropsStageDirectionOnlyLines(t *testing.T) {
	html := `<div id="WikiaArticle"><table>
		<tr><th>Sokka</th><td>[Points at the sky.]</td></tr>
		<tr><th>Sokka</th><td>Look out!</td></tr>
	</table></div>`

	lines, err := Extract(html)
	if err != nil {
		t.Fatalf("Failed to extract transcript: %v", err)
	}

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Text != "Look out!" {
		t.Errorf("Unexpected line text: '%s'", lines[0].Text)
	}
}

func TestExtract_MissingContainer(t *testing.T) {
	_, err := Extract(`<html><body><p>Page moved.</p></body></html>`)
	if !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("Expected ErrTranscriptNotFound, got %v", err)
	}
}

func TestExtract_NoDialogueLines(t *testing.T) {
	_, err := Extract(`<div id="WikiaArticle"><p>Transcript coming soon.</p></div>`)
	if !errors.Is(err, ErrNoDialogueLines) {
		t.Errorf("Expected ErrNoDialogueLines, got %v", err)
	}
}

const multiPartPage = `<html><body>
<div id="WikiaArticle">
	<h2><span>Part 1: The Awakening</span></h2>
	<table>
		<tr><th>Zuko</th><td>I've changed.</td></tr>
	</table>
	<h2><span>Part 2: The Crossroads</span></h2>
	<table>
		<tr><th>Iroh</th><td>It is time for you to choose.</td></tr>
		<tr><th>Zuko</th><td>I know my own destiny.</td></tr>
	</table>
</div>
</body></html>`

func TestExtractPart(t *testing.T) {
	part1, err := ExtractPart(multiPartPage, 1)
	if err != nil {
		t.Fatalf("Failed to extract part 1: %v", err)
	}
	if len(part1) != 1 {
		t.Fatalf("Expected 1 line in part 1, got %d", len(part1))
	}
	if part1[0].Speaker != "Zuko" {
		t.Errorf("Expected speaker 'Zuko', got '%s'", part1[0].Speaker)
	}

	part2, err := ExtractPart(multiPartPage, 2)
	if err != nil {
		t.Fatalf("Failed to extract part 2: %v", err)
	}
	if len(part2) != 2 {
		t.Fatalf("Expected 2 lines in part 2, got %d", len(part2))
	}
	if part2[0].Speaker != "Iroh" {
		t.Errorf("Expected speaker 'Iroh', got '%s'", part2[0].Speaker)
	}
}

func TestExtractPart_MissingPart(t *testing.T) {
	_, err := ExtractPart(multiPartPage, 3)
	if !errors.Is(err, ErrPartNotFound) {
		t.Errorf("Expected ErrPartNotFound, got %v", err)
	}
}

func TestStripStageDirections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no direction", "Hello there.", "Hello there."},
		{"leading direction", "[Waves.] Hello there.", "Hello there."},
		{"inline direction", "Hello [pauses] there.", "Hello there."},
		{"consecutive directions", "[Grins.] [Waves.] Watch out!", "Watch out!"},
		{"direction only", "[Flies away.]", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripStageDirections(tt.input)
			if got != tt.want {
				t.Errorf("StripStageDirections(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractTitle_Fallbacks(t *testing.T) {
	html := `<html><head><title>The Boy in the Iceberg | Transcripts Wiki</title></head><body></body></html>`

	title, err := ExtractTitle(html)
	if err != nil {
		t.Fatalf("Failed to extract title: %v", err)
	}
	if title == "" {
		t.Error("Expected non-empty title")
	}
}
