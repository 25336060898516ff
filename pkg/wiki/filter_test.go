package wiki

import (
	"context"
	"testing"

	"avatar-transcripts/pkg/domain"
)

func ref(url string) domain.EpisodeReference {
	return domain.EpisodeReference{URL: url, Book: 1, Episode: 1, Title: "Ep"}
}

func TestHostFilter(t *testing.T) {
	filter := NewHostFilter("transcripts.fandom.com")
	ctx := context.Background()

	keep, err := filter.ShouldKeep(ctx, ref("https://transcripts.fandom.com/wiki/Ep"))
	if err != nil || !keep {
		t.Errorf("Expected to keep wiki URL, got keep=%v err=%v", keep, err)
	}

	keep, err = filter.ShouldKeep(ctx, ref("https://other.example.com/wiki/Ep"))
	if err != nil || keep {
		t.Errorf("Expected to drop foreign URL, got keep=%v err=%v", keep, err)
	}
}

func TestAlreadyFetchedFilter(t *testing.T) {
	filter := NewAlreadyFetchedFilter(map[string]bool{
		"https://transcripts.fandom.com/wiki/Old": true,
	})
	ctx := context.Background()

	keep, _ := filter.ShouldKeep(ctx, ref("https://transcripts.fandom.com/wiki/Old"))
	if keep {
		t.Error("Expected to drop already-fetched URL")
	}

	keep, _ = filter.ShouldKeep(ctx, ref("https://transcripts.fandom.com/wiki/New"))
	if !keep {
		t.Error("Expected to keep new URL")
	}
}

func TestFilterReferences(t *testing.T) {
	refs := []domain.EpisodeReference{
		ref("https://transcripts.fandom.com/wiki/A"),
		ref("https://other.example.com/wiki/B"),
		ref("https://transcripts.fandom.com/wiki/C"),
	}

	changed := map[string]bool{
		"https://transcripts.fandom.com/wiki/C": true,
		"https://other.example.com/wiki/B":      true,
	}

	filtered, err := FilterReferences(context.Background(), refs,
		NewHostFilter("transcripts.fandom.com"),
		NewRecentlyChangedFilter(changed),
	)
	if err != nil {
		t.Fatalf("Failed to filter references: %v", err)
	}

	if len(filtered) != 1 {
		t.Fatalf("Expected 1 reference after filtering, got %d", len(filtered))
	}
	if filtered[0].URL != "https://transcripts.fandom.com/wiki/C" {
		t.Errorf("Unexpected reference kept: %s", filtered[0].URL)
	}
}
