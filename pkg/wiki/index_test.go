package wiki

import (
	"errors"
	"testing"
)

const indexPage = `<html><body>
<h2><span id="Book_One:_Water">Book One: Water</span></h2>
<table>
	<tr><th>No.</th><td>Episode</td></tr>
	<tr><th>1</th><td><a href="/wiki/The_Boy_in_the_Iceberg">The Boy in the Iceberg</a></td></tr>
	<tr><th>2</th><td><a href="/wiki/The_Avatar_Returns">The Avatar Returns</a></td></tr>
</table>
<h2><span id="Book_Two:_Earth">Book Two: Earth</span></h2>
<table>
	<tr><th>1</th><td><a href="/wiki/The_Avatar_State">The Avatar State</a></td></tr>
</table>
<h2><span id="Book_Three:_Fire">Book Three: Fire</span></h2>
<table>
	<tr><th>20</th><td><a href="/wiki/Sozin%27s_Comet">Sozin's Comet, Part 1</a></td></tr>
	<tr><th>21</th><td><a href="/wiki/Sozin%27s_Comet">Sozin's Comet, Part 2</a></td></tr>
</table>
</body></html>`

const baseURL = "https://transcripts.fandom.com/wiki/Avatar:_The_Last_Airbender"

func TestParseIndex(t *testing.T) {
	refs, err := ParseIndex(indexPage, baseURL, nil)
	if err != nil {
		t.Fatalf("Failed to parse index: %v", err)
	}

	if len(refs) != 5 {
		t.Fatalf("Expected 5 episode references, got %d", len(refs))
	}

	first := refs[0]
	if first.URL != "https://transcripts.fandom.com/wiki/The_Boy_in_the_Iceberg" {
		t.Errorf("Expected absolute URL, got '%s'", first.URL)
	}
	if first.Book != 1 || first.Episode != 1 {
		t.Errorf("Expected book 1 episode 1, got book %d episode %d", first.Book, first.Episode)
	}
	if first.Title != "The Boy in the Iceberg" {
		t.Errorf("Unexpected title '%s'", first.Title)
	}

	// Books are numbered by section order.
	if refs[2].Book != 2 || refs[2].Episode != 1 {
		t.Errorf("Expected book 2 episode 1, got book %d episode %d", refs[2].Book, refs[2].Episode)
	}

	// Multi-part finale shares one URL across two references.
	if refs[3].URL != refs[4].URL {
		t.Errorf("Expected shared URL for multi-part episodes, got '%s' and '%s'", refs[3].URL, refs[4].URL)
	}
	if refs[3].Episode != 20 || refs[4].Episode != 21 {
		t.Errorf("Expected episodes 20 and 21, got %d and %d", refs[3].Episode, refs[4].Episode)
	}
}

func TestParseIndex_TwoLinkIndexDocumentOrder(t *testing.T) {
	html := `<h2><span id="Season_One">Season One</span></h2>
<table>
	<tr><th>1</th><td><a href="/wiki/First">First</a></td></tr>
	<tr><th>2</th><td><a href="/wiki/Second">Second</a></td></tr>
</table>`

	refs, err := ParseIndex(html, "https://example.com/wiki/Index", []string{"Season_One"})
	if err != nil {
		t.Fatalf("Failed to parse index: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("Expected exactly 2 references, got %d", len(refs))
	}
	if refs[0].Title != "First" || refs[1].Title != "Second" {
		t.Errorf("Expected document order First, Second; got '%s', '%s'", refs[0].Title, refs[1].Title)
	}
}

func TestParseIndex_MissingBookSection(t *testing.T) {
	html := `<h2><span id="Book_One:_Water">Book One</span></h2><table><tr><th>1</th><td><a href="/wiki/Ep">Ep</a></td></tr></table>`

	_, err := ParseIndex(html, baseURL, nil)
	if !errors.Is(err, ErrBookSectionNotFound) {
		t.Errorf("Expected ErrBookSectionNotFound, got %v", err)
	}
}

func TestParseIndex_NoLinks(t *testing.T) {
	html := `<h2><span id="Season_One">Season One</span></h2><table><tr><th>No.</th><td>Episode</td></tr></table>`

	_, err := ParseIndex(html, baseURL, []string{"Season_One"})
	if !errors.Is(err, ErrNoEpisodeLinks) {
		t.Errorf("Expected ErrNoEpisodeLinks, got %v", err)
	}
}

func TestGroupByURL(t *testing.T) {
	refs, err := ParseIndex(indexPage, baseURL, nil)
	if err != nil {
		t.Fatalf("Failed to parse index: %v", err)
	}

	groups := GroupByURL(refs)
	if len(groups) != 4 {
		t.Fatalf("Expected 4 page groups, got %d", len(groups))
	}

	last := groups[3]
	if len(last.Episodes) != 2 {
		t.Fatalf("Expected 2 episodes in the multi-part group, got %d", len(last.Episodes))
	}
	if last.Episodes[0].Episode != 20 || last.Episodes[1].Episode != 21 {
		t.Errorf("Expected episode order 20, 21; got %d, %d", last.Episodes[0].Episode, last.Episodes[1].Episode)
	}

	// Groups preserve first-seen page order.
	if groups[0].URL != refs[0].URL {
		t.Errorf("Expected first group URL '%s', got '%s'", refs[0].URL, groups[0].URL)
	}
}
