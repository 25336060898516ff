package domain

import "time"

// EpisodeReference identifies one episode's transcript page on the wiki.
// Episodes that aired in several parts share a single page, so multiple
// references may carry the same URL.
type EpisodeReference struct {
	URL     string // absolute transcript page URL
	Book    int    // book (season) number, 1-based
	Episode int    // episode number within the book, 1-based
	Title   string // episode title from the index link text
}

// TranscriptLine is one spoken line with stage directions removed
type TranscriptLine struct {
	Speaker string `bson:"speaker"`
	Text    string `bson:"text"`
}

// TranscriptRecord is the flat unit of dialogue written to the dataset
type TranscriptRecord struct {
	Book     int
	Episode  int
	Title    string
	Position int // line order within the episode, 1-based
	Speaker  string
	Line     string
}

// EpisodeTranscript represents one episode's transcript stored in the database
type EpisodeTranscript struct {
	URL       string           `bson:"url"`
	Book      int              `bson:"book"`
	Episode   int              `bson:"episode"`
	Title     string           `bson:"title"`
	Lines     []TranscriptLine `bson:"lines"`
	CrawledAt time.Time        `bson:"crawled_at"`
}
