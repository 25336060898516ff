package main

import (
	"context"
	"flag"
	"log"
	"net/url"
	"time"

	"avatar-transcripts/pkg/db"
	"avatar-transcripts/pkg/httpclient"
	"avatar-transcripts/pkg/scrape"
	"avatar-transcripts/pkg/wiki"
)

func main() {
	var (
		indexURL = flag.String("index", "https://transcripts.fandom.com/wiki/Avatar:_The_Last_Airbender", "Wiki index page listing all episode transcript links")
		output   = flag.String("out", "transcripts.csv", "Output CSV dataset file (replaced on each run)")
		timeout  = flag.Duration("timeout", httpclient.DefaultTimeout, "Per-request HTTP timeout")

		recent  = flag.Bool("recent", false, "Only scrape episodes whose pages appear in the RecentChanges feed")
		feedURL = flag.String("feed", "https://transcripts.fandom.com/wiki/Special:RecentChanges?feedformat=rss", "RecentChanges RSS feed URL (used with -recent)")

		mongoURI     = flag.String("mongo-uri", "", "Optional MongoDB connection string; empty disables the database sink")
		dbName       = flag.String("db", "transcripts", "MongoDB database name")
		collection   = flag.String("collection", "episodes", "MongoDB collection for episode transcripts")
		skipExisting = flag.Bool("skip-existing", false, "Skip pages already present in the database sink (requires -mongo-uri)")
	)
	flag.Parse()

	ctx := context.Background()

	parsedIndex, err := url.Parse(*indexURL)
	if err != nil {
		log.Fatalf("Invalid index URL %q: %v", *indexURL, err)
	}

	filters := []wiki.Filter{wiki.NewHostFilter(parsedIndex.Host)}

	var dbClient *db.Client
	if *mongoURI != "" {
		dbClient = db.NewClient(*mongoURI, *dbName, *collection)
		if err := dbClient.Connect(ctx); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbClient.Close(ctx)

		if *skipExisting {
			existing, err := dbClient.GetExistingEpisodeURLs(ctx)
			if err != nil {
				log.Fatalf("Failed to load existing episode URLs: %v", err)
			}
			log.Printf("Skipping %d already-scraped pages", len(existing))
			filters = append(filters, wiki.NewAlreadyFetchedFilter(existing))
		}
	} else if *skipExisting {
		log.Fatalf("-skip-existing requires -mongo-uri")
	}

	if *recent {
		changed, err := wiki.NewFeedCollector().RecentlyChanged(ctx, *feedURL)
		if err != nil {
			log.Fatalf("Failed to read RecentChanges feed: %v", err)
		}
		log.Printf("RecentChanges feed lists %d pages", len(changed))
		filters = append(filters, wiki.NewRecentlyChangedFilter(changed))
	}

	service := scrape.New(scrape.Config{
		IndexURL:   *indexURL,
		OutputPath: *output,
		Client:     httpclient.NewClientWithTimeout(httpclient.BrowserClient, *timeout),
		DB:         dbClient,
		Filters:    filters,
	})

	start := time.Now()
	log.Printf("Scraping transcripts from %s into %s", *indexURL, *output)
	summary, err := service.Run(ctx)
	if err != nil {
		log.Fatalf("Scrape failed: %v", err)
	}
	log.Printf("Done. %d episodes, %d records, %d failures. Duration: %s",
		summary.Written, summary.Records, summary.Failed, time.Since(start))
}
