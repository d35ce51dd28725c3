package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/feedmux/feedmux/internal/config"
	"github.com/feedmux/feedmux/internal/feed"
	"github.com/feedmux/feedmux/internal/rotator"
	"github.com/feedmux/feedmux/internal/source"
	"github.com/feedmux/feedmux/internal/upstream"
)

// One-shot command line entry point: resolve a handle on one platform
// and print the normalized first page. Handy for poking at sources
// without running the server.
func main() {
	platform := flag.String("platform", "twitter", "twitter | tiktok | youtube | instagram")
	handle := flag.String("handle", "", "user handle (required)")
	count := flag.Int("count", 10, "items to fetch upstream")
	perPage := flag.Int("per-page", 10, "items per page")
	flag.Parse()

	if *handle == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	pool := rotator.NewPool(cfg.TwitterBearerTokens, cfg.TwitterKeyQuota)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	cleaned := upstream.CleanHandle(*handle)
	var out any

	switch *platform {
	case "twitter":
		sel := source.NewSelector(upstream.NewTwitterOfficial(pool), upstream.NewTwitterNitter())
		fd, name, err := sel.Resolve(ctx, cleaned, *count)
		if err != nil {
			log.Fatalf("resolve twitter: %v", err)
		}
		log.Printf("resolved via %s", name)
		out = feed.Tweets(fd, cleaned, 1, *perPage)
	case "tiktok":
		sel := source.NewSelector(
			upstream.NewTikTokParseBot(cfg.ParseBotAPIKey, cfg.ParseBotScraperID),
			upstream.NewTikTokScraper(),
		)
		fd, name, err := sel.Resolve(ctx, cleaned, *count)
		if err != nil {
			log.Fatalf("resolve tiktok: %v", err)
		}
		log.Printf("resolved via %s", name)
		out = feed.TikTokVideos(fd, cleaned, 1, *perPage)
	case "youtube":
		sel := source.NewSelector(upstream.NewYouTubeOfficial(cfg.YouTubeAPIKey), upstream.NewYouTubeScraper())
		fd, name, err := sel.Resolve(ctx, cleaned, *count)
		if err != nil {
			log.Fatalf("resolve youtube: %v", err)
		}
		log.Printf("resolved via %s", name)
		out = feed.YouTubeVideos(fd, cleaned, 1, *perPage)
	case "instagram":
		scraper := upstream.NewInstagramScraper(cfg.InstagramSessionID)
		defer scraper.Close()
		sel := source.NewSelector(scraper)
		fd, name, err := sel.Resolve(ctx, cleaned, *count)
		if err != nil {
			log.Fatalf("resolve instagram: %v", err)
		}
		log.Printf("resolved via %s", name)
		out = feed.InstagramPosts(fd, cleaned, 1, *perPage)
	default:
		log.Fatalf("unknown platform %q", *platform)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode output: %v", err)
	}
}
