package main

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/feedmux/feedmux/internal/api"
	"github.com/feedmux/feedmux/internal/config"
	"github.com/feedmux/feedmux/internal/rotator"
	"github.com/feedmux/feedmux/internal/source"
	"github.com/feedmux/feedmux/internal/upstream"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	pool := rotator.NewPool(cfg.TwitterBearerTokens, cfg.TwitterKeyQuota)
	if pool.Size() == 0 {
		log.Printf("warn: no twitter api keys configured, set TWITTER_BEARER_TOKEN_1..5")
	}

	tiktokScraper := upstream.NewTikTokScraper()
	youtubeScraper := upstream.NewYouTubeScraper()
	igScraper := upstream.NewInstagramScraper(cfg.InstagramSessionID)
	defer igScraper.Close()

	server := api.NewServer(api.Deps{
		Twitter: source.NewSelector(
			upstream.NewTwitterOfficial(pool),
			upstream.NewTwitterNitter(),
		),
		TikTok: source.NewSelector(
			upstream.NewTikTokParseBot(cfg.ParseBotAPIKey, cfg.ParseBotScraperID),
			tiktokScraper,
		),
		YouTube: source.NewSelector(
			upstream.NewYouTubeOfficial(cfg.YouTubeAPIKey),
			youtubeScraper,
		),
		Instagram:     source.NewSelector(igScraper),
		InstagramOwn:  source.NewSelector(upstream.NewInstagramGraph(cfg.InstagramAccessToken)),
		TikTokVideos:  tiktokScraper,
		YouTubeVideos: youtubeScraper,
		Pool:          pool,
	})

	r := gin.Default()
	r.Use(api.CORSMiddleware())
	server.RegisterRoutes(r)

	// Optional SPA frontend, same fallback scheme as any static host.
	if cfg.WebRoot != "" {
		r.Static("/assets", filepath.Join(cfg.WebRoot, "assets"))
		indexFile := filepath.Join(cfg.WebRoot, "index.html")
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet {
				c.Status(http.StatusNotFound)
				return
			}
			c.File(indexFile)
		})
	}

	addr := ":" + cfg.AppPort
	log.Printf("starting social scraper api at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
