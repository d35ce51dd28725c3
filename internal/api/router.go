package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedmux/feedmux/internal/feed"
	"github.com/feedmux/feedmux/internal/rotator"
	"github.com/feedmux/feedmux/internal/source"
	"github.com/feedmux/feedmux/internal/upstream"
)

const serviceName = "social-scraper"

// Per-platform request caps and defaults.
const (
	maxPerPage = 100

	twitterDefaultCount = 10
	twitterMaxCount     = 100
	tiktokDefaultCount  = 50
	tiktokMaxCount      = 100
	youtubeDefaultCount = 30
	youtubeMaxCount     = 50
	igDefaultCount      = 30
	igMaxCount          = 100
)

// VideoFetcher resolves one video link/ID to its details.
type VideoFetcher interface {
	FetchVideo(ctx context.Context, link string) (*upstream.Item, error)
}

// Deps wires the per-platform fallback chains into the server. Tests
// inject stub sources here.
type Deps struct {
	Twitter      *source.Selector
	TikTok       *source.Selector
	YouTube      *source.Selector
	Instagram    *source.Selector // public profiles (scraping path)
	InstagramOwn *source.Selector // own-account (Graph API only)

	TikTokVideos  VideoFetcher
	YouTubeVideos VideoFetcher

	Pool *rotator.Pool
}

type Server struct {
	deps Deps
}

func NewServer(deps Deps) *Server {
	return &Server{deps: deps}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed", "status": feed.StatusError})
	})

	api := r.Group("/api")
	{
		api.GET("/twitter", s.handleTwitter)
		api.GET("/tiktok", s.handleTikTok)
		api.GET("/tiktok/video", s.handleTikTokVideo)
		api.GET("/youtube", s.handleYouTube)
		api.GET("/youtube/video", s.handleYouTubeVideo)
		api.GET("/instagram", s.handleInstagram)
		api.GET("/stats", s.handleStats)
		api.GET("/health", s.handleHealth)
	}
}

// CORSMiddleware stamps every response for cross-origin use and
// answers preflight requests directly.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	keys := s.deps.Pool.Snapshot()
	var totalRemaining, totalMax int
	for _, k := range keys {
		totalRemaining += k.Remaining
		totalMax += k.Max
	}

	c.JSON(http.StatusOK, gin.H{
		"twitter": gin.H{
			"keys":           keys,
			"totalRemaining": totalRemaining,
			"totalMax":       totalMax,
		},
		"youtube": gin.H{
			"method": "official_api + page_scraping",
			"quota":  "10k units/day with key, unlimited scraping",
		},
		"instagram": gin.H{
			"method": "graph_api + scraping",
			"note":   "Graph API for own account, scraping for public profiles",
		},
		"tiktok": gin.H{
			"method": "parse.bot + page_scraping",
			"note":   "parse.bot first, page scrape fallback",
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// missingParam writes the 400 response for an absent required parameter.
func missingParam(c *gin.Context, name string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "Missing required parameter: " + name,
		"status": feed.StatusError,
	})
}

// allFailed writes the 500 response for an exhausted fallback chain.
func allFailed(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  err.Error(),
		"status": feed.StatusError,
		"source": "all_failed",
	})
}

// intQuery parses a positive integer query value, falling back to def
// on absence or garbage.
func intQuery(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func capped(n, max int) int {
	if n > max {
		return max
	}
	return n
}

// pageParams reads the shared pagination/count parameters.
func pageParams(c *gin.Context, defCount, maxCount int) (page, perPage, count int) {
	page = intQuery(c, "page", 1)
	perPage = capped(intQuery(c, "per-page", 10), maxPerPage)
	count = capped(intQuery(c, "count", defCount), maxCount)
	return page, perPage, count
}

// requireHandle validates and cleans the username parameter, writing
// the 400 itself when absent.
func requireHandle(c *gin.Context) (string, bool) {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		missingParam(c, "username")
		return "", false
	}
	return upstream.CleanHandle(username), true
}
