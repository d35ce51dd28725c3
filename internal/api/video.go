package api

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedmux/feedmux/internal/feed"
	"github.com/feedmux/feedmux/internal/upstream"
)

const (
	videoBatchSize  = 5
	videoBatchPause = 500 * time.Millisecond
)

func (s *Server) handleTikTokVideo(c *gin.Context) {
	raw := c.Query("link")
	if raw == "" {
		missingParam(c, "link")
		return
	}

	var links []string
	for _, l := range strings.Split(raw, ",") {
		if u := upstream.NormalizeTikTokURL(l); u != "" {
			links = append(links, u)
		}
	}
	if len(links) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid links provided", "status": feed.StatusError})
		return
	}
	log.Printf("tiktok video: fetching details for %d links", len(links))

	items := fetchVideoBatch(c.Request.Context(), links, s.deps.TikTokVideos)
	videos := make([]feed.TikTokVideo, 0, len(items))
	for _, it := range items {
		videos = append(videos, feed.TikTokVideoItem(*it, ""))
	}

	c.JSON(http.StatusOK, gin.H{
		"data": videos,
		"meta": gin.H{
			"total_requested": len(links),
			"total_found":     len(videos),
		},
		"status": feed.StatusSuccess,
	})
}

func (s *Server) handleYouTubeVideo(c *gin.Context) {
	raw := c.Query("link")
	if raw == "" {
		missingParam(c, "link")
		return
	}

	links := strings.Split(raw, ",")
	var ids []string
	for _, l := range links {
		if id := upstream.ExtractYouTubeVideoID(l); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid YouTube video IDs found in links", "status": feed.StatusError})
		return
	}
	log.Printf("youtube video: fetching details for %d ids", len(ids))

	items := fetchVideoBatch(c.Request.Context(), ids, s.deps.YouTubeVideos)
	videos := make([]feed.YouTubeVideo, 0, len(items))
	for _, it := range items {
		videos = append(videos, feed.YouTubeVideoItem(*it))
	}

	c.JSON(http.StatusOK, gin.H{
		"data": videos,
		"meta": gin.H{
			"total_requested": len(links),
			"total_found":     len(videos),
		},
		"status": feed.StatusSuccess,
	})
}

// fetchVideoBatch resolves links in bounded-concurrency batches with a
// pause between batches, to stay under upstream rate limits. Failed
// lookups are logged and dropped; order within the input is preserved.
func fetchVideoBatch(ctx context.Context, links []string, fetcher VideoFetcher) []*upstream.Item {
	var out []*upstream.Item

	for start := 0; start < len(links); start += videoBatchSize {
		end := min(start+videoBatchSize, len(links))
		batch := links[start:end]
		results := make([]*upstream.Item, len(batch))

		var wg sync.WaitGroup
		for i, link := range batch {
			wg.Add(1)
			go func(i int, link string) {
				defer wg.Done()
				item, err := fetcher.FetchVideo(ctx, link)
				if err != nil {
					log.Printf("fetch video %s: %v", link, err)
					return
				}
				results[i] = item
			}(i, link)
		}
		wg.Wait()

		for _, item := range results {
			if item != nil {
				out = append(out, item)
			}
		}
		if end < len(links) {
			time.Sleep(videoBatchPause)
		}
	}
	return out
}
