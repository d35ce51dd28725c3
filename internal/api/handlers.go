package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feedmux/feedmux/internal/feed"
)

func (s *Server) handleTwitter(c *gin.Context) {
	handle, ok := requireHandle(c)
	if !ok {
		return
	}
	page, perPage, count := pageParams(c, twitterDefaultCount, twitterMaxCount)
	log.Printf("twitter: request for @%s (page %d)", handle, page)

	fd, _, err := s.deps.Twitter.Resolve(c.Request.Context(), handle, count)
	if err != nil {
		allFailed(c, err)
		return
	}

	resp := feed.Tweets(fd, handle, page, perPage)
	if resp.Status == feed.StatusSuccess {
		c.Header("Cache-Control", "s-maxage=300")
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTikTok(c *gin.Context) {
	handle, ok := requireHandle(c)
	if !ok {
		return
	}
	page, perPage, count := pageParams(c, tiktokDefaultCount, tiktokMaxCount)
	log.Printf("tiktok: request for @%s (page %d)", handle, page)

	fd, _, err := s.deps.TikTok.Resolve(c.Request.Context(), handle, count)
	if err != nil {
		allFailed(c, err)
		return
	}

	resp := feed.TikTokVideos(fd, handle, page, perPage)
	if resp.Status == feed.StatusSuccess {
		c.Header("Cache-Control", "s-maxage=120")
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleYouTube(c *gin.Context) {
	handle, ok := requireHandle(c)
	if !ok {
		return
	}
	page, perPage, count := pageParams(c, youtubeDefaultCount, youtubeMaxCount)
	log.Printf("youtube: request for @%s (page %d)", handle, page)

	fd, _, err := s.deps.YouTube.Resolve(c.Request.Context(), handle, count)
	if err != nil {
		allFailed(c, err)
		return
	}

	resp := feed.YouTubeVideos(fd, handle, page, perPage)
	if resp.Status == feed.StatusSuccess {
		c.Header("Cache-Control", "s-maxage=600")
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleInstagram(c *gin.Context) {
	handle, ok := requireHandle(c)
	if !ok {
		return
	}
	page, perPage, count := pageParams(c, igDefaultCount, igMaxCount)
	log.Printf("instagram: request for @%s (page %d, own=%s)", handle, page, c.Query("own"))

	// The Graph token only sees the owner's media, so own-account
	// requests take the official path with no scrape fallback.
	selector := s.deps.Instagram
	if c.Query("own") == "true" {
		selector = s.deps.InstagramOwn
	}

	fd, _, err := selector.Resolve(c.Request.Context(), handle, count)
	if err != nil {
		allFailed(c, err)
		return
	}

	resp := feed.InstagramPosts(fd, handle, page, perPage)
	if resp.Status == feed.StatusSuccess {
		c.Header("Cache-Control", "s-maxage=120")
	}
	c.JSON(http.StatusOK, resp)
}
