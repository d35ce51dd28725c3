package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	parseBotBaseURL          = "https://api.parse.bot/scraper"
	parseBotDefaultScraperID = "dc8d000f-49f1-4d97-b357-9b0c4e5c5c07"
	parseBotTimeout          = 2 * time.Minute // the proxy runs a real scrape per call
)

// TikTokParseBot fetches user videos through the parse.bot scraping
// proxy. The proxy's item schema drifts between runs, so every field is
// read through an ordered alternate-key table.
type TikTokParseBot struct {
	apiKey    string
	scraperID string
	client    *http.Client
	limiter   *rate.Limiter
}

func NewTikTokParseBot(apiKey, scraperID string) *TikTokParseBot {
	if scraperID == "" {
		scraperID = parseBotDefaultScraperID
	}
	return &TikTokParseBot{
		apiKey:    apiKey,
		scraperID: scraperID,
		client:    &http.Client{Timeout: parseBotTimeout},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (p *TikTokParseBot) Name() string { return SourceParseBot }

type parseBotResponse struct {
	Username string           `json:"username"`
	Videos   []map[string]any `json:"videos"`
	Items    []map[string]any `json:"items"`
	Message  string           `json:"message"`
}

// Alternate key names seen in parse.bot payloads, in priority order.
var parseBotKeys = map[string][]string{
	"id":          {"id", "video_id"},
	"url":         {"url", "video_url", "link"},
	"description": {"description", "desc", "text", "caption"},
	"timestamp":   {"create_time", "createTime", "timestamp"},
	"views":       {"play_count", "playCount", "views"},
	"likes":       {"digg_count", "diggCount", "likes"},
	"comments":    {"comment_count", "commentCount", "comments"},
	"shares":      {"share_count", "shareCount", "shares"},
	"cover":       {"cover", "cover_image", "thumbnail"},
	"video_url":   {"download_url", "video_url"},
}

func (p *TikTokParseBot) Fetch(ctx context.Context, handle string, count int) (*Feed, error) {
	handle = CleanHandle(handle)
	if p.apiKey == "" {
		return nil, errors.New("no parse.bot API key configured")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	log.Printf("parsebot: fetching %d videos for @%s", count, handle)

	payload, err := json.Marshal(map[string]string{
		"count":    strconv.Itoa(count),
		"username": handle,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/get_user_videos", parseBotBaseURL, p.scraperID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse.bot request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	var decoded parseBotResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("parse.bot response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Message != "" {
			return nil, fmt.Errorf("parse.bot: %s", decoded.Message)
		}
		return nil, &StatusError{Code: resp.StatusCode}
	}

	raw := decoded.Videos
	if len(raw) == 0 {
		raw = decoded.Items
	}
	log.Printf("parsebot: retrieved %d videos", len(raw))

	items := make([]Item, 0, len(raw))
	for _, v := range raw {
		items = append(items, parseBotItem(v, handle))
	}

	feed := &Feed{Items: items, Source: SourceParseBot}
	if decoded.Username != "" {
		feed.Author = &Author{Username: decoded.Username}
	}
	return feed, nil
}

func parseBotItem(v map[string]any, handle string) Item {
	it := Item{
		ID:        pickString(v, parseBotKeys["id"]),
		URL:       pickString(v, parseBotKeys["url"]),
		Text:      pickString(v, parseBotKeys["description"]),
		Timestamp: pickInt(v, parseBotKeys["timestamp"]),
		Views:     pickInt(v, parseBotKeys["views"]),
		Likes:     pickInt(v, parseBotKeys["likes"]),
		Comments:  pickInt(v, parseBotKeys["comments"]),
		Shares:    pickInt(v, parseBotKeys["shares"]),
		Cover:     pickString(v, parseBotKeys["cover"]),
		VideoURL:  pickString(v, parseBotKeys["video_url"]),
		IsVideo:   true,
	}
	if it.URL == "" && it.ID != "" {
		it.URL = "https://www.tiktok.com/@" + handle + "/video/" + it.ID
	}

	if a := pickMap(v, "author"); a != nil {
		it.Author = Author{
			ID:       pickString(a, []string{"id"}),
			Username: pickString(a, []string{"unique_id", "username"}),
			Nickname: pickString(a, []string{"nickname"}),
			Avatar:   pickString(a, []string{"avatar"}),
		}
	} else {
		it.Author = Author{ID: pickString(v, []string{"author_id"})}
	}
	if it.Author.Username == "" {
		it.Author.Username = handle
	}

	if m := pickMap(v, "music"); m != nil {
		it.Music = Music{
			ID:     pickString(m, []string{"id"}),
			Name:   pickString(m, []string{"title", "name"}),
			Author: pickString(m, []string{"author"}),
		}
	}

	if tags, ok := v["hashtags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				it.Hashtags = append(it.Hashtags, s)
			}
		}
	}
	return it
}
