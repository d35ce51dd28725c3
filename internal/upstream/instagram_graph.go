package upstream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	instagramAPIBase  = "https://graph.instagram.com"
	instagramTimeout  = 30 * time.Second
	instagramMaxMedia = 100
)

// InstagramGraph fetches media through the Graph API. The long-lived
// token can only ever see the token owner's account, so this source
// serves own-account requests exclusively.
type InstagramGraph struct {
	accessToken string
	client      *http.Client
}

func NewInstagramGraph(accessToken string) *InstagramGraph {
	return &InstagramGraph{accessToken: accessToken, client: &http.Client{Timeout: instagramTimeout}}
}

func (g *InstagramGraph) Name() string { return SourceGraphAPI }

type igMediaResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Caption       string `json:"caption"`
		MediaType     string `json:"media_type"`
		MediaURL      string `json:"media_url"`
		ThumbnailURL  string `json:"thumbnail_url"`
		Permalink     string `json:"permalink"`
		Timestamp     string `json:"timestamp"`
		LikeCount     int64  `json:"like_count"`
		CommentsCount int64  `json:"comments_count"`
		Username      string `json:"username"`
	} `json:"data"`
}

type igProfileResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	AccountType string `json:"account_type"`
	MediaCount  int64  `json:"media_count"`
}

func (g *InstagramGraph) Fetch(ctx context.Context, handle string, count int) (*Feed, error) {
	handle = CleanHandle(handle)
	if g.accessToken == "" {
		return nil, errors.New("no Instagram access token configured")
	}
	log.Printf("instagram graph: fetching media for @%s", handle)

	params := url.Values{}
	params.Set("access_token", g.accessToken)
	params.Set("fields", "id,caption,media_type,media_url,thumbnail_url,permalink,timestamp,like_count,comments_count,username")
	params.Set("limit", strconv.Itoa(min(count, instagramMaxMedia)))

	var media igMediaResponse
	if err := getJSON(ctx, g.client, instagramAPIBase+"/me/media?"+params.Encode(), nil, &media); err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}

	profileParams := url.Values{}
	profileParams.Set("access_token", g.accessToken)
	profileParams.Set("fields", "id,username,account_type,media_count")

	var profile igProfileResponse
	if err := getJSON(ctx, g.client, instagramAPIBase+"/me?"+profileParams.Encode(), nil, &profile); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	items := make([]Item, 0, len(media.Data))
	for _, m := range media.Data {
		cover := m.ThumbnailURL
		if cover == "" {
			cover = m.MediaURL
		}
		it := Item{
			ID:       m.ID,
			URL:      m.Permalink,
			Text:     m.Caption,
			Likes:    m.LikeCount,
			Comments: m.CommentsCount,
			Cover:    cover,
			VideoURL: m.MediaURL,
			IsVideo:  m.MediaType == "VIDEO",
			Author:   Author{Username: m.Username},
		}
		if ts, err := time.Parse(time.RFC3339, m.Timestamp); err == nil {
			it.Timestamp = ts.Unix()
		}
		it.CreatedAt = m.Timestamp
		items = append(items, it)
	}

	log.Printf("instagram graph: retrieved %d media items", len(items))
	return &Feed{
		Items:  items,
		Source: SourceGraphAPI,
		Author: &Author{
			ID:          profile.ID,
			Username:    profile.Username,
			AccountType: profile.AccountType,
			MediaCount:  profile.MediaCount,
		},
	}, nil
}
