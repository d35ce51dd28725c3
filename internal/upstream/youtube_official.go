package upstream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	youtubeAPIBase    = "https://www.googleapis.com/youtube/v3"
	youtubeTimeout    = 30 * time.Second
	youtubeMaxResults = 50 // playlistItems page cap
)

// YouTubeOfficial walks the Data API v3: channel search, channel
// details, uploads playlist, then per-video statistics. Errors (or a
// missing key) push the selector to the page scraper.
type YouTubeOfficial struct {
	apiKey string
	client *http.Client
}

func NewYouTubeOfficial(apiKey string) *YouTubeOfficial {
	return &YouTubeOfficial{apiKey: apiKey, client: &http.Client{Timeout: youtubeTimeout}}
}

func (y *YouTubeOfficial) Name() string { return SourceOfficialAPI }

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
		} `json:"id"`
	} `json:"items"`
}

type ytChannelsResponse struct {
	Items []struct {
		Snippet struct {
			Title       string       `json:"title"`
			Description string       `json:"description"`
			Thumbnails  ytThumbnails `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			ViewCount       string `json:"viewCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type ytPlaylistResponse struct {
	Items []struct {
		Snippet struct {
			Title       string       `json:"title"`
			Description string       `json:"description"`
			PublishedAt string       `json:"publishedAt"`
			Thumbnails  ytThumbnails `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type ytVideosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type ytThumbnails struct {
	Default struct {
		URL string `json:"url"`
	} `json:"default"`
	High struct {
		URL string `json:"url"`
	} `json:"high"`
}

func (t ytThumbnails) best() string {
	if t.High.URL != "" {
		return t.High.URL
	}
	return t.Default.URL
}

func (y *YouTubeOfficial) Fetch(ctx context.Context, handle string, count int) (*Feed, error) {
	handle = CleanHandle(handle)
	if y.apiKey == "" {
		return nil, errors.New("no YouTube API key configured")
	}
	log.Printf("youtube official: fetching videos for @%s", handle)

	var search ytSearchResponse
	if err := y.get(ctx, "/search", url.Values{
		"q": {handle}, "type": {"channel"}, "part": {"snippet"}, "maxResults": {"1"},
	}, &search); err != nil {
		return nil, fmt.Errorf("search channel: %w", err)
	}
	if len(search.Items) == 0 || search.Items[0].ID.ChannelID == "" {
		return nil, fmt.Errorf("channel %q not found", handle)
	}
	channelID := search.Items[0].ID.ChannelID

	var channels ytChannelsResponse
	if err := y.get(ctx, "/channels", url.Values{
		"id": {channelID}, "part": {"snippet,statistics,contentDetails"},
	}, &channels); err != nil {
		return nil, fmt.Errorf("fetch channel: %w", err)
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("channel %q has no details", handle)
	}
	channel := channels.Items[0]

	var playlist ytPlaylistResponse
	if err := y.get(ctx, "/playlistItems", url.Values{
		"playlistId": {channel.ContentDetails.RelatedPlaylists.Uploads},
		"part":       {"snippet,contentDetails"},
		"maxResults": {strconv.Itoa(min(count, youtubeMaxResults))},
	}, &playlist); err != nil {
		return nil, fmt.Errorf("fetch uploads: %w", err)
	}

	ids := make([]string, 0, len(playlist.Items))
	for _, v := range playlist.Items {
		ids = append(ids, v.ContentDetails.VideoID)
	}

	var stats ytVideosResponse
	if len(ids) > 0 {
		if err := y.get(ctx, "/videos", url.Values{
			"id": {strings.Join(ids, ",")}, "part": {"statistics,contentDetails"},
		}, &stats); err != nil {
			return nil, fmt.Errorf("fetch statistics: %w", err)
		}
	}
	statIdx := make(map[string]int, len(stats.Items))
	for i, v := range stats.Items {
		statIdx[v.ID] = i
	}

	items := make([]Item, 0, len(playlist.Items))
	for _, v := range playlist.Items {
		it := Item{
			ID:        v.ContentDetails.VideoID,
			URL:       "https://www.youtube.com/watch?v=" + v.ContentDetails.VideoID,
			Title:     v.Snippet.Title,
			Text:      v.Snippet.Description,
			Cover:     v.Snippet.Thumbnails.best(),
			Published: v.Snippet.PublishedAt,
			IsVideo:   true,
		}
		if i, ok := statIdx[it.ID]; ok {
			sv := stats.Items[i]
			it.Views = parseAPICount(sv.Statistics.ViewCount)
			it.Likes = parseAPICount(sv.Statistics.LikeCount)
			it.Comments = parseAPICount(sv.Statistics.CommentCount)
			it.Duration = sv.ContentDetails.Duration
		}
		items = append(items, it)
	}

	log.Printf("youtube official: retrieved %d videos", len(items))
	return &Feed{
		Items:  items,
		Source: SourceOfficialAPI,
		Author: &Author{
			ID:          channelID,
			Username:    channel.Snippet.Title,
			Description: channel.Snippet.Description,
			Avatar:      channel.Snippet.Thumbnails.best(),
			Subscribers: parseAPICount(channel.Statistics.SubscriberCount),
			TotalViews:  parseAPICount(channel.Statistics.ViewCount),
			VideoCount:  parseAPICount(channel.Statistics.VideoCount),
		},
	}, nil
}

func (y *YouTubeOfficial) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", y.apiKey)
	return getJSON(ctx, y.client, youtubeAPIBase+endpoint+"?"+params.Encode(), nil, out)
}

// The Data API serializes statistics counters as strings.
func parseAPICount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
