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

	"github.com/feedmux/feedmux/internal/rotator"
)

const (
	twitterAPIBase       = "https://api.twitter.com/2"
	twitterClientTimeout = 30 * time.Second
	twitterMaxResults    = 100 // free tier cap per request
)

// TwitterOfficial fetches tweets through the v2 API, drawing bearer
// tokens from a rotating pool. A 429 marks the active key exhausted
// before the error is propagated, so the next request rotates onward.
type TwitterOfficial struct {
	pool   *rotator.Pool
	client *http.Client
}

func NewTwitterOfficial(pool *rotator.Pool) *TwitterOfficial {
	return &TwitterOfficial{
		pool:   pool,
		client: &http.Client{Timeout: twitterClientTimeout},
	}
}

func (t *TwitterOfficial) Name() string { return SourceOfficialAPI }

type twitterUserResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type twitterTweetsResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount       int64 `json:"like_count"`
			RetweetCount    int64 `json:"retweet_count"`
			ReplyCount      int64 `json:"reply_count"`
			ImpressionCount int64 `json:"impression_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

func (t *TwitterOfficial) Fetch(ctx context.Context, handle string, count int) (*Feed, error) {
	handle = CleanHandle(handle)

	key := t.pool.Next()
	if key == nil {
		return nil, errors.New("no eligible twitter api key (pool empty or exhausted)")
	}
	log.Printf("twitter official: fetching @%s with %s", handle, key.Name)

	var user twitterUserResponse
	if err := t.get(ctx, key, twitterAPIBase+"/users/by/username/"+url.PathEscape(handle), nil, &user); err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Data.ID == "" {
		return nil, fmt.Errorf("user %q not found", handle)
	}

	params := url.Values{}
	params.Set("max_results", strconv.Itoa(min(count, twitterMaxResults)))
	params.Set("tweet.fields", "created_at,public_metrics")

	var tweets twitterTweetsResponse
	if err := t.get(ctx, key, twitterAPIBase+"/users/"+user.Data.ID+"/tweets", params, &tweets); err != nil {
		return nil, fmt.Errorf("fetch tweets: %w", err)
	}
	remaining := t.pool.MarkUsed(key)

	items := make([]Item, 0, len(tweets.Data))
	for _, tw := range tweets.Data {
		items = append(items, Item{
			ID:        tw.ID,
			Text:      tw.Text,
			CreatedAt: tw.CreatedAt,
			Likes:     tw.PublicMetrics.LikeCount,
			Shares:    tw.PublicMetrics.RetweetCount,
			Comments:  tw.PublicMetrics.ReplyCount,
			Views:     tw.PublicMetrics.ImpressionCount,
		})
	}

	return &Feed{
		Items:          items,
		Source:         SourceOfficialAPI,
		QuotaRemaining: remaining,
	}, nil
}

func (t *TwitterOfficial) get(ctx context.Context, key *rotator.Credential, rawURL string, params url.Values, out any) error {
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}
	header := http.Header{"Authorization": []string{"Bearer " + key.Token}}

	err := getJSON(ctx, t.client, rawURL, header, out)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
		log.Printf("twitter official: %s rate limited, marking exhausted", key.Name)
		t.pool.MarkExhausted(key)
	}
	return err
}
