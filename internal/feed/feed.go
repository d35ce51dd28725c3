// Package feed maps upstream results into the facade's stable output
// schema and applies pagination. Pure data mapping, no I/O.
package feed

import (
	"math"
	"time"
)

const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// Meta is the envelope block accompanying every paginated response.
type Meta struct {
	Username          string `json:"username"`
	Page              int    `json:"page"`
	TotalPages        int    `json:"total_pages"`
	PostsPerPage      int    `json:"posts_per_page,omitempty"`
	TotalPosts        int    `json:"total_posts"`
	RequestTime       int64  `json:"request_time"`
	Source            string `json:"source,omitempty"`
	APIQuotaRemaining *int   `json:"api_quota_remaining,omitempty"`
	Subscribers       int64  `json:"subscribers,omitempty"`
	Error             string `json:"error,omitempty"`
}

// Page is one page of normalized items plus its meta block.
type Page[T any] struct {
	Meta   Meta   `json:"meta"`
	Data   []T    `json:"data"`
	Status string `json:"status"`
}

// Tweet is the normalized Twitter item shape.
type Tweet struct {
	TweetID     string `json:"tweet_id"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Views       int64  `json:"views"`
	Likes       int64  `json:"likes"`
	Comments    int64  `json:"comments"`
	Shares      int64  `json:"shares"`
	CreatedAt   string `json:"created_at"`
}

// TikTokVideo is the normalized TikTok item shape.
type TikTokVideo struct {
	VideoID         string      `json:"video_id"`
	URL             string      `json:"url"`
	Description     string      `json:"description"`
	EpochTimePosted int64       `json:"epoch_time_posted"`
	Views           int64       `json:"views"`
	Likes           int64       `json:"likes"`
	Comments        int64       `json:"comments"`
	Shares          int64       `json:"shares"`
	CoverImage      string      `json:"cover_image"`
	VideoURL        string      `json:"video_url"`
	Author          VideoAuthor `json:"author"`
	Music           VideoMusic  `json:"music"`
	Hashtags        []string    `json:"hashtags"`
}

type VideoAuthor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type VideoMusic struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
}

// YouTubeVideo is the normalized YouTube item shape.
type YouTubeVideo struct {
	VideoID     string `json:"video_id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Views       int64  `json:"views"`
	Likes       int64  `json:"likes"`
	Comments    int64  `json:"comments"`
	CoverImage  string `json:"cover_image"`
	Duration    string `json:"duration"`
	PublishedAt string `json:"published_at"`
	Channel     string `json:"channel,omitempty"`
}

// InstagramPost is the normalized Instagram item shape.
type InstagramPost struct {
	PostID      string `json:"post_id"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Views       int64  `json:"views"`
	Likes       int64  `json:"likes"`
	Comments    int64  `json:"comments"`
	CoverImage  string `json:"cover_image"`
	IsVideo     bool   `json:"is_video"`
	Timestamp   int64  `json:"timestamp"`
}

// paginate slices one page out of the full normalized set and reports
// the page count. Out-of-range pages yield an empty (non-nil) slice.
func paginate[T any](items []T, page, perPage int) ([]T, int) {
	totalPages := int(math.Ceil(float64(len(items)) / float64(perPage)))

	start := (page - 1) * perPage
	if start < 0 || start >= len(items) {
		return []T{}, totalPages
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], totalPages
}

// now is swapped out by tests that pin request_time.
var now = func() int64 { return time.Now().Unix() }
