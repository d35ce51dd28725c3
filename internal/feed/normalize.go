package feed

import (
	"sort"

	"github.com/feedmux/feedmux/internal/upstream"
)

// Tweets normalizes a Twitter feed. Engagement mapping: like_count →
// likes, retweet_count → shares, reply_count → comments,
// impression_count → views.
func Tweets(f *upstream.Feed, username string, page, perPage int) Page[Tweet] {
	meta := baseMeta(f, username, page, perPage)

	tweets := make([]Tweet, 0, len(f.Items))
	for _, it := range f.Items {
		url := it.URL
		if url == "" {
			url = "https://twitter.com/" + username + "/status/" + it.ID
		}
		tweets = append(tweets, Tweet{
			TweetID:     it.ID,
			URL:         url,
			Description: it.Text,
			Views:       it.Views,
			Likes:       it.Likes,
			Comments:    it.Comments,
			Shares:      it.Shares,
			CreatedAt:   it.CreatedAt,
		})
	}

	if f.Source == upstream.SourceOfficialAPI {
		quota := f.QuotaRemaining
		meta.APIQuotaRemaining = &quota
	}
	return assemble(f, meta, tweets, page, perPage)
}

// TikTokVideos normalizes a TikTok feed. Items are re-sorted newest
// first before pagination; upstream ordering is not guaranteed and the
// ordering here is part of the contract.
func TikTokVideos(f *upstream.Feed, username string, page, perPage int) Page[TikTokVideo] {
	meta := baseMeta(f, username, page, perPage)
	meta.PostsPerPage = perPage

	videos := make([]TikTokVideo, 0, len(f.Items))
	for _, it := range f.Items {
		videos = append(videos, TikTokVideoItem(it, username))
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].EpochTimePosted > videos[j].EpochTimePosted
	})

	return assemble(f, meta, videos, page, perPage)
}

// TikTokVideoItem maps one upstream item to the TikTok output shape.
// Shared with the batch video endpoint.
func TikTokVideoItem(it upstream.Item, username string) TikTokVideo {
	if username == "" {
		username = it.Author.Username
	}
	url := it.URL
	if url == "" && it.ID != "" {
		url = "https://www.tiktok.com/@" + username + "/video/" + it.ID
	}
	hashtags := it.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	author := VideoAuthor{
		ID:       it.Author.ID,
		Username: it.Author.Username,
		Nickname: it.Author.Nickname,
		Avatar:   it.Author.Avatar,
	}
	if author.Username == "" {
		author.Username = username
	}
	return TikTokVideo{
		VideoID:         it.ID,
		URL:             url,
		Description:     it.Text,
		EpochTimePosted: it.Timestamp,
		Views:           it.Views,
		Likes:           it.Likes,
		Comments:        it.Comments,
		Shares:          it.Shares,
		CoverImage:      it.Cover,
		VideoURL:        it.VideoURL,
		Author:          author,
		Music:           VideoMusic{ID: it.Music.ID, Name: it.Music.Name, Author: it.Music.Author},
		Hashtags:        hashtags,
	}
}

// YouTubeVideos normalizes a YouTube feed.
func YouTubeVideos(f *upstream.Feed, username string, page, perPage int) Page[YouTubeVideo] {
	meta := baseMeta(f, username, page, perPage)
	if f.Author != nil {
		meta.Subscribers = f.Author.Subscribers
	}

	videos := make([]YouTubeVideo, 0, len(f.Items))
	for _, it := range f.Items {
		videos = append(videos, YouTubeVideoItem(it))
	}
	return assemble(f, meta, videos, page, perPage)
}

// YouTubeVideoItem maps one upstream item to the YouTube output shape.
// Shared with the batch video endpoint.
func YouTubeVideoItem(it upstream.Item) YouTubeVideo {
	desc := it.Text
	if desc == "" {
		desc = it.Title
	}
	if len(desc) > 200 {
		desc = desc[:200]
	}
	published := it.Published
	if published == "" {
		published = it.CreatedAt
	}
	return YouTubeVideo{
		VideoID:     it.ID,
		URL:         it.URL,
		Title:       it.Title,
		Description: desc,
		Views:       it.Views,
		Likes:       it.Likes,
		Comments:    it.Comments,
		CoverImage:  it.Cover,
		Duration:    it.Duration,
		PublishedAt: published,
		Channel:     it.ChannelName,
	}
}

// InstagramPosts normalizes an Instagram feed.
func InstagramPosts(f *upstream.Feed, username string, page, perPage int) Page[InstagramPost] {
	meta := baseMeta(f, username, page, perPage)

	posts := make([]InstagramPost, 0, len(f.Items))
	for _, it := range f.Items {
		posts = append(posts, InstagramPost{
			PostID:      it.ID,
			URL:         it.URL,
			Description: it.Text,
			Views:       it.Views,
			Likes:       it.Likes,
			Comments:    it.Comments,
			CoverImage:  it.Cover,
			IsVideo:     it.IsVideo,
			Timestamp:   it.Timestamp,
		})
	}
	return assemble(f, meta, posts, page, perPage)
}

func baseMeta(f *upstream.Feed, username string, page, perPage int) Meta {
	if f.Author != nil && f.Author.Username != "" {
		username = f.Author.Username
	}
	return Meta{
		Username:    username,
		Page:        page,
		RequestTime: now(),
		Source:      f.Source,
	}
}

// assemble finishes a page: totals, slice, status. An empty set with an
// upstream explanation becomes a partial result; an empty set without
// one is still a success with zero pages.
func assemble[T any](f *upstream.Feed, meta Meta, items []T, page, perPage int) Page[T] {
	data, totalPages := paginate(items, page, perPage)
	meta.TotalPosts = len(items)
	meta.TotalPages = totalPages

	status := StatusSuccess
	if len(items) == 0 && f.Err != "" {
		status = StatusPartial
		meta.Error = f.Err
	}
	return Page[T]{Meta: meta, Data: data, Status: status}
}
