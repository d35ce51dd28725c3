package upstream

import (
	"context"
	"encoding/json"
	"testing"
)

func TestParseBotItemSnakeCase(t *testing.T) {
	raw := `{
		"video_id": "7001",
		"desc": "a clip",
		"create_time": 1700000100,
		"play_count": 1000,
		"digg_count": 50,
		"comment_count": 5,
		"share_count": 2,
		"cover": "https://cdn/cover.jpg",
		"download_url": "https://cdn/video.mp4",
		"author": {"id": "u1", "unique_id": "dave", "nickname": "Dave"},
		"music": {"id": "m1", "title": "song", "author": "artist"},
		"hashtags": ["fun", "clip"]
	}`
	var v map[string]any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	it := parseBotItem(v, "dave")
	if it.ID != "7001" || it.Text != "a clip" || it.Timestamp != 1700000100 {
		t.Fatalf("item = %+v", it)
	}
	if it.Views != 1000 || it.Likes != 50 || it.Comments != 5 || it.Shares != 2 {
		t.Fatalf("item stats = %+v", it)
	}
	if it.URL != "https://www.tiktok.com/@dave/video/7001" {
		t.Fatalf("url = %q", it.URL)
	}
	if it.VideoURL != "https://cdn/video.mp4" {
		t.Fatalf("video url = %q", it.VideoURL)
	}
	if it.Author.Username != "dave" || it.Music.Name != "song" {
		t.Fatalf("author/music = %+v / %+v", it.Author, it.Music)
	}
	if len(it.Hashtags) != 2 || it.Hashtags[0] != "fun" {
		t.Fatalf("hashtags = %v", it.Hashtags)
	}
}

func TestParseBotItemCamelCase(t *testing.T) {
	raw := `{
		"id": "7002",
		"caption": "another clip",
		"createTime": "1700000200",
		"playCount": 2000,
		"diggCount": 80
	}`
	var v map[string]any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	it := parseBotItem(v, "erin")
	if it.ID != "7002" || it.Text != "another clip" {
		t.Fatalf("item = %+v", it)
	}
	if it.Timestamp != 1700000200 {
		t.Fatalf("timestamp = %d, want string-typed createTime parsed", it.Timestamp)
	}
	if it.Views != 2000 || it.Likes != 80 {
		t.Fatalf("stats = %+v", it)
	}
	if it.Author.Username != "erin" {
		t.Fatalf("author fallback = %q, want handle", it.Author.Username)
	}
}

func TestParseBotFetchRequiresKey(t *testing.T) {
	p := NewTikTokParseBot("", "")
	if _, err := p.Fetch(context.Background(), "dave", 10); err == nil {
		t.Fatalf("expected error with no API key")
	}
}
