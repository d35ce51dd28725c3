package upstream

import (
	"testing"
)

const ytChannelFixture = `<html><body><script>var ytInitialData = {
  "contents": {
    "twoColumnBrowseResultsRenderer": {
      "tabs": [
        {"tabRenderer": {"title": "Home", "content": {}}},
        {"tabRenderer": {
          "title": "Videos",
          "endpoint": {"commandMetadata": {"webCommandMetadata": {"url": "/@chan/videos"}}},
          "content": {"richGridRenderer": {"contents": [
            {"richItemRenderer": {"content": {"videoRenderer": {
              "videoId": "abcdefghijk",
              "title": {"runs": [{"text": "Video one"}]},
              "descriptionSnippet": {"runs": [{"text": "desc one"}]},
              "viewCountText": {"simpleText": "1.2K views"},
              "lengthText": {"simpleText": "10:01"},
              "publishedTimeText": {"simpleText": "2 days ago"},
              "thumbnail": {"thumbnails": [{"url": "https://i/small.jpg"}, {"url": "https://i/big.jpg"}]}
            }}}},
            {"richItemRenderer": {"content": {"videoRenderer": {
              "videoId": "lmnopqrstuv",
              "title": {"simpleText": "Video two"},
              "viewCountText": {"simpleText": "500 views"}
            }}}},
            {"richItemRenderer": {"content": {}}}
          ]}}
        }}
      ]
    }
  },
  "metadata": {"channelMetadataRenderer": {
    "title": "Chan",
    "description": "about the channel",
    "avatar": {"thumbnails": [{"url": "https://i/avatar.jpg"}]}
  }},
  "header": {"c4TabbedHeaderRenderer": {"subscriberCountText": {"simpleText": "1.5M subscribers"}}}
};</script></body></html>`

func TestParseChannelVideos(t *testing.T) {
	data, err := extractYtInitialData(ytChannelFixture)
	if err != nil {
		t.Fatalf("extractYtInitialData: %v", err)
	}

	items := parseChannelVideos(data, 30)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	first := items[0]
	if first.ID != "abcdefghijk" || first.Title != "Video one" {
		t.Fatalf("first item = %+v", first)
	}
	if first.URL != "https://www.youtube.com/watch?v=abcdefghijk" {
		t.Fatalf("url = %q", first.URL)
	}
	if first.Views != 1200 {
		t.Fatalf("views = %d, want 1200", first.Views)
	}
	if first.Cover != "https://i/big.jpg" {
		t.Fatalf("cover = %q, want largest thumbnail", first.Cover)
	}
	if first.Duration != "10:01" || first.Published != "2 days ago" {
		t.Fatalf("duration/published = %q / %q", first.Duration, first.Published)
	}
}

func TestParseChannelVideosHonorsCount(t *testing.T) {
	data, err := extractYtInitialData(ytChannelFixture)
	if err != nil {
		t.Fatalf("extractYtInitialData: %v", err)
	}
	if items := parseChannelVideos(data, 1); len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
}

func TestChannelMetadataParsing(t *testing.T) {
	data, err := extractYtInitialData(ytChannelFixture)
	if err != nil {
		t.Fatalf("extractYtInitialData: %v", err)
	}
	meta := data.Metadata.ChannelMetadataRenderer
	if meta.Title != "Chan" {
		t.Fatalf("channel title = %q", meta.Title)
	}
	subs := parseCount(data.Header.C4TabbedHeaderRenderer.SubscriberCountText.text())
	if subs != 1500000 {
		t.Fatalf("subscribers = %d, want 1500000", subs)
	}
}

func TestExtractYtInitialDataMissing(t *testing.T) {
	if _, err := extractYtInitialData("<html><body>consent page</body></html>"); err == nil {
		t.Fatalf("expected error for page without ytInitialData")
	}
}

func TestExtractYouTubeVideoID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10s", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"not a link", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExtractYouTubeVideoID(c.in); got != c.want {
			t.Fatalf("ExtractYouTubeVideoID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
