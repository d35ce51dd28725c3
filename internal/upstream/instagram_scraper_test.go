package upstream

import (
	"testing"
)

const igTimelineFixture = `<html><body>
<script type="application/json">{"require": [{"data": {
  "user": {
    "username": "frank",
    "edge_followed_by": {"count": 4200},
    "edge_owner_to_timeline_media": {
      "count": 2,
      "edges": [
        {"node": {
          "shortcode": "AAA111",
          "display_url": "https://cdn/one.jpg",
          "is_video": false,
          "taken_at_timestamp": 1700000100,
          "edge_liked_by": {"count": 10},
          "edge_media_to_comment": {"count": 2},
          "edge_media_to_caption": {"edges": [{"node": {"text": "first post"}}]}
        }},
        {"node": {
          "shortcode": "BBB222",
          "display_url": "https://cdn/two.jpg",
          "is_video": true,
          "video_view_count": 900,
          "taken_at_timestamp": 1700000200,
          "edge_media_preview_like": {"count": 20},
          "edge_media_to_comment": {"count": 4}
        }}
      ]
    }
  }
}}]}</script>
</body></html>`

func TestParseInstagramHTMLTimeline(t *testing.T) {
	items, author, err := parseInstagramHTML(igTimelineFixture, "frank", 30)
	if err != nil {
		t.Fatalf("parseInstagramHTML: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	first := items[0]
	if first.ID != "AAA111" || first.URL != "https://www.instagram.com/p/AAA111/" {
		t.Fatalf("first item = %+v", first)
	}
	if first.Likes != 10 || first.Comments != 2 || first.Text != "first post" {
		t.Fatalf("first item fields = %+v", first)
	}
	if first.IsVideo {
		t.Fatalf("first item marked video")
	}

	second := items[1]
	if !second.IsVideo || second.Views != 900 || second.Likes != 20 {
		t.Fatalf("second item = %+v", second)
	}

	if author == nil || author.Username != "frank" || author.Followers != 4200 {
		t.Fatalf("author = %+v", author)
	}
}

const igGridFixture = `<html><body>
<article>
  <a href="/p/CCC333/"><img src="https://cdn/three.jpg" alt="grid photo"></a>
  <a href="/reel/ignored/"><img src="https://cdn/reel.jpg" alt="reel"></a>
</article>
</body></html>`

func TestParseInstagramHTMLGridFallback(t *testing.T) {
	items, author, err := parseInstagramHTML(igGridFixture, "grace", 30)
	if err != nil {
		t.Fatalf("parseInstagramHTML: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	it := items[0]
	if it.ID != "CCC333" || it.Cover != "https://cdn/three.jpg" || it.Text != "grid photo" {
		t.Fatalf("item = %+v", it)
	}
	if it.Timestamp == 0 {
		t.Fatalf("grid item must get a timestamp")
	}
	if author == nil || author.Username != "grace" {
		t.Fatalf("author = %+v", author)
	}
}

func TestParseInstagramHTMLLoginWall(t *testing.T) {
	items, author, err := parseInstagramHTML("<html><body>Log in to continue</body></html>", "grace", 30)
	if err != nil {
		t.Fatalf("parseInstagramHTML: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %v, want none", items)
	}
	if author == nil || author.Username != "grace" {
		t.Fatalf("author = %+v", author)
	}
}

func TestFindKeyNested(t *testing.T) {
	v := map[string]any{
		"a": []any{
			map[string]any{"b": map[string]any{"target": "found"}},
		},
	}
	if got, _ := findKey(v, "target").(string); got != "found" {
		t.Fatalf("findKey = %v", got)
	}
	if got := findKey(v, "missing"); got != nil {
		t.Fatalf("findKey for missing key = %v", got)
	}
}

func TestExtractJSONObject(t *testing.T) {
	if got := extractJSONObject(`window.__data = {"a": 1};`); got != `{"a": 1}` {
		t.Fatalf("extractJSONObject = %q", got)
	}
	if got := extractJSONObject("no braces here"); got != "" {
		t.Fatalf("extractJSONObject = %q, want empty", got)
	}
}
