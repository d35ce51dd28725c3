package upstream

import (
	"testing"
)

const sigiFixture = `<html><head></head><body>
<script id="SIGI_STATE" type="application/json">{
  "ItemModule": {
    "7001": {
      "id": "7001",
      "desc": "first clip #fun",
      "createTime": "1700000100",
      "stats": {"playCount": 1000, "diggCount": 50, "commentCount": 5, "shareCount": 2},
      "author": {"id": "u1", "uniqueId": "dave", "nickname": "Dave", "avatarThumb": "https://cdn/avatar.jpg"},
      "video": {"cover": "https://cdn/cover1.jpg", "playAddr": "https://cdn/video1.mp4"},
      "music": {"id": "m1", "title": "song", "authorName": "artist"}
    },
    "7002": {
      "id": "7002",
      "desc": "second clip",
      "createTime": "1700000200",
      "stats": {"playCount": 2000, "diggCount": 80, "commentCount": 8, "shareCount": 4},
      "author": {"id": "u1", "uniqueId": "dave", "nickname": "Dave", "avatarThumb": "https://cdn/avatar.jpg"},
      "video": {"cover": "https://cdn/cover2.jpg", "playAddr": "https://cdn/video2.mp4"},
      "music": {"id": "m2", "title": "tune", "authorName": "artist"}
    }
  },
  "UserModule": {
    "users": {
      "dave": {"id": "u1", "uniqueId": "dave", "nickname": "Dave", "avatarThumb": "https://cdn/avatar.jpg"}
    }
  }
}</script>
</body></html>`

func TestParseTikTokProfileSigiState(t *testing.T) {
	items, author, err := parseTikTokProfile(sigiFixture)
	if err != nil {
		t.Fatalf("parseTikTokProfile: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if author == nil || author.Username != "dave" {
		t.Fatalf("author = %+v", author)
	}

	byID := map[string]Item{}
	for _, it := range items {
		byID[it.ID] = it
	}
	first := byID["7001"]
	if first.Text != "first clip #fun" || first.Timestamp != 1700000100 {
		t.Fatalf("item 7001 = %+v", first)
	}
	if first.Views != 1000 || first.Likes != 50 || first.Comments != 5 || first.Shares != 2 {
		t.Fatalf("item 7001 stats = %+v", first)
	}
	if first.URL != "https://www.tiktok.com/@dave/video/7001" {
		t.Fatalf("item 7001 url = %q", first.URL)
	}
	if first.Music.Name != "song" || first.Author.Nickname != "Dave" {
		t.Fatalf("item 7001 music/author = %+v / %+v", first.Music, first.Author)
	}
}

const universalFixture = `<html><body>
<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">{
  "__DEFAULT_SCOPE__": {
    "webapp.user-detail": {
      "itemStruct": [
        {
          "id": "8001",
          "desc": "rehydrated clip",
          "createTime": "1700000300",
          "stats": {"playCount": 300, "diggCount": 30, "commentCount": 3, "shareCount": 1},
          "author": {"id": "u2", "uniqueId": "erin", "nickname": "Erin"},
          "video": {"cover": "https://cdn/cover3.jpg", "playAddr": "https://cdn/video3.mp4"},
          "music": {}
        }
      ]
    }
  }
}</script>
</body></html>`

func TestParseTikTokProfileUniversalData(t *testing.T) {
	items, _, err := parseTikTokProfile(universalFixture)
	if err != nil {
		t.Fatalf("parseTikTokProfile: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].ID != "8001" || items[0].Timestamp != 1700000300 {
		t.Fatalf("item = %+v", items[0])
	}
}

func TestParseTikTokProfileNoState(t *testing.T) {
	items, author, err := parseTikTokProfile("<html><body>captcha wall</body></html>")
	if err != nil {
		t.Fatalf("parseTikTokProfile: %v", err)
	}
	if len(items) != 0 || author != nil {
		t.Fatalf("items = %v, author = %v; want empty", items, author)
	}
}

func TestNormalizeTikTokURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  ", ""},
		{"7123456789", "https://www.tiktok.com/@/video/7123456789"},
		{"https://www.tiktok.com/@dave/video/7001", "https://www.tiktok.com/@dave/video/7001"},
		{"www.tiktok.com/@dave/video/7001", "https://www.tiktok.com/@dave/video/7001"},
	}
	for _, c := range cases {
		if got := NormalizeTikTokURL(c.in); got != c.want {
			t.Fatalf("NormalizeTikTokURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
