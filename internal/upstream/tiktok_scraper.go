package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"
)

const tiktokTimeout = 30 * time.Second

// TikTokScraper reads the JSON state TikTok embeds in its profile and
// video pages. Used as the fallback when parse.bot is unavailable, and
// directly by the single-video endpoint.
type TikTokScraper struct {
	client *http.Client
}

func NewTikTokScraper() *TikTokScraper {
	return &TikTokScraper{client: &http.Client{Timeout: tiktokTimeout}}
}

func (s *TikTokScraper) Name() string { return SourcePageScraping }

var (
	sigiStateRe     = regexp.MustCompile(`(?s)<script id="SIGI_STATE"[^>]*>(.+?)</script>`)
	universalDataRe = regexp.MustCompile(`(?s)<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__"[^>]*>(.+?)</script>`)
)

type sigiState struct {
	ItemModule map[string]sigiItem `json:"ItemModule"`
	UserModule struct {
		Users map[string]sigiUser `json:"users"`
	} `json:"UserModule"`
}

type sigiItem struct {
	ID         string      `json:"id"`
	Desc       string      `json:"desc"`
	CreateTime json.Number `json:"createTime"`
	Stats      struct {
		PlayCount    int64 `json:"playCount"`
		DiggCount    int64 `json:"diggCount"`
		CommentCount int64 `json:"commentCount"`
		ShareCount   int64 `json:"shareCount"`
	} `json:"stats"`
	Author sigiAuthor `json:"author"`
	Video  struct {
		Cover    string `json:"cover"`
		PlayAddr string `json:"playAddr"`
	} `json:"video"`
	Music struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		AuthorName string `json:"authorName"`
	} `json:"music"`
}

type sigiAuthor struct {
	ID          string `json:"id"`
	UniqueID    string `json:"uniqueId"`
	Nickname    string `json:"nickname"`
	AvatarThumb string `json:"avatarThumb"`
}

type sigiUser struct {
	ID          string `json:"id"`
	UniqueID    string `json:"uniqueId"`
	Nickname    string `json:"nickname"`
	AvatarThumb string `json:"avatarThumb"`
}

type universalData struct {
	DefaultScope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
}

type universalUserDetail struct {
	ItemStruct []sigiItem `json:"itemStruct"`
}

func (s *TikTokScraper) Fetch(ctx context.Context, handle string, count int) (*Feed, error) {
	handle = CleanHandle(handle)
	log.Printf("tiktok scraper: fetching posts for @%s", handle)

	html, err := getHTML(ctx, s.client, "https://www.tiktok.com/@"+handle)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	posts, author, err := parseTikTokProfile(html)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, errors.New("no videos found (anti-scraping protection likely active)")
	}

	// Upstream ordering is not guaranteed; the normalizer re-sorts, but
	// slicing to count must happen newest-first as well.
	sort.Slice(posts, func(i, j int) bool { return posts[i].Timestamp > posts[j].Timestamp })
	if len(posts) > count {
		posts = posts[:count]
	}

	log.Printf("tiktok scraper: found %d videos", len(posts))
	return &Feed{Items: posts, Author: author, Source: SourcePageScraping}, nil
}

// FetchVideo loads one video page and returns its details, or nil when
// the page yields nothing usable.
func (s *TikTokScraper) FetchVideo(ctx context.Context, link string) (*Item, error) {
	html, err := getHTML(ctx, s.client, link)
	if err != nil {
		return nil, fmt.Errorf("fetch video page: %w", err)
	}

	items, _, err := parseTikTokProfile(html)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("no video data in page")
	}
	it := items[0]
	if it.URL == "" {
		it.URL = link
	}
	return &it, nil
}

func parseTikTokProfile(html string) ([]Item, *Author, error) {
	if m := sigiStateRe.FindStringSubmatch(html); m != nil {
		var state sigiState
		if err := json.Unmarshal([]byte(m[1]), &state); err != nil {
			return nil, nil, fmt.Errorf("parse SIGI_STATE: %w", err)
		}

		items := make([]Item, 0, len(state.ItemModule))
		for _, post := range state.ItemModule {
			items = append(items, sigiToItem(post))
		}

		var author *Author
		for _, u := range state.UserModule.Users {
			author = &Author{ID: u.ID, Username: u.UniqueID, Nickname: u.Nickname, Avatar: u.AvatarThumb}
			break
		}
		return items, author, nil
	}

	if m := universalDataRe.FindStringSubmatch(html); m != nil {
		var data universalData
		if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
			return nil, nil, fmt.Errorf("parse universal data: %w", err)
		}
		raw, ok := data.DefaultScope["webapp.user-detail"]
		if !ok {
			return nil, nil, nil
		}
		var detail universalUserDetail
		if err := json.Unmarshal(raw, &detail); err != nil {
			return nil, nil, fmt.Errorf("parse user detail: %w", err)
		}
		items := make([]Item, 0, len(detail.ItemStruct))
		for _, post := range detail.ItemStruct {
			items = append(items, sigiToItem(post))
		}
		return items, nil, nil
	}

	return nil, nil, nil
}

func sigiToItem(post sigiItem) Item {
	created, _ := post.CreateTime.Int64()
	it := Item{
		ID:        post.ID,
		Text:      post.Desc,
		Timestamp: created,
		Views:     post.Stats.PlayCount,
		Likes:     post.Stats.DiggCount,
		Comments:  post.Stats.CommentCount,
		Shares:    post.Stats.ShareCount,
		Cover:     post.Video.Cover,
		VideoURL:  post.Video.PlayAddr,
		IsVideo:   true,
		Author: Author{
			ID:       post.Author.ID,
			Username: post.Author.UniqueID,
			Nickname: post.Author.Nickname,
			Avatar:   post.Author.AvatarThumb,
		},
		Music: Music{ID: post.Music.ID, Name: post.Music.Title, Author: post.Music.AuthorName},
	}
	if it.Author.Username != "" && it.ID != "" {
		it.URL = "https://www.tiktok.com/@" + it.Author.Username + "/video/" + it.ID
	}
	return it
}

var numericLinkRe = regexp.MustCompile(`^\d+$`)

// NormalizeTikTokURL turns a bare video ID or scheme-less link into a
// canonical TikTok URL. Returns "" for unusable input.
func NormalizeTikTokURL(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if numericLinkRe.MatchString(link) {
		return "https://www.tiktok.com/@/video/" + link
	}
	if strings.HasPrefix(link, "http") {
		return link
	}
	return "https://" + link
}
