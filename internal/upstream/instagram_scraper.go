package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const instagramNavTimeout = 45 * time.Second

// InstagramScraper renders a public profile in a headless browser and
// digs the timeline JSON out of the page scripts. One browser allocator
// is shared across requests; each fetch gets its own tab.
type InstagramScraper struct {
	sessionID   string
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

func NewInstagramScraper(sessionID string) *InstagramScraper {
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(),
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
		)...)
	return &InstagramScraper{sessionID: sessionID, allocCtx: allocCtx, cancelAlloc: cancel}
}

// Close tears down the shared browser allocator.
func (s *InstagramScraper) Close() {
	s.cancelAlloc()
}

func (s *InstagramScraper) Name() string { return SourceInstagramScraper }

func (s *InstagramScraper) Fetch(ctx context.Context, handle string, count int) (*Feed, error) {
	handle = CleanHandle(handle)
	log.Printf("instagram scraper: fetching posts for @%s", handle)

	tabCtx, cancelTab := chromedp.NewContext(s.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, instagramNavTimeout)
	defer cancelTimeout()

	var actions []chromedp.Action
	if s.sessionID != "" {
		sessionID := s.sessionID
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookie("sessionid", sessionID).
				WithDomain(".instagram.com").
				WithPath("/").
				Do(ctx)
		}))
	}

	var html string
	actions = append(actions,
		chromedp.Navigate("https://www.instagram.com/"+handle+"/"),
		// Give the timeline scripts time to land; network-idle waits
		// hang forever on Instagram's long-polling connections.
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("render profile: %w", err)
	}

	items, author, err := parseInstagramHTML(html, handle, count)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		// The page rendered but exposed no posts: typically a private
		// profile or a login wall. Not a hard failure.
		return &Feed{
			Source: SourceInstagramScraper,
			Author: author,
			Err:    "no posts found (profile may be private or login-walled)",
		}, nil
	}

	log.Printf("instagram scraper: found %d posts", len(items))
	return &Feed{Items: items, Author: author, Source: SourceInstagramScraper}, nil
}

const igTimelineKey = "edge_owner_to_timeline_media"

func parseInstagramHTML(html, handle string, count int) ([]Item, *Author, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("parse profile html: %w", err)
	}

	var items []Item
	var author *Author

	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if !strings.Contains(text, igTimelineKey) {
			return true
		}
		blob := extractJSONObject(text)
		if blob == "" {
			return true
		}
		var decoded any
		if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
			return true
		}

		timeline, _ := findKey(decoded, igTimelineKey).(map[string]any)
		if timeline == nil {
			return true
		}
		edges, _ := timeline["edges"].([]any)
		for _, e := range edges {
			edge, _ := e.(map[string]any)
			node := pickMap(edge, "node")
			if node == nil {
				continue
			}
			items = append(items, igNodeToItem(node))
		}

		if user, _ := findKey(decoded, "username").(string); user != "" {
			author = &Author{Username: user}
			if followed, ok := findKey(decoded, "edge_followed_by").(map[string]any); ok {
				author.Followers = pickInt(followed, []string{"count"})
			}
		}
		return len(items) == 0
	})

	// Grid fallback: whatever post thumbnails are visible in the
	// rendered markup, without engagement counts.
	if len(items) == 0 {
		now := time.Now().Unix()
		doc.Find("article img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			href, _ := img.Closest("a").Attr("href")
			shortcode := shortcodeFromPath(href)
			if shortcode == "" {
				return true
			}
			src, _ := img.Attr("src")
			alt, _ := img.Attr("alt")
			items = append(items, Item{
				ID:        shortcode,
				URL:       "https://www.instagram.com/p/" + shortcode + "/",
				Text:      alt,
				Cover:     src,
				Timestamp: now,
			})
			return len(items) < count
		})
	}

	if len(items) > count {
		items = items[:count]
	}
	if author == nil {
		author = &Author{Username: handle}
	}
	return items, author, nil
}

func igNodeToItem(node map[string]any) Item {
	shortcode := pickString(node, []string{"shortcode", "id"})
	it := Item{
		ID:        shortcode,
		URL:       "https://www.instagram.com/p/" + shortcode + "/",
		Cover:     pickString(node, []string{"display_url", "thumbnail_src"}),
		Views:     pickInt(node, []string{"video_view_count"}),
		Comments:  0,
		Timestamp: pickInt(node, []string{"taken_at_timestamp"}),
	}
	if v, ok := node["is_video"].(bool); ok {
		it.IsVideo = v
	}
	if likes := pickMap(node, "edge_liked_by"); likes != nil {
		it.Likes = pickInt(likes, []string{"count"})
	} else if likes := pickMap(node, "edge_media_preview_like"); likes != nil {
		it.Likes = pickInt(likes, []string{"count"})
	}
	if comments := pickMap(node, "edge_media_to_comment"); comments != nil {
		it.Comments = pickInt(comments, []string{"count"})
	}
	if caption := pickMap(node, "edge_media_to_caption"); caption != nil {
		if edges, ok := caption["edges"].([]any); ok && len(edges) > 0 {
			if edge, ok := edges[0].(map[string]any); ok {
				if n := pickMap(edge, "node"); n != nil {
					it.Text = pickString(n, []string{"text"})
				}
			}
		}
	}
	if it.Text == "" {
		it.Text = pickString(node, []string{"accessibility_caption"})
	}
	if it.Timestamp == 0 {
		it.Timestamp = time.Now().Unix()
	}
	return it
}

// findKey walks arbitrarily nested decoded JSON for the first value
// under the given key. Instagram moves the timeline blob around between
// page versions; searching beats pinning a path.
func findKey(v any, key string) any {
	switch t := v.(type) {
	case map[string]any:
		if found, ok := t[key]; ok {
			return found
		}
		for _, child := range t {
			if found := findKey(child, key); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range t {
			if found := findKey(child, key); found != nil {
				return found
			}
		}
	}
	return nil
}

// extractJSONObject trims a script body down to the outermost {...}.
func extractJSONObject(script string) string {
	start := strings.Index(script, "{")
	end := strings.LastIndex(script, "}")
	if start == -1 || end <= start {
		return ""
	}
	return script[start : end+1]
}

var igShortcodeRe = regexp.MustCompile(`/p/([^/]+)/`)

func shortcodeFromPath(href string) string {
	if m := igShortcodeRe.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}
