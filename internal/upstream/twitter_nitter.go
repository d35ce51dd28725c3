package upstream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// Public Nitter mirrors, tried in order. Individual mirrors come and go;
// the first one that yields tweets wins.
var nitterInstances = []string{
	"https://nitter.privacydev.net",
	"https://nitter.poast.org",
	"https://nitter.woodland.cafe",
	"https://nitter.1d4.us",
}

const nitterTimeout = 15 * time.Second

// TwitterNitter scrapes a user timeline off public Nitter mirrors.
type TwitterNitter struct {
	instances []string
	client    *http.Client
	limiter   *rate.Limiter
}

func NewTwitterNitter() *TwitterNitter {
	return &TwitterNitter{
		instances: nitterInstances,
		client:    &http.Client{Timeout: nitterTimeout},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

func (n *TwitterNitter) Name() string { return SourceNitter }

func (n *TwitterNitter) Fetch(ctx context.Context, handle string, count int) (*Feed, error) {
	handle = CleanHandle(handle)

	for _, instance := range n.instances {
		if err := n.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		items, err := n.fetchInstance(instance, handle)
		if err != nil {
			log.Printf("nitter %s failed: %v", instance, err)
			continue
		}
		if len(items) == 0 {
			log.Printf("nitter %s returned no tweets", instance)
			continue
		}

		log.Printf("nitter: found %d tweets for @%s via %s", len(items), handle, instance)
		if len(items) > count {
			items = items[:count]
		}
		return &Feed{Items: items, Source: SourceNitter}, nil
	}

	return nil, errors.New("all nitter instances failed")
}

func (n *TwitterNitter) fetchInstance(instance, handle string) ([]Item, error) {
	c := colly.NewCollector(colly.UserAgent(browserUserAgent))
	c.SetRequestTimeout(nitterTimeout)

	var items []Item
	c.OnHTML("div.timeline-item", func(e *colly.HTMLElement) {
		text := strings.TrimSpace(e.DOM.Find("div.tweet-content").Text())
		if text == "" {
			return
		}

		link, _ := e.DOM.Find("a.tweet-link").Attr("href")
		id := strings.TrimSuffix(path.Base(link), "#m")
		date, _ := e.DOM.Find("span.tweet-date a").Attr("title")

		it := Item{
			ID:        id,
			URL:       "https://twitter.com/" + handle + "/status/" + id,
			Text:      text,
			CreatedAt: date,
		}
		e.DOM.Find("span.tweet-stat").Each(func(_ int, s *goquery.Selection) {
			val := parseCount(strings.TrimSpace(s.Text()))
			switch {
			case s.Find("span.icon-heart").Length() > 0:
				it.Likes = val
			case s.Find("span.icon-retweet").Length() > 0:
				it.Shares = val
			case s.Find("span.icon-comment").Length() > 0:
				it.Comments = val
			}
		})
		items = append(items, it)
	})

	if err := c.Visit(instance + "/" + handle); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	// Some mirrors serve markup colly's selectors miss; retry with a
	// plain GET and regex extraction before giving up on the instance.
	html, err := getHTML(context.Background(), n.client, instance+"/"+handle)
	if err != nil {
		return nil, err
	}
	return parseNitterHTML(html, handle), nil
}

var (
	nitterContentRe = regexp.MustCompile(`(?s)<div class="tweet-content[^"]*">(.*?)</div>`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
)

const nitterFallbackMaxTweets = 20

// parseNitterHTML is the regex fallback. Only tweet text is recoverable
// this way; IDs are synthesized and engagement counts stay at zero.
func parseNitterHTML(html, handle string) []Item {
	var items []Item
	ts := time.Now().Unix()
	for _, m := range nitterContentRe.FindAllStringSubmatch(html, -1) {
		if len(items) >= nitterFallbackMaxTweets {
			break
		}
		text := strings.TrimSpace(htmlTagRe.ReplaceAllString(m[1], ""))
		if text == "" {
			continue
		}
		items = append(items, Item{
			ID:   fmt.Sprintf("nitter_%d_%d", ts, len(items)),
			Text: text,
			URL:  "https://twitter.com/" + handle,
		})
	}
	return items
}
