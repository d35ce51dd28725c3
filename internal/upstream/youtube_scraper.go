package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
)

// YouTubeScraper parses the ytInitialData blob embedded in channel and
// watch pages. No API key, no quota; the deep renderer structure is the
// fragile part and is isolated behind typed structs here.
type YouTubeScraper struct {
	client *http.Client
}

func NewYouTubeScraper() *YouTubeScraper {
	return &YouTubeScraper{client: &http.Client{Timeout: youtubeTimeout}}
}

func (s *YouTubeScraper) Name() string { return SourcePageScraping }

var ytInitialDataRe = regexp.MustCompile(`(?s)var ytInitialData = (.+?);</script>`)

type ytRuns struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
	SimpleText string `json:"simpleText"`
}

func (r ytRuns) text() string {
	if r.SimpleText != "" {
		return r.SimpleText
	}
	var b strings.Builder
	for _, run := range r.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

type ytVideoRenderer struct {
	VideoID            string `json:"videoId"`
	Title              ytRuns `json:"title"`
	DescriptionSnippet ytRuns `json:"descriptionSnippet"`
	ViewCountText      ytRuns `json:"viewCountText"`
	LengthText         ytRuns `json:"lengthText"`
	PublishedTimeText  ytRuns `json:"publishedTimeText"`
	Thumbnail          struct {
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
}

type ytInitialData struct {
	Contents struct {
		TwoColumnBrowseResultsRenderer struct {
			Tabs []struct {
				TabRenderer struct {
					Title    string `json:"title"`
					Endpoint struct {
						CommandMetadata struct {
							WebCommandMetadata struct {
								URL string `json:"url"`
							} `json:"webCommandMetadata"`
						} `json:"commandMetadata"`
					} `json:"endpoint"`
					Content struct {
						RichGridRenderer struct {
							Contents []struct {
								RichItemRenderer struct {
									Content struct {
										VideoRenderer *ytVideoRenderer `json:"videoRenderer"`
									} `json:"content"`
								} `json:"richItemRenderer"`
							} `json:"contents"`
						} `json:"richGridRenderer"`
					} `json:"content"`
				} `json:"tabRenderer"`
			} `json:"tabs"`
		} `json:"twoColumnBrowseResultsRenderer"`
		TwoColumnWatchNextResults struct {
			Results struct {
				Results struct {
					Contents []struct {
						VideoPrimaryInfoRenderer *struct {
							Title     ytRuns `json:"title"`
							DateText  ytRuns `json:"dateText"`
							ViewCount struct {
								VideoViewCountRenderer struct {
									ViewCount ytRuns `json:"viewCount"`
								} `json:"videoViewCountRenderer"`
							} `json:"viewCount"`
						} `json:"videoPrimaryInfoRenderer"`
						VideoSecondaryInfoRenderer *struct {
							Owner struct {
								VideoOwnerRenderer struct {
									Title              ytRuns `json:"title"`
									NavigationEndpoint struct {
										BrowseEndpoint struct {
											BrowseID string `json:"browseId"`
										} `json:"browseEndpoint"`
									} `json:"navigationEndpoint"`
								} `json:"videoOwnerRenderer"`
							} `json:"owner"`
							AttributedDescription struct {
								Content string `json:"content"`
							} `json:"attributedDescription"`
						} `json:"videoSecondaryInfoRenderer"`
					} `json:"contents"`
				} `json:"results"`
			} `json:"results"`
		} `json:"twoColumnWatchNextResults"`
	} `json:"contents"`
	Metadata struct {
		ChannelMetadataRenderer struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Avatar      struct {
				Thumbnails []struct {
					URL string `json:"url"`
				} `json:"thumbnails"`
			} `json:"avatar"`
		} `json:"channelMetadataRenderer"`
	} `json:"metadata"`
	Header struct {
		C4TabbedHeaderRenderer struct {
			SubscriberCountText ytRuns `json:"subscriberCountText"`
		} `json:"c4TabbedHeaderRenderer"`
	} `json:"header"`
}

func (s *YouTubeScraper) Fetch(ctx context.Context, handle string, count int) (*Feed, error) {
	handle = CleanHandle(handle)
	log.Printf("youtube scraper: fetching videos for @%s", handle)

	html, err := getHTML(ctx, s.client, "https://www.youtube.com/@"+handle+"/videos")
	if err != nil {
		return nil, fmt.Errorf("fetch channel page: %w", err)
	}

	data, err := extractYtInitialData(html)
	if err != nil {
		return nil, err
	}

	items := parseChannelVideos(data, count)
	if len(items) == 0 {
		return nil, errors.New("no videos in ytInitialData")
	}
	log.Printf("youtube scraper: found %d videos", len(items))

	meta := data.Metadata.ChannelMetadataRenderer
	author := &Author{
		Username:    meta.Title,
		Description: meta.Description,
		Subscribers: parseCount(data.Header.C4TabbedHeaderRenderer.SubscriberCountText.text()),
	}
	if author.Username == "" {
		author.Username = handle
	}
	if len(meta.Avatar.Thumbnails) > 0 {
		author.Avatar = meta.Avatar.Thumbnails[0].URL
	}

	return &Feed{Items: items, Author: author, Source: SourcePageScraping}, nil
}

func extractYtInitialData(html string) (*ytInitialData, error) {
	m := ytInitialDataRe.FindStringSubmatch(html)
	if m == nil {
		return nil, errors.New("no ytInitialData in page")
	}
	var data ytInitialData
	if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
		return nil, fmt.Errorf("parse ytInitialData: %w", err)
	}
	return &data, nil
}

func parseChannelVideos(data *ytInitialData, count int) []Item {
	var items []Item
	for _, tab := range data.Contents.TwoColumnBrowseResultsRenderer.Tabs {
		tr := tab.TabRenderer
		if tr.Title != "Videos" && !strings.Contains(tr.Endpoint.CommandMetadata.WebCommandMetadata.URL, "/videos") {
			continue
		}
		for _, c := range tr.Content.RichGridRenderer.Contents {
			v := c.RichItemRenderer.Content.VideoRenderer
			if v == nil || v.VideoID == "" {
				continue
			}
			it := Item{
				ID:        v.VideoID,
				URL:       "https://www.youtube.com/watch?v=" + v.VideoID,
				Title:     v.Title.text(),
				Text:      v.DescriptionSnippet.text(),
				Views:     parseCount(v.ViewCountText.text()),
				Duration:  v.LengthText.text(),
				Published: v.PublishedTimeText.text(),
				IsVideo:   true,
			}
			if n := len(v.Thumbnail.Thumbnails); n > 0 {
				it.Cover = v.Thumbnail.Thumbnails[n-1].URL
			}
			items = append(items, it)
			if len(items) >= count {
				return items
			}
		}
	}
	return items
}

// FetchVideo loads one watch page and returns the video details.
func (s *YouTubeScraper) FetchVideo(ctx context.Context, videoID string) (*Item, error) {
	log.Printf("youtube scraper: fetching video %s", videoID)

	watchURL := "https://www.youtube.com/watch?v=" + videoID
	html, err := getHTML(ctx, s.client, watchURL)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}

	data, err := extractYtInitialData(html)
	if err != nil {
		return nil, err
	}

	it := Item{
		ID:      videoID,
		URL:     watchURL,
		Cover:   "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg",
		IsVideo: true,
	}
	found := false
	for _, c := range data.Contents.TwoColumnWatchNextResults.Results.Results.Contents {
		if p := c.VideoPrimaryInfoRenderer; p != nil {
			found = true
			it.Title = p.Title.text()
			it.Views = parseCount(p.ViewCount.VideoViewCountRenderer.ViewCount.text())
			it.Published = p.DateText.text()
		}
		if sec := c.VideoSecondaryInfoRenderer; sec != nil {
			it.Text = sec.AttributedDescription.Content
			it.ChannelName = sec.Owner.VideoOwnerRenderer.Title.text()
			it.ChannelID = sec.Owner.VideoOwnerRenderer.NavigationEndpoint.BrowseEndpoint.BrowseID
		}
	}
	if !found {
		return nil, errors.New("video primary info not found")
	}
	return &it, nil
}

var (
	ytWatchRe  = regexp.MustCompile(`(?:youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]{11})`)
	ytShortsRe = regexp.MustCompile(`/shorts/([a-zA-Z0-9_-]{11})`)
	ytIDRe     = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractYouTubeVideoID pulls the 11-character video ID out of watch,
// short-link, embed and shorts URLs, or accepts a bare ID. Returns ""
// when nothing matches.
func ExtractYouTubeVideoID(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if m := ytWatchRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if m := ytShortsRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if ytIDRe.MatchString(link) {
		return link
	}
	return ""
}
