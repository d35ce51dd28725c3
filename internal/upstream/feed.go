package upstream

import "strings"

// Source name tags carried into response provenance.
const (
	SourceOfficialAPI      = "official_api"
	SourceNitter           = "nitter"
	SourceParseBot         = "parsebot"
	SourcePageScraping     = "page_scraping"
	SourceGraphAPI         = "graph_api"
	SourceInstagramScraper = "instagram_scraper"
)

// Feed is the unnormalized result of a single upstream call. It lives
// only long enough to be handed to the normalizer.
type Feed struct {
	Items  []Item
	Author *Author
	Source string

	// Err explains an empty-but-not-failed result ("profile may be
	// private"). Feeds with Err set surface as status "partial".
	Err string

	// QuotaRemaining is only meaningful for the official Twitter source.
	QuotaRemaining int
}

// Item is the shared intermediate shape every upstream client maps into.
// Fields a platform does not expose stay at their zero value.
type Item struct {
	ID          string
	URL         string
	Title       string
	Text        string
	Views       int64
	Likes       int64
	Comments    int64
	Shares      int64
	Cover       string
	VideoURL    string
	Timestamp   int64  // unix seconds
	CreatedAt   string // upstream-formatted time, kept verbatim
	Duration    string
	Published   string
	IsVideo     bool
	Author      Author
	Music       Music
	Hashtags    []string
	ChannelID   string
	ChannelName string
}

type Author struct {
	ID          string
	Username    string
	Nickname    string
	Avatar      string
	Description string
	Followers   int64
	Subscribers int64
	TotalViews  int64
	VideoCount  int64
	MediaCount  int64
	AccountType string
}

type Music struct {
	ID     string
	Name   string
	Author string
}

// CleanHandle strips a leading @ and surrounding whitespace from a
// user-supplied handle.
func CleanHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
