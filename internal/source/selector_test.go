package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/feedmux/feedmux/internal/upstream"
)

type stubSource struct {
	name  string
	feed  *upstream.Feed
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, handle string, count int) (*upstream.Feed, error) {
	s.calls++
	return s.feed, s.err
}

func TestResolveFirstSourceWins(t *testing.T) {
	first := &stubSource{name: "first", feed: &upstream.Feed{Items: []upstream.Item{{ID: "1"}}}}
	second := &stubSource{name: "second"}

	fd, name, err := NewSelector(first, second).Resolve(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if name != "first" {
		t.Fatalf("source = %q, want first", name)
	}
	if len(fd.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(fd.Items))
	}
	if second.calls != 0 {
		t.Fatalf("second source called %d times, want 0", second.calls)
	}
}

func TestResolveFallsBackOnError(t *testing.T) {
	first := &stubSource{name: "first", err: errors.New("boom")}
	second := &stubSource{name: "second", feed: &upstream.Feed{Items: []upstream.Item{{ID: "2"}}}}

	fd, name, err := NewSelector(first, second).Resolve(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if name != "second" {
		t.Fatalf("source = %q, want second", name)
	}
	if fd.Items[0].ID != "2" {
		t.Fatalf("items from wrong source: %+v", fd.Items)
	}
}

func TestResolveFallsBackOnUnexplainedEmpty(t *testing.T) {
	first := &stubSource{name: "first", feed: &upstream.Feed{}}
	second := &stubSource{name: "second", feed: &upstream.Feed{Items: []upstream.Item{{ID: "2"}}}}

	_, name, err := NewSelector(first, second).Resolve(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if name != "second" {
		t.Fatalf("source = %q, want second", name)
	}
}

func TestResolveExplainedEmptyStopsChain(t *testing.T) {
	first := &stubSource{name: "first", feed: &upstream.Feed{Err: "profile is private"}}
	second := &stubSource{name: "second", feed: &upstream.Feed{Items: []upstream.Item{{ID: "2"}}}}

	fd, name, err := NewSelector(first, second).Resolve(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if name != "first" {
		t.Fatalf("source = %q, want first", name)
	}
	if fd.Err != "profile is private" {
		t.Fatalf("feed err = %q", fd.Err)
	}
	if second.calls != 0 {
		t.Fatalf("second source called after explained empty")
	}
}

func TestResolveAllFailedJoinsReasons(t *testing.T) {
	first := &stubSource{name: "first", err: errors.New("rate limited")}
	second := &stubSource{name: "second", feed: &upstream.Feed{}}

	_, _, err := NewSelector(first, second).Resolve(context.Background(), "alice", 10)
	if err == nil {
		t.Fatalf("Resolve succeeded with no usable sources")
	}
	msg := err.Error()
	if !strings.Contains(msg, "all sources failed") {
		t.Fatalf("error = %q", msg)
	}
	if !strings.Contains(msg, "first: rate limited") || !strings.Contains(msg, "second: returned no items") {
		t.Fatalf("error missing per-source reasons: %q", msg)
	}
}

func TestResolveStampsSourceName(t *testing.T) {
	src := &stubSource{name: "stamped", feed: &upstream.Feed{Items: []upstream.Item{{ID: "1"}}}}

	fd, _, err := NewSelector(src).Resolve(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if fd.Source != "stamped" {
		t.Fatalf("feed source = %q, want stamped", fd.Source)
	}
}
