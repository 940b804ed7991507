package main

import (
	"context"
	"fmt"
	"sync"
)

type pageCall struct {
	Offset int
	Limit  int
}

// memoryFeed is an in-memory FeedStore used by the controller tests.
type memoryFeed struct {
	mu        sync.Mutex
	title     string
	links     []Link
	calls     []pageCall
	upserts   []LinkPayload
	readErr   error
	writeErr  error
	failAfter int
}

func newMemoryFeed(n int) *memoryFeed {
	feed := &memoryFeed{title: "Test Feed", failAfter: -1}
	for i := 0; i < n; i++ {
		feed.links = append(feed.links, Link{
			ID:    fmt.Sprintf("id-%d", i),
			Title: fmt.Sprintf("Link %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
			Date:  "2025-08-23",
			Tags:  []string{},
		})
	}
	return feed
}

func (m *memoryFeed) ReadFeed(ctx context.Context, path string) (Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return Feed{}, m.readErr
	}
	links := make([]Link, len(m.links))
	for i, link := range m.links {
		links[i] = link.clone()
	}
	return Feed{Title: m.title, Version: 1, Links: links}, nil
}

func (m *memoryFeed) ReadFeedPage(ctx context.Context, path string, offset, limit int) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, pageCall{Offset: offset, Limit: limit})
	if m.readErr != nil {
		return Page{}, m.readErr
	}
	if m.failAfter >= 0 && len(m.calls) > m.failAfter {
		return Page{}, fmt.Errorf("read %d failed", len(m.calls))
	}
	items := []Link{}
	for i := offset; i < len(m.links) && i < offset+limit; i++ {
		items = append(items, m.links[i].clone())
	}
	return Page{Total: len(m.links), Items: items}, nil
}

func (m *memoryFeed) UpsertLink(ctx context.Context, path string, link LinkPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, link)
	if m.writeErr != nil {
		return m.writeErr
	}
	stored := link.Link()
	if stored.ID == "" {
		stored.ID = fmt.Sprintf("new-%d", len(m.upserts))
		stored.Date = "2025-08-24"
		m.links = append([]Link{stored}, m.links...)
		return nil
	}
	for i := range m.links {
		if m.links[i].ID == stored.ID {
			stored.Date = m.links[i].Date
			m.links[i] = stored
			return nil
		}
	}
	m.links = append([]Link{stored}, m.links...)
	return nil
}

func (m *memoryFeed) handle() FeedHandle {
	return Bind(m, "mylinks")
}

func (m *memoryFeed) pageCalls() []pageCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pageCall(nil), m.calls...)
}

// pageReaderFunc adapts a function to PageReader.
type pageReaderFunc func(ctx context.Context, offset, limit int) (Page, error)

func (f pageReaderFunc) ReadPage(ctx context.Context, offset, limit int) (Page, error) {
	return f(ctx, offset, limit)
}

// shrinkingReader reports a stale total but runs out of items early.
func shrinkingReader(total int, available int) pageReaderFunc {
	return func(_ context.Context, offset, limit int) (Page, error) {
		items := []Link{}
		for i := offset; i < available && i < offset+limit; i++ {
			items = append(items, Link{ID: fmt.Sprintf("s-%d", i)})
		}
		return Page{Total: total, Items: items}, nil
	}
}
