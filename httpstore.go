package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const remoteTimeout = 15 * time.Second

// HTTPStore is a FeedStore backed by a remote `linkshelf serve` instance.
type HTTPStore struct {
	client *resty.Client
}

func NewHTTPStore(baseURL string) (*HTTPStore, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q", baseURL)
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(remoteTimeout)
	return &HTTPStore{client: c}, nil
}

func feedEndpoint(path string, suffix string) string {
	return "/feeds/" + url.PathEscape(path) + suffix
}

func (s *HTTPStore) ReadFeed(ctx context.Context, path string) (Feed, error) {
	resp, err := s.client.R().SetContext(ctx).Get(feedEndpoint(path, ""))
	if err != nil {
		return Feed{}, fmt.Errorf("remote request: %w", err)
	}
	if err := remoteError(resp); err != nil {
		return Feed{}, err
	}
	var feed Feed
	if err := json.Unmarshal(resp.Body(), &feed); err != nil {
		return Feed{}, fmt.Errorf("decode feed: %w", err)
	}
	if feed.Links == nil {
		feed.Links = []Link{}
	}
	return feed, nil
}

func (s *HTTPStore) ReadFeedPage(ctx context.Context, path string, offset, limit int) (Page, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("offset", strconv.Itoa(offset)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get(feedEndpoint(path, "/page"))
	if err != nil {
		return Page{}, fmt.Errorf("remote request: %w", err)
	}
	if err := remoteError(resp); err != nil {
		return Page{}, err
	}
	var page Page
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return Page{}, fmt.Errorf("decode page: %w", err)
	}
	if page.Items == nil {
		page.Items = []Link{}
	}
	return page, nil
}

func (s *HTTPStore) UpsertLink(ctx context.Context, path string, link LinkPayload) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&link).
		Put(feedEndpoint(path, "/links"))
	if err != nil {
		return fmt.Errorf("remote request: %w", err)
	}
	return remoteError(resp)
}

// remoteError turns a non-2xx answer into an error carrying the server's
// message when it sent one.
func remoteError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	var body errorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		return fmt.Errorf("remote status %d: %s", resp.StatusCode(), body.Error)
	}
	return fmt.Errorf("remote status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
}
