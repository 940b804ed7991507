package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

type NavAction int

const (
	NavFirst NavAction = iota
	NavPrev
	NavNext
	NavLast
)

type App struct {
	cfg       Config
	feed      FeedHandle
	pager     *Pager
	locator   *Locator
	submitter *Submitter
	log       zerolog.Logger
	closer    io.Closer
	items     []Link
	cursor    int
	status    StatusLine
}

var openStore = defaultOpenStore

// defaultOpenStore picks the remote store when remote_url is set and the
// local sqlite file otherwise.
func defaultOpenStore(cfg Config) (FeedStore, io.Closer, error) {
	if strings.TrimSpace(cfg.RemoteURL) != "" {
		store, err := NewHTTPStore(cfg.RemoteURL)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	}
	store, err := NewStore(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureFeed(context.Background(), cfg.FeedPath, cfg.FeedTitle); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, store, nil
}

func NewApp(cfg Config, logger zerolog.Logger) (*App, error) {
	store, closer, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	app, err := newAppWithStore(cfg, store, logger)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	app.closer = closer
	return app, nil
}

func newAppWithStore(cfg Config, store FeedStore, logger zerolog.Logger) (*App, error) {
	pager, err := NewPager(cfg.DefaultPageSize, cfg.PageSizes)
	if err != nil {
		return nil, err
	}
	feed := Bind(store, cfg.FeedPath)
	return &App{
		cfg:       cfg,
		feed:      feed,
		pager:     pager,
		locator:   NewLocator(feed, cfg.LocatorBatch),
		submitter: NewSubmitter(feed, logger),
		log:       logger,
		closer:    nopCloser{},
		items:     []Link{},
	}, nil
}

func (a *App) Close() error {
	return a.closer.Close()
}

func (a *App) Pager() *Pager          { return a.pager }
func (a *App) Items() []Link          { return a.items }
func (a *App) Cursor() int            { return a.cursor }
func (a *App) Status() StatusLine     { return a.status }
func (a *App) SetStatus(s StatusLine) { a.status = s }

func (a *App) Selected() (Link, bool) {
	if a.cursor < 0 || a.cursor >= len(a.items) {
		return Link{}, false
	}
	return a.items[a.cursor].clone(), true
}

func (a *App) MoveCursor(delta int) {
	if len(a.items) == 0 {
		a.cursor = 0
		return
	}
	a.cursor = min(max(a.cursor+delta, 0), len(a.items)-1)
}

// LoadPage reads the pager's current window.
func (a *App) LoadPage(ctx context.Context) error {
	items, err := a.pager.Load(ctx, a.feed)
	if errors.Is(err, ErrLoadInFlight) {
		return err
	}
	if err != nil {
		a.pageFailed(err)
		return err
	}
	a.applyPage(items)
	return nil
}

// FinishPage applies an asynchronous page result and reports whether it was
// the latest one.
func (a *App) FinishPage(req PageRequest, page Page, err error) bool {
	items, applied, err := a.pager.Finish(req, page, err)
	if !applied {
		return false
	}
	if err != nil {
		a.pageFailed(err)
		return true
	}
	a.applyPage(items)
	return true
}

func (a *App) applyPage(items []Link) {
	if items == nil {
		items = []Link{}
	}
	a.items = items
	a.MoveCursor(0)
	a.status = okStatus(a.pager.Status())
}

func (a *App) pageFailed(err error) {
	a.log.Error().Err(err).Int("offset", a.pager.Offset()).Int("limit", a.pager.Limit()).Msg("page load failed")
	a.status = errStatus("Failed to load: " + err.Error())
}

// Step moves the pager window without loading. It is refused while a load
// is outstanding.
func (a *App) Step(action NavAction) bool {
	switch action {
	case NavFirst:
		return a.pager.First()
	case NavPrev:
		return a.pager.Prev()
	case NavNext:
		return a.pager.Next()
	case NavLast:
		return a.pager.Last()
	}
	return false
}

func (a *App) Navigate(ctx context.Context, action NavAction) error {
	if !a.Step(action) {
		return ErrLoadInFlight
	}
	a.cursor = 0
	return a.LoadPage(ctx)
}

func (a *App) SetPageSize(ctx context.Context, size int) error {
	if err := a.pager.SetLimit(size); err != nil {
		return err
	}
	a.cursor = 0
	return a.LoadPage(ctx)
}

func (a *App) FullFeed(ctx context.Context) (Feed, error) {
	feed, err := a.feed.Read(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("feed read failed")
		return Feed{}, &StoreReadError{Op: "read feed", Err: err}
	}
	if feed.Links == nil {
		feed.Links = []Link{}
	}
	return feed, nil
}

func (a *App) OpenDetail(ctx context.Context, id string) *Detail {
	detail := NewDetail(id)
	detail.Open(ctx, a.locator)
	a.logDetail(detail)
	return detail
}

func (a *App) logDetail(detail *Detail) {
	if detail.Mode() == ModeFailed {
		a.log.Warn().Str("id", detail.ID()).Str("status", detail.Status().Text).Msg("detail load failed")
	}
}

func (a *App) SaveDetail(ctx context.Context, detail *Detail) error {
	return detail.Save(ctx, a.submitter)
}

// Add creates a link and returns to the first page so it is visible.
func (a *App) Add(ctx context.Context, fields Fields) (Link, error) {
	fields.ID = ""
	link, err := a.submitter.Submit(ctx, fields)
	if err != nil {
		a.status = addFailedStatus(err)
		return Link{}, err
	}
	a.AfterAdd(ctx)
	return link, nil
}

// AfterAdd resets to the first page and reloads it, keeping the save status.
func (a *App) AfterAdd(ctx context.Context) {
	a.pager.First()
	a.cursor = 0
	if err := a.LoadPage(ctx); err == nil {
		a.status = okStatus("Saved ✓")
	}
}

func addFailedStatus(err error) StatusLine {
	if IsValidation(err) {
		return errStatus(err.Error())
	}
	return errStatus("Failed to save: " + err.Error())
}

func (a *App) FeedTitle() string {
	if a.cfg.FeedTitle != "" {
		return a.cfg.FeedTitle
	}
	return a.cfg.FeedPath
}

func (a *App) Header() string {
	return fmt.Sprintf("%s · %s", a.FeedTitle(), a.pager.Status())
}

// Browse hands a link URL to the desktop's opener.
func (a *App) Browse(target string) error {
	if err := openURL(target); err != nil {
		a.log.Warn().Err(err).Str("url", target).Msg("open url failed")
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}
