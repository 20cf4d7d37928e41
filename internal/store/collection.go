package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/gymone/gymadmin/internal/cli/connection"
	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/telemetry/logger"
	"github.com/gymone/gymadmin/internal/telemetry/metric"
)

// API is the guarded call path. *connection.HTTPClient implements it.
type API interface {
	Get(ctx context.Context, path string, target any, opts ...connection.RequestOption) error
	Post(ctx context.Context, path string, body, target any, opts ...connection.RequestOption) error
	Put(ctx context.Context, path string, body, target any, opts ...connection.RequestOption) error
	Delete(ctx context.Context, path string, target any, opts ...connection.RequestOption) error
}

// Deps are the collaborators shared by all stores.
type Deps struct {
	API     API
	Logger  logger.Logger
	Metrics *metric.Registry
}

// Cache is a snapshot of a collection's state.
type Cache[E any] struct {
	Items        []E
	Page         int
	TotalPages   int
	Total        int
	SearchTerm   string
	FilterStatus domain.Status
	Loading      bool
	Error        string
	Selected     *E
}

// Config describes one backend collection.
type Config[E any] struct {
	// Name labels logs and metrics.
	Name string
	// Path is the collection endpoint, e.g. "/users".
	Path string
	// ListKey is the field holding the items when the response nests them.
	ListKey string
	PerPage int
	ID      func(E) domain.ID
	Match   func(e E, term string, status domain.Status) bool
}

// Collection is a paginated list cache over one endpoint.
type Collection[E any] struct {
	cfg     Config[E]
	api     API
	logger  logger.Logger
	metrics *metric.Registry

	mu    sync.Mutex
	cache Cache[E]
	seq   uint64
}

// NewCollection creates an empty collection on page 1.
func NewCollection[E any](cfg Config[E], deps Deps) *Collection[E] {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 20
	}
	return &Collection[E]{
		cfg:     cfg,
		api:     deps.API,
		logger:  log.With("store", cfg.Name),
		metrics: deps.Metrics,
		cache:   Cache[E]{Page: 1, TotalPages: 1},
	}
}

// Name returns the collection name.
func (c *Collection[E]) Name() string { return c.cfg.Name }

// PerPage returns the page size.
func (c *Collection[E]) PerPage() int { return c.cfg.PerPage }

// Len returns the number of cached items.
func (c *Collection[E]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache.Items)
}

// FetchList loads one page, optionally filtered by search.
//
// On failure the error is recorded and the items cleared. An expired
// session is not returned (the guard already redirected); every other
// failure is. A response overtaken by a newer request is discarded.
func (c *Collection[E]) FetchList(ctx context.Context, page int, search string) error {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(c.cfg.PerPage))
	if search != "" {
		q.Set("search", search)
	}
	return c.fetch(ctx, page, search, q, c.cfg.PerPage)
}

func (c *Collection[E]) fetch(ctx context.Context, page int, search string, q url.Values, perPage int) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.cache.Loading = true
	c.cache.SearchTerm = search
	c.mu.Unlock()

	resp := &pageResponse[E]{listKey: c.cfg.ListKey}
	err := c.api.Get(ctx, c.cfg.Path+"?"+q.Encode(), resp)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.metrics.IncStale(c.cfg.Name)
		c.logger.Debug("discarding stale list response", "seq", seq, "latest", c.seq)
		return nil
	}
	c.cache.Loading = false

	if err != nil {
		c.cache.Items = nil
		c.cache.Error = err.Error()
		if connection.IsSessionExpired(err) {
			return nil
		}
		return fmt.Errorf("list %s: %w", c.cfg.Name, err)
	}

	items := resp.items
	if len(items) > perPage {
		items = items[:perPage]
	}
	c.cache.Items = items
	c.cache.Page, c.cache.TotalPages, c.cache.Total = resp.resolve(page, perPage)
	c.cache.Error = ""
	return nil
}

// FetchOne loads a single entity and selects it. All failures are returned.
func (c *Collection[E]) FetchOne(ctx context.Context, id domain.ID) (E, error) {
	var raw json.RawMessage
	if err := c.api.Get(ctx, c.itemPath(id), &raw); err != nil {
		var zero E
		return zero, fmt.Errorf("get %s %s: %w", c.cfg.Name, id, err)
	}
	e, ok := decodeEntity(raw, c.cfg.ID)
	if !ok {
		var zero E
		return zero, domain.ErrNotFound.WithDetails(fmt.Sprintf("%s %s", c.cfg.Name, id))
	}

	c.mu.Lock()
	c.cache.Selected = &e
	c.mu.Unlock()
	return e, nil
}

// Create posts body and prepends the created entity without refetching.
func (c *Collection[E]) Create(ctx context.Context, body any, opts ...connection.RequestOption) (E, error) {
	var raw json.RawMessage
	if err := c.api.Post(ctx, c.cfg.Path, body, &raw, opts...); err != nil {
		c.setError(err)
		var zero E
		return zero, fmt.Errorf("create %s: %w", c.cfg.Name, err)
	}

	e, ok := decodeEntity(raw, c.cfg.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	// The write succeeded, so the banner clears even if the echo is unusable.
	c.cache.Error = ""
	if !ok {
		c.logger.Warn("created entity not echoed by server, list not updated")
		return e, nil
	}
	c.prependLocked(e)
	return e, nil
}

func (c *Collection[E]) prependLocked(e E) {
	id := c.cfg.ID(e)
	items := make([]E, 0, len(c.cache.Items)+1)
	items = append(items, e)
	replaced := false
	for _, it := range c.cache.Items {
		if c.cfg.ID(it) == id {
			replaced = true
			continue
		}
		items = append(items, it)
	}
	if len(items) > c.cfg.PerPage {
		items = items[:c.cfg.PerPage]
	}
	c.cache.Items = items
	if !replaced {
		c.cache.Total++
	}
}

// Update puts body and replaces the entity in the list and selection.
func (c *Collection[E]) Update(ctx context.Context, id domain.ID, body any) (E, error) {
	return c.updateAt(ctx, c.itemPath(id), body)
}

func (c *Collection[E]) updateAt(ctx context.Context, path string, body any) (E, error) {
	var raw json.RawMessage
	if err := c.api.Put(ctx, path, body, &raw); err != nil {
		c.setError(err)
		var zero E
		return zero, fmt.Errorf("update %s: %w", c.cfg.Name, err)
	}

	e, ok := decodeEntity(raw, c.cfg.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Error = ""
	if ok {
		c.replaceLocked(e)
	}
	return e, nil
}

func (c *Collection[E]) replaceLocked(e E) {
	id := c.cfg.ID(e)
	for i, it := range c.cache.Items {
		if c.cfg.ID(it) == id {
			c.cache.Items[i] = e
		}
	}
	if c.cache.Selected != nil && c.cfg.ID(*c.cache.Selected) == id {
		sel := e
		c.cache.Selected = &sel
	}
}

// mutate applies fn to the cached entity with the given id, in the list
// and the selection.
func (c *Collection[E]) mutate(id domain.ID, fn func(*E)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.cache.Items {
		if c.cfg.ID(c.cache.Items[i]) == id {
			fn(&c.cache.Items[i])
		}
	}
	if c.cache.Selected != nil && c.cfg.ID(*c.cache.Selected) == id {
		sel := *c.cache.Selected
		fn(&sel)
		c.cache.Selected = &sel
	}
}

// Delete removes the entity on the server and then locally.
// A failure is recorded in Error and also returned.
func (c *Collection[E]) Delete(ctx context.Context, id domain.ID) error {
	if err := c.api.Delete(ctx, c.itemPath(id), nil); err != nil {
		c.setError(err)
		return fmt.Errorf("delete %s %s: %w", c.cfg.Name, id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.cache.Items[:0:0]
	removed := false
	for _, it := range c.cache.Items {
		if c.cfg.ID(it) == id {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	c.cache.Items = kept
	if removed && c.cache.Total > 0 {
		c.cache.Total--
	}
	if c.cache.Selected != nil && c.cfg.ID(*c.cache.Selected) == id {
		c.cache.Selected = nil
	}
	c.cache.Error = ""
	return nil
}

// SetSearchTerm records term and refetches page 1. Callers debounce.
func (c *Collection[E]) SetSearchTerm(ctx context.Context, term string) error {
	c.mu.Lock()
	c.cache.SearchTerm = term
	c.mu.Unlock()
	return c.FetchList(ctx, 1, term)
}

// SetPage records page and refetches it with the current search term.
// The page is sent as-is; the server's answer is trusted.
func (c *Collection[E]) SetPage(ctx context.Context, page int) error {
	c.mu.Lock()
	c.cache.Page = page
	search := c.cache.SearchTerm
	c.mu.Unlock()
	return c.FetchList(ctx, page, search)
}

// SetFilterStatus sets the status used by Filtered.
func (c *Collection[E]) SetFilterStatus(s domain.Status) {
	c.mu.Lock()
	c.cache.FilterStatus = s
	c.mu.Unlock()
}

// Filtered re-filters the cached items by search term and status without
// a round trip. Its length is not the server total.
func (c *Collection[E]) Filtered() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]E, 0, len(c.cache.Items))
	for _, it := range c.cache.Items {
		if c.cfg.Match == nil || c.cfg.Match(it, c.cache.SearchTerm, c.cache.FilterStatus) {
			out = append(out, it)
		}
	}
	return out
}

// ByStatus returns the cached page narrowed by the filter status only. The
// page already reflects the server-side search, which may match across
// fields in ways the local term match cannot.
func (c *Collection[E]) ByStatus() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]E, 0, len(c.cache.Items))
	for _, it := range c.cache.Items {
		if c.cfg.Match == nil || c.cfg.Match(it, "", c.cache.FilterStatus) {
			out = append(out, it)
		}
	}
	return out
}

// Snapshot returns a copy of the cache.
func (c *Collection[E]) Snapshot() Cache[E] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.cache
	s.Items = append([]E(nil), c.cache.Items...)
	if c.cache.Selected != nil {
		sel := *c.cache.Selected
		s.Selected = &sel
	}
	return s
}

// ClearError dismisses the error banner.
func (c *Collection[E]) ClearError() {
	c.mu.Lock()
	c.cache.Error = ""
	c.mu.Unlock()
}

func (c *Collection[E]) setError(err error) {
	c.mu.Lock()
	c.cache.Error = err.Error()
	c.mu.Unlock()
}

func (c *Collection[E]) itemPath(id domain.ID) string {
	return c.cfg.Path + "/" + url.PathEscape(id.String())
}
