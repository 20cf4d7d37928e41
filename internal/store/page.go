package store

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/gymone/gymadmin/internal/core/domain"
)

// pageResponse decodes the list shapes the backend emits:
//
//	[...]
//	{"data": [...], "total": 40, "page": 2, "totalPages": 2}
//	{"data": {"users": [...], "pagination": {...}}}
//	{"users": [...], "meta": {...}}
type pageResponse[E any] struct {
	listKey string

	items      []E
	total      int
	page       int
	totalPages int
	hasTotal   bool
	hasPage    bool
	hasPages   bool
}

// DecodesEnvelope makes the HTTP client hand over the whole body.
func (*pageResponse[E]) DecodesEnvelope() {}

func (p *pageResponse[E]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &p.items)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}

	p.readMeta(obj)
	for _, k := range []string{"pagination", "meta"} {
		var m map[string]json.RawMessage
		if raw, ok := obj[k]; ok && json.Unmarshal(raw, &m) == nil {
			p.readMeta(m)
		}
	}

	for _, k := range []string{"data", p.listKey, "items", "results"} {
		raw, ok := obj[k]
		if k == "" || !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '[':
			return json.Unmarshal(raw, &p.items)
		case '{':
			return p.UnmarshalJSON(raw)
		}
	}
	return nil
}

func (p *pageResponse[E]) readMeta(m map[string]json.RawMessage) {
	if n, ok := firstInt(m, "total", "total_count", "totalCount"); ok {
		p.total, p.hasTotal = n, true
	}
	if n, ok := firstInt(m, "page", "current_page", "currentPage"); ok {
		p.page, p.hasPage = n, true
	}
	if n, ok := firstInt(m, "totalPages", "total_pages", "pages", "last_page"); ok {
		p.totalPages, p.hasPages = n, true
	}
}

func firstInt(m map[string]json.RawMessage, keys ...string) (int, bool) {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			if i, err := n.Int64(); err == nil {
				return int(i), true
			}
			if f, err := n.Float64(); err == nil {
				return int(f), true
			}
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if i, err := strconv.Atoi(s); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

// resolve fills pagination the server left out.
func (p *pageResponse[E]) resolve(requestedPage, perPage int) (page, totalPages, total int) {
	total = len(p.items)
	if p.hasTotal {
		total = p.total
	}
	page = requestedPage
	if p.hasPage {
		page = p.page
	}
	switch {
	case p.hasPages:
		totalPages = p.totalPages
	case perPage > 0:
		totalPages = (total + perPage - 1) / perPage
	}
	if totalPages < 1 {
		totalPages = 1
	}
	return page, totalPages, total
}

// decodeEntity decodes a single entity, also accepting one wrapped in a
// single-key object such as {"user": {...}}.
func decodeEntity[E any](raw json.RawMessage, id func(E) domain.ID) (E, bool) {
	var e E
	if len(bytes.TrimSpace(raw)) == 0 {
		return e, false
	}
	if json.Unmarshal(raw, &e) == nil && !id(e).IsZero() {
		return e, true
	}
	var wrapper map[string]json.RawMessage
	if json.Unmarshal(raw, &wrapper) == nil && len(wrapper) == 1 {
		for _, inner := range wrapper {
			var w E
			if json.Unmarshal(inner, &w) == nil && !id(w).IsZero() {
				return w, true
			}
		}
	}
	return e, false
}
