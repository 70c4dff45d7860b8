// Package httpserver holds the transport-layer plumbing shared by every
// handler: the JSON response envelope, name-cursor pagination, and request
// decoding/validation, kept separate from internal/api so the handlers
// themselves stay thin.
package httpserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// DefaultPageSize and MaxPageSize bound the `size` query parameter for
// GET /v1/config/list.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// ListParams holds the parsed query parameters for a config list request.
type ListParams struct {
	KeyPrefix string
	From      string
	Size      int
}

// ParseListParams extracts key/from/size from the request's query string.
func ParseListParams(r *http.Request) ListParams {
	q := r.URL.Query()
	p := ListParams{
		KeyPrefix: q.Get("key"),
		From:      q.Get("from"),
		Size:      DefaultPageSize,
	}
	if v := q.Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Size = n
		}
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// NamedItem is implemented by every config DTO so the generic pagination
// helper below can sort and filter on name without knowing the concrete
// config type.
type NamedItem interface {
	ItemName() string
}

// Page is the response envelope for a paginated config list,:
// sorted by name ascending, with an optional next_cursor carrying the last
// item's name whenever more remain.
type Page[T NamedItem] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// Paginate applies the full list algorithm to an unsorted slice of
// items: sort by name, filter to names > from and starting with key, then
// cap to size+1 to detect a further page.
func Paginate[T NamedItem](items []T, p ListParams) Page[T] {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ItemName() < sorted[j].ItemName() })

	filtered := sorted[:0:0]
	for _, it := range sorted {
		name := it.ItemName()
		if p.From != "" && name <= p.From {
			continue
		}
		if p.KeyPrefix != "" && !strings.HasPrefix(name, p.KeyPrefix) {
			continue
		}
		filtered = append(filtered, it)
	}

	hasMore := len(filtered) > p.Size
	if hasMore {
		filtered = filtered[:p.Size]
	}

	page := Page[T]{Items: filtered, HasMore: hasMore}
	if hasMore && len(filtered) > 0 {
		cursor := filtered[len(filtered)-1].ItemName()
		page.NextCursor = &cursor
	}
	return page
}
