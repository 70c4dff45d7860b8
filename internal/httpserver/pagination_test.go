package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type testNamedItem string

func (t testNamedItem) ItemName() string { return string(t) }

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantKey   string
		wantFrom  string
		wantSize  int
	}{
		{"defaults", "", "", "", DefaultPageSize},
		{"custom size", "size=10", "", "", 10},
		{"size capped at max", "size=500", "", "", MaxPageSize},
		{"key and from", "key=order&from=order_01", "order", "order_01", DefaultPageSize},
		{"non-numeric size ignored", "size=abc", "", "", DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			p := ParseListParams(r)
			if p.KeyPrefix != tt.wantKey {
				t.Errorf("KeyPrefix = %q, want %q", p.KeyPrefix, tt.wantKey)
			}
			if p.From != tt.wantFrom {
				t.Errorf("From = %q, want %q", p.From, tt.wantFrom)
			}
			if p.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", p.Size, tt.wantSize)
			}
		})
	}
}

// TestPaginateThreePageWalk walks a five-item list with page size 2 to
// exhaustion, checking cursor continuity across all three pages.
func TestPaginateThreePageWalk(t *testing.T) {
	items := []testNamedItem{"config_01", "config_02", "config_03", "config_04", "config_05"}

	page1 := Paginate(items, ListParams{Size: 2})
	assertNames(t, page1.Items, "config_01", "config_02")
	if !page1.HasMore || page1.NextCursor == nil || *page1.NextCursor != "config_02" {
		t.Fatalf("page1 = %+v, want has_more with cursor config_02", page1)
	}

	page2 := Paginate(items, ListParams{From: "config_02", Size: 2})
	assertNames(t, page2.Items, "config_03", "config_04")
	if !page2.HasMore || page2.NextCursor == nil || *page2.NextCursor != "config_04" {
		t.Fatalf("page2 = %+v, want has_more with cursor config_04", page2)
	}

	page3 := Paginate(items, ListParams{From: "config_04", Size: 2})
	assertNames(t, page3.Items, "config_05")
	if page3.HasMore || page3.NextCursor != nil {
		t.Fatalf("page3 = %+v, want has_more=false and no cursor", page3)
	}
}

func TestPaginateKeyPrefixFilter(t *testing.T) {
	items := []testNamedItem{"orders-a", "orders-b", "tickets-a"}
	page := Paginate(items, ListParams{KeyPrefix: "orders", Size: 10})
	assertNames(t, page.Items, "orders-a", "orders-b")
}

func TestPaginateSortsByNameAscending(t *testing.T) {
	items := []testNamedItem{"b", "a", "c"}
	page := Paginate(items, ListParams{Size: 10})
	assertNames(t, page.Items, "a", "b", "c")
}

func assertNames(t *testing.T, items []testNamedItem, want ...string) {
	t.Helper()
	if len(items) != len(want) {
		t.Fatalf("got %d items %v, want %v", len(items), items, want)
	}
	for i, w := range want {
		if string(items[i]) != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i], w)
		}
	}
}
