package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gymone/gymadmin/internal/core/domain"
)

func TestMembers_Lookup(t *testing.T) {
	var calls atomic.Int32
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/qr/lookup" || r.URL.Query().Get("unique_id") != "AB12CD34" {
			t.Errorf("unexpected request %s", r.URL)
		}
		fmt.Fprintf(w, `{"data":{"user":%s,"valid":true,"membership_status":"active"}}`, memberJSON(4, "lee"))
	})
	m := NewMembers(f.deps, 0)
	ctx := context.Background()

	for _, bad := range []string{"AB12CD3", "AB12CD3!", "", "AB12CD345"} {
		if _, err := m.Lookup(ctx, bad); !errors.Is(err, domain.ErrInvalidMemberCode) {
			t.Errorf("Lookup(%q) error = %v, want ErrInvalidMemberCode", bad, err)
		}
	}
	if calls.Load() != 0 {
		t.Fatal("invalid codes reached the server")
	}

	res, err := m.Lookup(ctx, "AB12CD34")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !res.Valid || res.Member.FirstName != "lee" {
		t.Errorf("Lookup() = %+v", res)
	}
}

func TestMembers_GenerateQR(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			fmt.Fprintf(w, `[%s]`, memberJSON(5, "max"))
		case r.Method == http.MethodPost && r.URL.Path == "/qr/generate/5":
			w.Write([]byte(`{"user_id":5,"unique_id":"ZZ99YY88"}`))
		}
	})
	m := NewMembers(f.deps, 0)
	ctx := context.Background()
	m.FetchList(ctx, 1, "")

	info, err := m.GenerateQR(ctx, "5")
	if err != nil {
		t.Fatal(err)
	}
	if info.UniqueID != "ZZ99YY88" || info.UserID != "5" {
		t.Errorf("GenerateQR() = %+v", info)
	}
	if got := m.Snapshot().Items[0].UniqueID; got != "ZZ99YY88" {
		t.Errorf("cached unique_id = %q", got)
	}
}

func TestProducts_RecordSale(t *testing.T) {
	var (
		mu   sync.Mutex
		keys []string
	)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"data":[{"id":1,"name":"Water","category":"drinks","price":1.5,"stock":10},{"id":2,"name":"Bar","category":"food","price":2,"stock":4}]}`))
		case http.MethodPost:
			mu.Lock()
			keys = append(keys, r.Header.Get("Idempotency-Key"))
			mu.Unlock()
			var in domain.SaleInput
			json.NewDecoder(r.Body).Decode(&in)
			if r.URL.Path == "/products/1/sale" {
				fmt.Fprintf(w, `{"id":99,"product_id":1,"quantity":%d,"total_amount":4.5,"remaining_stock":7}`, in.Quantity)
				return
			}
			fmt.Fprintf(w, `{"id":100,"product_id":2,"quantity":%d}`, in.Quantity)
		}
	})
	p := NewProducts(f.deps, 0)
	ctx := context.Background()
	p.FetchList(ctx, 1, "")

	if _, err := p.RecordSale(ctx, "1", domain.SaleInput{Quantity: 3}); err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}
	if _, err := p.RecordSale(ctx, "2", domain.SaleInput{Quantity: 1}); err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	items := p.Snapshot().Items
	if items[0].Stock != 7 {
		t.Errorf("stock from server = %d, want 7", items[0].Stock)
	}
	if items[1].Stock != 3 {
		t.Errorf("stock decremented locally = %d, want 3", items[1].Stock)
	}
	if len(keys) != 2 || keys[0] == "" || keys[0] == keys[1] {
		t.Errorf("idempotency keys = %q", keys)
	}

	if _, err := p.RecordSale(ctx, "2", domain.SaleInput{Quantity: 5}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("oversell error = %v, want ErrValidation", err)
	}
	if len(keys) != 2 {
		t.Error("oversell reached the server")
	}
}

func TestProducts_Stats(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/stats/top-selling" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":[{"name":"Water","sold":12}]}`))
	})
	p := NewProducts(f.deps, 0)

	if _, err := p.Stats(context.Background(), "yearly"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown kind error = %v", err)
	}
	st, err := p.Stats(context.Background(), domain.ProductStatsTopSelling)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st["data"].([]any); !ok {
		t.Errorf("Stats() = %v, want list wrapped under data", st)
	}
}

func TestMemberships_UpdatePricing(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"memberships":[{"id":"m1","name":"Monthly","type":"monthly","price":30,"duration_days":30}]}`))
		case http.MethodPut:
			if r.URL.Path != "/memberships/m1/pricing" {
				t.Errorf("path = %s", r.URL.Path)
			}
			w.Write([]byte(`{"success":true}`))
		}
	})
	s := NewMemberships(f.deps, 0)
	ctx := context.Background()
	if err := s.FetchList(ctx, 1, ""); err != nil {
		t.Fatal(err)
	}

	if _, err := s.UpdatePricing(ctx, "m1", domain.PricingInput{Price: -1}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative price error = %v", err)
	}
	got, err := s.UpdatePricing(ctx, "m1", domain.PricingInput{Price: 35})
	if err != nil {
		t.Fatal(err)
	}
	if got.Price != 35 || s.Snapshot().Items[0].Price != 35 {
		t.Errorf("price not applied: got=%v cached=%v", got.Price, s.Snapshot().Items[0].Price)
	}
}

func TestEmail_FetchLogs(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("offset") != "20" || q.Get("limit") != "10" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":{"logs":[{"id":1,"recipient":"a@b.c","subject":"Hi","status":"sent"}],"total":35}}`))
	})
	e := NewEmail(f.deps, 0)

	if err := e.FetchLogs(context.Background(), 20, 10); err != nil {
		t.Fatal(err)
	}
	s := e.Logs.Snapshot()
	if s.Page != 3 || s.Total != 35 || s.TotalPages != 4 || len(s.Items) != 1 {
		t.Errorf("logs snapshot = %+v", s)
	}
}

func TestEmail_Send(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Idempotency-Key") == "" {
			t.Error("missing Idempotency-Key")
		}
		w.Write([]byte(`{"sent":2,"failed":0}`))
	})
	e := NewEmail(f.deps, 0)
	ctx := context.Background()

	if _, err := e.Send(ctx, domain.EmailRequest{To: []string{"a@b.c"}}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing content error = %v", err)
	}
	res, err := e.BulkByCategory(ctx, domain.CategoryEmailRequest{Category: domain.RecipientsExpiring, TemplateID: "renewal"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent != 2 {
		t.Errorf("Sent = %d", res.Sent)
	}
}

func TestEmail_PreloadRecipients(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" || r.URL.Query().Get("limit") != "100" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Write([]byte(`[]`))
	})
	if err := NewEmail(f.deps, 0).PreloadRecipients(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestPageResponse_Shapes(t *testing.T) {
	tests := []struct {
		name                string
		body                string
		wantItems           int
		wantPage, wantPages int
		wantTotal           int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2, 1, 1, 2},
		{"flat", `{"data":[{"id":1}],"total":41,"page":2,"totalPages":3}`, 1, 2, 3, 41},
		{"snake case", `{"data":[{"id":1}],"total_count":"41","current_page":2,"total_pages":3}`, 1, 2, 3, 41},
		{"nested", `{"data":{"users":[{"id":1}],"pagination":{"total":25,"page":1}}}`, 1, 1, 2, 25},
		{"list key meta", `{"users":[{"id":1},{"id":2}],"meta":{"total":2}}`, 2, 1, 1, 2},
		{"empty", `{"data":null}`, 0, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &pageResponse[domain.Member]{listKey: "users"}
			if err := json.Unmarshal([]byte(tt.body), p); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			page, pages, total := p.resolve(1, 20)
			if len(p.items) != tt.wantItems || page != tt.wantPage || pages != tt.wantPages || total != tt.wantTotal {
				t.Errorf("items=%d page=%d pages=%d total=%d", len(p.items), page, pages, total)
			}
		})
	}
}

func TestSet_Sizers(t *testing.T) {
	s := NewSet(Deps{}, PageSizes{})
	if len(s.Sizers()) != 5 {
		t.Errorf("Sizers() = %d", len(s.Sizers()))
	}
	if s.Members.PerPage() != MembersPerPage || s.Email.Recipients.PerPage() != RecipientsPerPage {
		t.Error("default page sizes not applied")
	}
}
