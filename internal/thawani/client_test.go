package thawani

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout/session" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("thawani-api-key"); got != "sk_test" {
			t.Errorf("api key header = %q", got)
		}
		var req SessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Mode != "payment" {
			t.Errorf("mode = %q, want payment", req.Mode)
		}
		if req.ClientReferenceID != "ref-1" {
			t.Errorf("client_reference_id = %q", req.ClientReferenceID)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"session_id": "sess_123"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", "pk_test", "https://checkout.example")
	id, err := c.CreateSession(context.Background(), SessionRequest{
		ClientReferenceID: "ref-1",
		Products:          []LineItem{{Name: "oud", Quantity: 1, UnitAmount: 2500}},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if id != "sess_123" {
		t.Errorf("session id = %q", id)
	}
}

func TestCreateSessionMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "p", "u")
	if _, err := c.CreateSession(context.Background(), SessionRequest{ClientReferenceID: "x"}); err != ErrNoSession {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestListAndGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/checkout/session/":
			if r.URL.Query().Get("limit") != "20" {
				t.Errorf("limit = %q", r.URL.Query().Get("limit"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{
					{"session_id": "sess_a", "client_reference_id": "ref-a"},
					{"session_id": "sess_b", "client_reference_id": "ref-b"},
				},
			})
		case "/checkout/session/sess_b":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"session_id":          "sess_b",
					"client_reference_id": "ref-b",
					"payment_status":      "paid",
					"total_amount":        12500,
					"metadata":            map[string]string{"customer_name": "Salim"},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "p", "u")
	list, err := c.ListSessions(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 2 || list[1].ClientReferenceID != "ref-b" {
		t.Fatalf("unexpected list: %+v", list)
	}

	sess, err := c.GetSession(context.Background(), "sess_b")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess.PaymentStatus != StatusPaid || sess.TotalAmount != 12500 {
		t.Errorf("unexpected session: %+v", sess)
	}
	if sess.Metadata["customer_name"] != "Salim" {
		t.Errorf("metadata = %+v", sess.Metadata)
	}
}

func TestUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "p", "u")
	if _, err := c.GetSession(context.Background(), "sess_x"); err == nil {
		t.Fatal("want error on 502")
	}
}

func TestPaymentLink(t *testing.T) {
	c := NewClient("https://api", "k", "pk_live", "https://checkout.thawani.om")
	want := "https://checkout.thawani.om/pay/sess_1?key=pk_live"
	if got := c.PaymentLink("sess_1"); got != want {
		t.Errorf("PaymentLink = %q, want %q", got, want)
	}
}
