package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blues/dps/internal/gateway"
	"github.com/blues/dps/internal/layout"
	"github.com/blues/dps/internal/model"
)

// stubStore 最小凭证存储，会话测试只需要一条固定记录
type stubStore struct {
	record *model.CredentialSessionModel
}

func (s *stubStore) Get(sessionID string) (*model.CredentialSessionModel, error) {
	if s.record == nil || s.record.Id != sessionID {
		return nil, errors.New("session not found")
	}
	copied := *s.record
	return &copied, nil
}

func (s *stubStore) SetAccessToken(sessionID, accessToken string) error {
	s.record.AccessToken = accessToken
	return nil
}

func (s *stubStore) Clear(sessionID string) error {
	s.record = nil
	return nil
}

func newTestClient(srv *httptest.Server, store gateway.CredentialStore) *Client {
	if store == nil {
		store = &stubStore{}
	}
	return NewClient(gateway.New(srv.URL, 5*time.Second, store))
}

func TestCreateCheckout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotReq CheckoutRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/donations/checkout" || r.Method != http.MethodPost {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &gotReq)
			w.Write([]byte(`{"clientSecret":"sec_1","donation_id":"d1"}`))
		}))
		defer srv.Close()

		session, err := newTestClient(srv, nil).CreateCheckout(context.Background(), CheckoutRequest{
			CampaignID: "c1",
			Amount:     25,
			DonorEmail: "donor@example.com",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.ClientSecret != "sec_1" || session.DonationID != "d1" {
			t.Errorf("unexpected session: %+v", session)
		}
		if gotReq.CampaignID != "c1" || gotReq.Amount != 25 {
			t.Errorf("unexpected request payload: %+v", gotReq)
		}
	})

	t.Run("error field in 200 body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"Minimum donation is $1"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv, nil).CreateCheckout(context.Background(), CheckoutRequest{CampaignID: "c1", Amount: 0.5})
		if err == nil || err.Error() != "Minimum donation is $1" {
			t.Errorf("expected verbatim backend error, got %v", err)
		}
	})

	t.Run("missing client secret", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"donation_id":"d1"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv, nil).CreateCheckout(context.Background(), CheckoutRequest{CampaignID: "c1", Amount: 25})
		if err == nil || err.Error() != "Checkout failed" {
			t.Errorf("expected generic checkout failure, got %v", err)
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Campaign is not active"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv, nil).CreateCheckout(context.Background(), CheckoutRequest{CampaignID: "c1", Amount: 25})
		if err == nil || err.Error() != "Campaign is not active" {
			t.Errorf("expected structured error message, got %v", err)
		}
	})
}

func TestGetDonation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/donations/d1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"d1","campaign_id":"c1","status":"succeeded","amount_cents":2500,"currency":"usd"}`))
	}))
	defer srv.Close()

	donation, err := newTestClient(srv, nil).GetDonation(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if donation.Status != "succeeded" || donation.AmountCents != 2500 {
		t.Errorf("unexpected donation: %+v", donation)
	}
}

func TestPublicCampaign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/campaigns/c1/public":
			w.Write([]byte(`{"id":"c1","title":"Save the bees","goal":10000,"total_raised":2500,"page_layout":[{"id":"h-1","type":"hero"}]}`))
		case "/api/public/acme/bees":
			w.Write([]byte(`{"id":"c1","title":"Save the bees"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Campaign not found"}`))
		}
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)

	t.Run("by id with bare-array layout", func(t *testing.T) {
		campaign, err := client.PublicCampaign(context.Background(), "c1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if campaign.Title != "Save the bees" {
			t.Errorf("unexpected campaign: %+v", campaign)
		}
		blocks := campaign.Blocks()
		if len(blocks) != 1 || blocks[0].ID != "h-1" {
			t.Errorf("expected stored layout, got %+v", blocks)
		}
	})

	t.Run("by slug", func(t *testing.T) {
		campaign, err := client.PublicCampaignBySlug(context.Background(), "acme", "bees")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if campaign.ID != "c1" {
			t.Errorf("unexpected campaign: %+v", campaign)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := client.PublicCampaign(context.Background(), "missing")
		if err == nil || err.Error() != "Campaign not found" {
			t.Errorf("expected backend error, got %v", err)
		}
	})
}

func TestCampaignMedia(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id":"1","url":"https://cdn.example.com/a.jpg"}]`))
		}))
		defer srv.Close()

		media, err := newTestClient(srv, nil).CampaignMedia(context.Background(), "c1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(media) != 1 || media[0].URL != "https://cdn.example.com/a.jpg" {
			t.Errorf("unexpected media: %+v", media)
		}
	})

	t.Run("non-array body degrades to empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"media":[]}`))
		}))
		defer srv.Close()

		media, err := newTestClient(srv, nil).CampaignMedia(context.Background(), "c1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if media != nil {
			t.Errorf("expected empty media, got %+v", media)
		}
	})
}

func TestPageLayout(t *testing.T) {
	store := &stubStore{record: &model.CredentialSessionModel{Id: "s1", AccessToken: "tok-1", RefreshToken: "ref-1"}}

	t.Run("envelope form", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("expected session token, got %q", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`{"page_layout":{"blocks":[{"id":"h-1","type":"hero"}]}}`))
		}))
		defer srv.Close()

		doc, err := newTestClient(srv, store).PageLayout(context.Background(), "s1", "c1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(doc.Blocks) != 1 || doc.Blocks[0].ID != "h-1" {
			t.Errorf("unexpected document: %+v", doc)
		}
	})

	t.Run("bare array form", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"page_layout":[{"id":"h-1","type":"hero"}]}`))
		}))
		defer srv.Close()

		doc, err := newTestClient(srv, store).PageLayout(context.Background(), "s1", "c1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(doc.Blocks) != 1 {
			t.Errorf("unexpected document: %+v", doc)
		}
	})

	t.Run("null layout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"page_layout":null}`))
		}))
		defer srv.Close()

		doc, err := newTestClient(srv, store).PageLayout(context.Background(), "s1", "c1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(doc.Blocks) != 0 {
			t.Errorf("expected empty document, got %+v", doc)
		}
	})
}

func TestPutPageLayout_WritesEnvelopeForm(t *testing.T) {
	store := &stubStore{record: &model.CredentialSessionModel{Id: "s1", AccessToken: "tok-1", RefreshToken: "ref-1"}}

	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	doc := &layout.Document{Blocks: []layout.Block{{ID: "h-1", Type: layout.BlockTypeHero}}}
	if err := newTestClient(srv, store).PutPageLayout(context.Background(), "s1", "c1", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		PageLayout struct {
			Blocks []layout.Block `json:"blocks"`
		} `json:"page_layout"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload must be the envelope form: %v (%s)", err, gotBody)
	}
	if len(payload.PageLayout.Blocks) != 1 || payload.PageLayout.Blocks[0].ID != "h-1" {
		t.Errorf("unexpected payload: %s", gotBody)
	}
}

func TestProfile(t *testing.T) {
	store := &stubStore{record: &model.CredentialSessionModel{Id: "s1", AccessToken: "tok-1", RefreshToken: "ref-1"}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("expected session token, got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"email":"org@example.com","name":"Acme"}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv, store).Profile(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var profile struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Email != "org@example.com" {
		t.Errorf("unexpected profile: %s", raw)
	}

	t.Run("backend error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"Forbidden"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv, store).Profile(context.Background(), "s1")
		if err == nil || err.Error() != "Forbidden" {
			t.Errorf("expected backend error, got %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &creds)
		if creds["email"] != "org@example.com" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"access_token":"tok-1","refresh_token":"ref-1","user":{"email":"org@example.com"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)

	result, err := client.Login(context.Background(), "org@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AccessToken != "tok-1" || result.RefreshToken != "ref-1" {
		t.Errorf("unexpected result: %+v", result)
	}

	t.Run("bad credentials", func(t *testing.T) {
		_, err := client.Login(context.Background(), "other@example.com", "nope")
		if err == nil || err.Error() != "Invalid credentials" {
			t.Errorf("expected backend error, got %v", err)
		}
	})
}
