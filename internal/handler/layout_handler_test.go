package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/gateway"
	"github.com/blues/dps/internal/model"
	"github.com/gin-gonic/gin"
)

// stubStore 单会话凭证存储
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

func newLayoutRouter(srv *httptest.Server, store gateway.CredentialStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := backend.NewClient(gateway.New(srv.URL, 5*time.Second, store))
	h := NewLayoutHandler(client)

	r := gin.New()
	r.GET("/api/campaigns/:id/page-layout", h.GetPageLayout)
	r.PUT("/api/campaigns/:id/page-layout", h.PutPageLayout)
	return r
}

func sessionStore() *stubStore {
	return &stubStore{record: &model.CredentialSessionModel{Id: "s1", AccessToken: "tok-1", RefreshToken: "ref-1"}}
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "s1"})
	return req
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestGetPageLayout_RequiresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called without a session")
	}))
	defer srv.Close()

	r := newLayoutRouter(srv, sessionStore())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/campaigns/c1/page-layout", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Success {
		t.Error("expected failure envelope")
	}
}

func TestGetPageLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("expected session token, got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"page_layout":[{"id":"h-1","type":"hero"}]}`))
	}))
	defer srv.Close()

	r := newLayoutRouter(srv, sessionStore())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/api/campaigns/c1/page-layout", nil)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Fatalf("expected success envelope: %+v", resp)
	}
	if !strings.Contains(w.Body.String(), `"h-1"`) {
		t.Errorf("missing blocks in response: %s", w.Body.String())
	}
}

func TestGetPageLayout_NullLayoutYieldsEmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page_layout":null}`))
	}))
	defer srv.Close()

	r := newLayoutRouter(srv, sessionStore())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/api/campaigns/c1/page-layout", nil)))

	if !strings.Contains(w.Body.String(), `"blocks":[]`) {
		t.Errorf("null layout must serialize as an empty array: %s", w.Body.String())
	}
}

func TestPutPageLayout_RejectsInvalidLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid layout must not reach the backend")
	}))
	defer srv.Close()

	r := newLayoutRouter(srv, sessionStore())
	body := `{"blocks":[{"id":"b-1","type":"carousel"}]}`
	w := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodPut, "/api/campaigns/c1/page-layout", strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if !strings.Contains(resp.Message, "type must be one of") {
		t.Errorf("expected validator message, got %q", resp.Message)
	}
}

func TestPutPageLayout_ForwardsEnvelope(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	r := newLayoutRouter(srv, sessionStore())
	body := `{"blocks":[{"id":"h-1","type":"hero","props":{"title":"Hi"}}]}`
	w := httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodPut, "/api/campaigns/c1/page-layout", strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(string(gotBody), `"page_layout":{"blocks":`) {
		t.Errorf("upstream write must use the envelope form: %s", gotBody)
	}
	if !strings.Contains(string(gotBody), `"title":"Hi"`) {
		t.Errorf("props must survive the round trip: %s", gotBody)
	}
}

func TestLayoutEndpoints_SessionExpiry(t *testing.T) {
	// 后端对一切请求与刷新都返回401：网关宣告会话过期，处理器转401并清cookie
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := sessionStore()
	r := newLayoutRouter(srv, store)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/api/campaigns/c1/page-layout", nil)))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if store.record != nil {
		t.Error("expired session must be cleared from the store")
	}

	cookieCleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName && c.MaxAge < 0 {
			cookieCleared = true
		}
	}
	if !cookieCleared {
		t.Error("expired session must clear the session cookie")
	}
}
