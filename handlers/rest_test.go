package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestEmoteHandlerList(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		status    int
		code      string
		wantLimit int
	}{
		{"default limit", "", http.StatusOK, "", models.DefaultFetchLimit},
		{"explicit limit", "?limit=7", http.StatusOK, "", 7},
		{"not a number", "?limit=abc", http.StatusBadRequest, pkg.CodeFetchInvalidLimit, 0},
		{"out of range", "?limit=500", http.StatusBadRequest, pkg.CodeFetchInvalidLimit, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emotes := &fakeEmotes{}
			h := NewEmoteHandler(emotes)

			rec := httptest.NewRecorder()
			h.List(rec, httptest.NewRequest(http.MethodGet, "/api/emotes"+tt.query, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if env.Error != tt.code {
				t.Errorf("error = %q, want %q", env.Error, tt.code)
			}
			if emotes.gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", emotes.gotLimit, tt.wantLimit)
			}
		})
	}
}

type fakeProfiles struct {
	users map[string]*models.User
}

func (f *fakeProfiles) Get(_ context.Context, subject string) (*models.User, error) {
	u, ok := f.users[subject]
	if !ok {
		return nil, pkg.Coded(pkg.CodeProfileNotFound, pkg.ErrNotFound, nil)
	}
	return u, nil
}

func (f *fakeProfiles) Update(_ context.Context, subject string, req models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, pkg.Coded(pkg.CodeProfileInvalid, pkg.ErrBadRequest, err)
	}
	u := &models.User{ID: "u-" + subject, Subject: subject, UserName: req.UserName, AvatarURL: req.AvatarURL}
	f.users[subject] = u
	return u, nil
}

func withSubject(r *http.Request, subject string) *http.Request {
	claims := &models.IdentityClaims{}
	claims.Subject = subject
	return r.WithContext(WithClaims(r.Context(), claims))
}

func TestProfileHandler(t *testing.T) {
	profiles := &fakeProfiles{users: map[string]*models.User{}}
	h := NewProfileHandler(profiles)

	rec := httptest.NewRecorder()
	h.Me(rec, withSubject(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), "alice"))
	if rec.Code != http.StatusNotFound || decodeEnvelope(t, rec).Error != pkg.CodeProfileNotFound {
		t.Fatalf("missing profile: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"user_name":"  Alice  "}`)
	h.Update(rec, withSubject(httptest.NewRequest(http.MethodPut, "/api/users/me", body), "alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Me(rec, withSubject(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), "alice"))
	env := decodeEnvelope(t, rec)
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.UserName != "Alice" || user.ID != "u-alice" {
		t.Errorf("user = %+v", user)
	}

	rec = httptest.NewRecorder()
	h.Update(rec, withSubject(httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{`)), "alice"))
	if rec.Code != http.StatusBadRequest || decodeEnvelope(t, rec).Error != pkg.CodeProfileInvalid {
		t.Errorf("bad body: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no claims: status = %d", rec.Code)
	}
}

type fixedCounter int

func (c fixedCounter) ConnectionCount() int { return int(c) }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(fixedCounter(3)).Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var got HealthResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "ok" || got.Connections != 3 {
		t.Errorf("health = %+v", got)
	}
}
