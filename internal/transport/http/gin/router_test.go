package httpgin_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/showtix/showtix-go/internal/domain"
	"github.com/showtix/showtix-go/internal/repository/memory"
	"github.com/showtix/showtix-go/internal/service"
	"github.com/showtix/showtix-go/internal/service/auth"
	"github.com/showtix/showtix-go/internal/service/catalog"
	httpgin "github.com/showtix/showtix-go/internal/transport/http/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	svcs   *service.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	svcs := service.NewServices(store, store, store, store, store, nil, nil, service.Config{
		Auth: auth.Config{
			Secret:     "test-secret",
			SessionTTL: time.Hour,
			BcryptCost: 4,
		},
		Catalog: catalog.Config{},
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testServer{
		router: httpgin.NewRouter(svcs, logger),
		store:  store,
		svcs:   svcs,
	}
}

func (ts *testServer) seedShow(title string, totalSeats int, date time.Time) int64 {
	venueID := ts.store.AddVenue(domain.Venue{Name: "Test Hall"})
	return ts.store.AddShow(domain.Show{
		VenueID:    venueID,
		Title:      title,
		Date:       date,
		PriceCents: 1599,
		TotalSeats: totalSeats,
	})
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) register(t *testing.T, username string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/register", "", gin.H{
		"username":         username,
		"password":         "s3cret",
		"password_confirm": "s3cret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestBookAndCancelFlow(t *testing.T) {
	ts := newTestServer(t)
	showID := ts.seedShow("Opening Night", 100, time.Now().Add(24*time.Hour))
	token := ts.register(t, "alice")

	// book 30 of 100
	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/book/%d", showID), token, gin.H{"number_of_tickets": 30})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	booked := decodeJSON[struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}](t, rec)
	assert.Equal(t, "PENDING", booked.Status)

	// availability reflects it
	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/shows/%d", showID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	show := decodeJSON[struct {
		AvailableSeats int `json:"available_seats"`
	}](t, rec)
	assert.Equal(t, 70, show.AvailableSeats)

	// cancel releases the seats
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/bookings/%d/cancel", booked.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// cancelling again is a silent no-op
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/bookings/%d/cancel", booked.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/shows/%d", showID), "", nil)
	show = decodeJSON[struct {
		AvailableSeats int `json:"available_seats"`
	}](t, rec)
	assert.Equal(t, 100, show.AvailableSeats)
}

func TestBookOverCapacity(t *testing.T) {
	ts := newTestServer(t)
	showID := ts.seedShow("Opening Night", 50, time.Now().Add(24*time.Hour))
	token := ts.register(t, "alice")

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/book/%d", showID), token, gin.H{"number_of_tickets": 51})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// counter untouched by the failed attempt
	show, ok := ts.store.GetShowCopy(showID)
	require.True(t, ok)
	assert.Equal(t, 50, show.AvailableSeats())
}

func TestBookValidation(t *testing.T) {
	ts := newTestServer(t)
	showID := ts.seedShow("Opening Night", 50, time.Now().Add(24*time.Hour))
	token := ts.register(t, "alice")

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/book/%d", showID), token, gin.H{"number_of_tickets": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/book/999", token, gin.H{"number_of_tickets": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/book/abc", token, gin.H{"number_of_tickets": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookRequiresAuth(t *testing.T) {
	ts := newTestServer(t)
	showID := ts.seedShow("Opening Night", 50, time.Now().Add(24*time.Hour))

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/book/%d", showID), "", gin.H{"number_of_tickets": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRatingGatedByAttendance(t *testing.T) {
	ts := newTestServer(t)
	showID := ts.seedShow("Opening Night", 50, time.Now().Add(-time.Hour))
	token := ts.register(t, "alice")

	// not attended: forbidden
	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/rate/%d", showID), token, gin.H{"rating": 4})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// book, then flip the booking COMPLETED through the admin route
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/book/%d", showID), token, gin.H{"number_of_tickets": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	booked := decodeJSON[struct {
		ID int64 `json:"id"`
	}](t, rec)

	adminToken := ts.register(t, "root")
	adminUser, err := ts.store.GetUserByUsername(t.Context(), "root")
	require.NoError(t, err)
	ts.store.SetAdmin(adminUser.ID, true)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/admin/bookings/%d/complete", booked.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// attended: rating goes through
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/rate/%d", showID), token, gin.H{"rating": 4, "comment": "good"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// but only once
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/rate/%d", showID), token, gin.H{"rating": 5})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// out-of-range value
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/rate/%d", showID), token, gin.H{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRouteForbiddenForRegularUser(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice")

	rec := ts.do(t, http.MethodPost, "/admin/bookings/1/complete", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/admin/bookings/1/complete", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	// mismatched passwords
	rec := ts.do(t, http.MethodPost, "/register", "", gin.H{
		"username":         "alice",
		"password":         "one",
		"password_confirm": "two",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// duplicate username
	ts.register(t, "alice")
	rec = ts.do(t, http.MethodPost, "/register", "", gin.H{
		"username":         "alice",
		"password":         "s3cret",
		"password_confirm": "s3cret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginAndLogout(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	// wrong password and unknown user fail the same way
	rec := ts.do(t, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(t, http.MethodPost, "/login", "", gin.H{"username": "nobody", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeJSON[struct {
		Token string `json:"token"`
	}](t, rec)

	rec = ts.do(t, http.MethodGet, "/bookings", session.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/logout", session.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// the revoked token no longer authenticates
	rec = ts.do(t, http.MethodGet, "/bookings", session.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalogListing(t *testing.T) {
	ts := newTestServer(t)
	ts.seedShow("Opening Night", 50, time.Now().Add(24*time.Hour))

	for _, path := range []string{"/", "/shows"} {
		rec := ts.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		shows := decodeJSON[[]struct {
			Title         string   `json:"title"`
			AverageRating *float64 `json:"average_rating"`
		}](t, rec)
		require.Len(t, shows, 1)
		assert.Equal(t, "Opening Night", shows[0].Title)
		assert.Nil(t, shows[0].AverageRating)
	}
}

func TestCatalogETag(t *testing.T) {
	ts := newTestServer(t)
	ts.seedShow("Opening Night", 50, time.Now().Add(24*time.Hour))

	rec := ts.do(t, http.MethodGet, "/shows", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/shows", nil)
	req.Header.Set("If-None-Match", etag)
	rec2 := httptest.NewRecorder()
	ts.router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusNotModified, rec2.Code)
}

func TestBookingHistory(t *testing.T) {
	ts := newTestServer(t)
	showID := ts.seedShow("Opening Night", 50, time.Now().Add(24*time.Hour))
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")

	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/book/%d", showID), alice, gin.H{"number_of_tickets": 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/book/%d", showID), bob, gin.H{"number_of_tickets": 3})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/bookings", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeJSON[[]struct {
		Tickets   int    `json:"tickets"`
		ShowTitle string `json:"show_title"`
	}](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].Tickets)
	assert.Equal(t, "Opening Night", history[0].ShowTitle)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
