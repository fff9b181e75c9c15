package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urcet/yourfest-api/internal/config"
	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/notification"
	"github.com/urcet/yourfest-api/internal/pkg/mailer"
	"github.com/urcet/yourfest-api/internal/pkg/ticketqr"
	"github.com/urcet/yourfest-api/internal/repository/dao/memdao"
	"github.com/urcet/yourfest-api/internal/service"
)

const (
	testSigningKey = "test-signing-key"
	testPassword   = "s3cret-pass"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	return newTestServerWithHooks(t, service.IssueHooks{})
}

func newTestServerWithHooks(t *testing.T, hooks service.IssueHooks) *Server {
	t.Helper()

	hash, err := service.HashPassword(testPassword)
	require.NoError(t, err)

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:   "test",
			BaseURL:       "localhost:8080",
			JWTSigningKey: testSigningKey,
		},
		Gin:     &config.GinConfig{Mode: "test"},
		Storage: &config.StorageConfig{Driver: config.StorageDriverMemory},
		Ticket:  &config.TicketConfig{Prefix: "YF26", AppURL: "https://fest.example.edu"},
		Admin: &config.AdminConfig{
			Username:     "admin",
			PasswordHash: hash,
			TokenTTL:     time.Hour,
		},
	}

	encoder, err := ticketqr.NewGenerator(conf.Ticket.AppURL, ticketqr.Options{
		Size:       128,
		Foreground: "#000000",
		Background: "#ffffff",
	})
	require.NoError(t, err)

	store := memdao.New()
	s := NewServer(conf, Deps{
		CatalogDAO:      store,
		RegistrationDAO: store,
		Encoder:         encoder,
		Hooks:           hooks,
	})

	_, err = s.CatalogService.Seed(context.Background())
	require.NoError(t, err)

	return s
}

func doRequest(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	return rec
}

func registrationBody(eventIDs ...string) map[string]any {
	return map[string]any{
		"participantName":   "Asha Rao",
		"email":             "asha@example.com",
		"phone":             "9876543210",
		"rollNumber":        "21CS001",
		"participantBranch": "CSE",
		"participantYear":   "3",
		"educationLevel":    "UG",
		"college":           "URCET",
		"eventIds":          eventIDs,
	}
}

type createdBody struct {
	Message  string         `json:"message"`
	ID       uint64         `json:"id"`
	TicketID string         `json:"ticketId"`
	QRCode   string         `json:"qrCode"`
	Pricing  domain.Pricing `json:"pricing"`
}

type errBody struct {
	Message string `json:"message"`
	Field   string `json:"field"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func login(t *testing.T, s *Server) string {
	t.Helper()

	rec := doRequest(t, s, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "admin",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	return token
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListEvents_Idempotent(t *testing.T) {
	s := newTestServer(t)

	first := doRequest(t, s, http.MethodGet, "/api/events", nil, "")
	second := doRequest(t, s, http.MethodGet, "/api/events", nil, "")

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	events := decode[[]domain.Event](t, first)
	assert.Len(t, events, 28)
}

func TestGetEvent(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/events/evt-cse-001", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "evt-cse-001", decode[domain.Event](t, rec).ID)

	rec = doRequest(t, s, http.MethodGet, "/api/events/evt-nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListStalls(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/stalls", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Stall](t, rec), 4)

	rec = doRequest(t, s, http.MethodGet, "/api/stalls/stall-001", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/stalls/stall-999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRegistration(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/registrations",
		registrationBody("evt-cse-001", "evt-cse-002", "evt-it-001"), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[createdBody](t, rec)
	assert.Equal(t, "Registration successful", body.Message)
	assert.Equal(t, uint64(1), body.ID)
	assert.Equal(t, "YF26-00001", body.TicketID)
	assert.True(t, strings.HasPrefix(body.QRCode, "data:image/png;base64,"))
	assert.Equal(t, domain.Pricing{
		TotalEvents:    3,
		FreeEvents:     1,
		OriginalAmount: 300,
		DiscountAmount: 100,
		FinalAmount:    200,
	}, body.Pricing)
}

func TestCreateRegistration_UnknownEvent(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/registrations",
		registrationBody("evt-cse-001", "evt-nope"), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errBody](t, rec)
	assert.Equal(t, "eventIds", body.Field)
	assert.NotEmpty(t, body.Message)

	// the rejected request did not consume a ticket number
	rec = doRequest(t, s, http.MethodPost, "/api/registrations", registrationBody("evt-cse-001"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "YF26-00001", decode[createdBody](t, rec).TicketID)
}

func TestCreateRegistration_InvalidInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		mutate    func(b map[string]any)
		wantField string
	}{
		{
			name:      "bad email",
			mutate:    func(b map[string]any) { b["email"] = "not-an-email" },
			wantField: "email",
		},
		{
			name:      "short phone",
			mutate:    func(b map[string]any) { b["phone"] = "12345" },
			wantField: "phone",
		},
		{
			name:      "no events",
			mutate:    func(b map[string]any) { b["eventIds"] = []string{} },
			wantField: "eventIds",
		},
		{
			name:      "duplicate events",
			mutate:    func(b map[string]any) { b["eventIds"] = []string{"evt-cse-001", "evt-cse-001"} },
			wantField: "eventIds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := registrationBody("evt-cse-001")
			tt.mutate(b)

			rec := doRequest(t, s, http.MethodPost, "/api/registrations", b, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantField, decode[errBody](t, rec).Field)
		})
	}
}

func TestCreateRegistration_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/registrations", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTicket(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/registrations",
		registrationBody("evt-cul-001", "evt-cse-001"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[createdBody](t, rec)

	rec = doRequest(t, s, http.MethodGet, "/api/ticket/"+created.TicketID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	ticket := decode[domain.Ticket](t, rec)
	assert.Equal(t, created.TicketID, ticket.Registration.TicketID)
	assert.Equal(t, "Asha Rao", ticket.Registration.Name)
	assert.Equal(t, domain.RegistrationCategoryBoth, ticket.Registration.Category)
	require.Len(t, ticket.Events, 2)
	assert.Equal(t, "evt-cul-001", ticket.Events[0].ID)

	for _, id := range []string{"YF26-99999", "garbage", "YF25-00001"} {
		rec = doRequest(t, s, http.MethodGet, "/api/ticket/"+id, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestQuote(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/pricing/quote", map[string]any{
		"eventIds": []string{"evt-cse-001", "evt-cse-002", "evt-cse-003", "evt-cse-004", "evt-cse-005", "evt-it-001"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Pricing{
		TotalEvents:    6,
		FreeEvents:     2,
		OriginalAmount: 600,
		DiscountAmount: 200,
		FinalAmount:    400,
	}, decode[domain.Pricing](t, rec))

	// quoting never allocates a ticket number
	rec = doRequest(t, s, http.MethodPost, "/api/registrations", registrationBody("evt-cse-001"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "YF26-00001", decode[createdBody](t, rec).TicketID)
}

func TestAdmin_Login(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NotEmpty(t, login(t, s))
}

func TestAdmin_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/admin/registrations", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/admin/registrations", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_ClearRegistrations(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	rec := doRequest(t, s, http.MethodPost, "/api/registrations", registrationBody("evt-cse-001"), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/admin/registrations", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Registration](t, rec), 1)

	rec = doRequest(t, s, http.MethodDelete, "/api/admin/registrations", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["deleted"])

	rec = doRequest(t, s, http.MethodGet, "/api/ticket/YF26-00001", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// numbering continues after a flush
	rec = doRequest(t, s, http.MethodPost, "/api/registrations", registrationBody("evt-cse-001"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "YF26-00002", decode[createdBody](t, rec).TicketID)
}

func TestAdmin_ClearAndSeedCatalog(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	rec := doRequest(t, s, http.MethodDelete, "/api/admin/catalog", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/events", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doRequest(t, s, http.MethodPost, "/api/admin/catalog/seed", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"events":28,"stalls":4}`, rec.Body.String())
}

func TestCreateRegistration_ConcurrentDistinctTickets(t *testing.T) {
	s := newTestServer(t)

	const k = 40
	body, err := json.Marshal(registrationBody("evt-cse-001", "evt-cul-001"))
	require.NoError(t, err)

	ticketIDs := make([]string, k)
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			req := httptest.NewRequest(http.MethodPost, "/api/registrations", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.Router.ServeHTTP(rec, req)

			if !assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String()) {
				return
			}
			var created createdBody
			if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)) {
				ticketIDs[i] = created.TicketID
			}
		}(i)
	}
	wg.Wait()

	want := make([]string, 0, k)
	for i := 1; i <= k; i++ {
		want = append(want, domain.FormatTicketID("YF26", uint64(i)))
	}
	assert.ElementsMatch(t, want, ticketIDs)
}

type unavailableNotifier struct{}

func (unavailableNotifier) Enqueue(notification.TicketNotice) (uuid.UUID, error) {
	return uuid.Nil, notification.ErrQueueFull
}

func TestCreateRegistration_MailDown(t *testing.T) {
	// nothing listens on this port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	dispatcher, err := notification.NewDispatcher(
		mailer.New(mailer.Config{Host: "127.0.0.1", Port: port, FromAddress: "desk@example.com"}),
		notification.Options{Workers: 1, QueueSize: 4, AttemptTimeout: time.Second},
	)
	require.NoError(t, err)
	require.NoError(t, dispatcher.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = dispatcher.Stop(ctx)
	})

	tests := []struct {
		name     string
		notifier service.TicketNotifier
	}{
		{name: "smtp unreachable", notifier: dispatcher},
		{name: "queue unavailable", notifier: unavailableNotifier{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServerWithHooks(t, service.IssueHooks{Notifier: tt.notifier})

			rec := doRequest(t, s, http.MethodPost, "/api/registrations", registrationBody("evt-cse-001"), "")
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			created := decode[createdBody](t, rec)
			assert.Equal(t, "YF26-00001", created.TicketID)
			assert.True(t, strings.HasPrefix(created.QRCode, "data:image/png;base64,"))

			rec = doRequest(t, s, http.MethodGet, "/api/ticket/"+created.TicketID, nil, "")
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
