package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lettervine/lettervine/internal/config"
	"github.com/lettervine/lettervine/internal/domain"
	internal_errors "github.com/lettervine/lettervine/internal/errors"
	"github.com/lettervine/lettervine/internal/handler"
	"github.com/lettervine/lettervine/internal/service"
	"github.com/lettervine/lettervine/internal/setup"
)

// memoryStore is an in-memory stand-in for the pg storage, good enough to
// run the full signup → confirm → broadcast flow over HTTP.
type memoryStore struct {
	mu          sync.Mutex
	subscribers map[domain.SubscriberID]*domain.Subscriber
	tokens      map[domain.SubscriptionToken]domain.SubscriberID
	nextID      int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		subscribers: make(map[domain.SubscriberID]*domain.Subscriber),
		tokens:      make(map[domain.SubscriptionToken]domain.SubscriberID),
	}
}

func (m *memoryStore) CreateSubscriber(ctx context.Context, name domain.SubscriberName, email domain.SubscriberEmail) (domain.SubscriberID, domain.SubscriptionToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subscribers {
		if sub.Email == email.String() {
			return "", "", internal_errors.ErrDuplicateEmail
		}
	}
	m.nextID++
	id := domain.SubscriberID(strings.Repeat("0", 35) + string(rune('0'+m.nextID)))
	token := strings.Repeat("a", 31) + string(rune('0'+m.nextID))
	m.subscribers[id] = &domain.Subscriber{ID: id, Name: name.String(), Email: email.String(), Status: domain.StatusPendingConfirmation}
	m.tokens[token] = id
	return id, token, nil
}

func (m *memoryStore) SubscriberIDByToken(ctx context.Context, token domain.SubscriptionToken) (domain.SubscriberID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[token]
	if !ok {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Token not found", StatusCode: http.StatusNotFound}
	}
	return id, nil
}

func (m *memoryStore) ConfirmSubscriber(ctx context.Context, id domain.SubscriberID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subscribers[id]
	if !ok {
		return &internal_errors.ErrorWithStatusCode{Message: "Subscriber not found", StatusCode: http.StatusNotFound}
	}
	sub.Status = domain.StatusConfirmed
	return nil
}

func (m *memoryStore) ConfirmedSubscriberEmails(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var emails []string
	for _, sub := range m.subscribers {
		if sub.Status == domain.StatusConfirmed {
			emails = append(emails, sub.Email)
		}
	}
	return emails, nil
}

func (m *memoryStore) Ping(ctx context.Context) error { return nil }

type recordingMailer struct {
	mu   sync.Mutex
	sent []domain.OutgoingEmail
}

func (r *recordingMailer) Send(ctx context.Context, email domain.OutgoingEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, email)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memoryStore, *recordingMailer) {
	t.Helper()
	store := newMemoryStore()
	mail := &recordingMailer{}
	cfg := &config.Config{Public: config.Public{AppBaseURL: "https://news.example.com"}}

	subscriptions := service.NewSubscription(store, mail, cfg.Public.AppBaseURL)
	newsletters := service.NewNewsletter(store, mail)
	h := handler.New(subscriptions, newsletters, store, cfg)

	deps := &setup.Dependencies{
		Handler: h,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:  cfg,
	}
	server := httptest.NewServer(New(deps))
	t.Cleanup(server.Close)
	return server, store, mail
}

func TestSubscriptionLifecycle(t *testing.T) {
	server, _, mail := newTestServer(t)

	// Signup
	resp, err := http.Post(server.URL+"/subscriptions", "application/json",
		strings.NewReader(`{"name":"Jane Doe","email":"jane@example.com"}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "201 Created", string(body))

	// One welcome email with a 32-hex token in the confirmation link
	require.Len(t, mail.sent, 1)
	welcome := mail.sent[0]
	assert.Equal(t, "jane@example.com", welcome.To.String())
	linkPattern := regexp.MustCompile(`https://news\.example\.com/subscriptions/confirm\?token=([0-9a-f]{32})`)
	match := linkPattern.FindStringSubmatch(welcome.TextBody)
	require.Len(t, match, 2)
	token := match[1]

	// Confirm
	resp, err = http.Get(server.URL + "/subscriptions/confirm?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Broadcast goes to exactly the one confirmed subscriber
	resp, err = http.Post(server.URL+"/newsletters", "application/json",
		strings.NewReader(`{"title":"Issue #1","content":{"text":"plain body","html":"<p>html body</p>"}}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, mail.sent, 2)
	assert.Equal(t, "jane@example.com", mail.sent[1].To.String())
	assert.Equal(t, "Issue #1", mail.sent[1].Subject)
}

func TestBroadcastSkipsPendingSubscribers(t *testing.T) {
	server, store, mail := newTestServer(t)
	ctx := context.Background()

	name, err := domain.NewSubscriberName("Jane Doe")
	require.NoError(t, err)

	id, _, err := store.CreateSubscriber(ctx, name, mustParseEmail(t, "confirmed@example.com"))
	require.NoError(t, err)
	require.NoError(t, store.ConfirmSubscriber(ctx, id))

	_, _, err = store.CreateSubscriber(ctx, name, mustParseEmail(t, "pending@example.com"))
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/newsletters", "application/json",
		strings.NewReader(`{"title":"Issue #1","content":{"text":"plain body","html":"<p>html body</p>"}}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "confirmed@example.com", mail.sent[0].To.String())
}

func TestUnknownTokenReturns401(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/subscriptions/confirm?token=" + strings.Repeat("f", 32))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthCheckRoute(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/health_check")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"OK"}`, string(body))
}

func mustParseEmail(t *testing.T, raw string) domain.SubscriberEmail {
	t.Helper()
	email, err := domain.NewSubscriberEmail(raw)
	require.NoError(t, err)
	return email
}
