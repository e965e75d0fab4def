package core

import (
	"context"
	"errors"
	"sync"

	"lifenotes-backend-go/internal/payment"
)

var errMockProvider = errors.New("mock provider error")

// mockGateway implements payment.Gateway for testing.
type mockGateway struct {
	mu         sync.Mutex
	CreateFunc func(ctx context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error)
	GetFunc    func(ctx context.Context, sessionID string) (*payment.CheckoutSession, error)
	ParseFunc  func(payload []byte, signature string) (*payment.WebhookEvent, error)
	LastParams payment.CheckoutParams
	GetCalls   int
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error) {
	m.mu.Lock()
	m.LastParams = p
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return &payment.CheckoutSession{ID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (m *mockGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ctx, sessionID)
	}
	return nil, errMockProvider
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(payload, signature)
	}
	return nil, payment.ErrInvalidSignature
}

// mockRoleCache is an in-memory RoleCache that counts hits.
type mockRoleCache struct {
	mu      sync.Mutex
	roles   map[string]string
	hits    int
	deletes int
	GetErr  error
}

func newMockRoleCache() *mockRoleCache {
	return &mockRoleCache{roles: make(map[string]string)}
}

func (m *mockRoleCache) Get(_ context.Context, email string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	role, ok := m.roles[email]
	if ok {
		m.hits++
	}
	return role, ok, nil
}

func (m *mockRoleCache) Set(_ context.Context, email, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[email] = role
	return nil
}

func (m *mockRoleCache) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roles, email)
	m.deletes++
	return nil
}

type publishedEvent struct {
	Queue   string
	Payload interface{}
}

// mockPublisher records published events and can be made to fail.
type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	Err    error
}

func (m *mockPublisher) Publish(_ context.Context, queue string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, publishedEvent{Queue: queue, Payload: payload})
	return nil
}

func (m *mockPublisher) published() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedEvent(nil), m.events...)
}
