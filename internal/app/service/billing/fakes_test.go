package billing

import (
	"context"
	"sync"
	"time"

	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	"github.com/rotbot/rotbot-api/internal/app/service/subscription"
	"github.com/rotbot/rotbot-api/internal/models"
	stripeplatform "github.com/rotbot/rotbot-api/internal/platform/stripe"
	"github.com/rotbot/rotbot-api/pkg/types"
)

// memStore mirrors the upsert semantics of the postgres store.
type memStore struct {
	mu      sync.Mutex
	rows    map[string]*models.Subscription
	changes []subscription.Change
	err     error
}

func newMemStore() *memStore { return &memStore{rows: map[string]*models.Subscription{}} }

func (m *memStore) Upsert(_ context.Context, rec *models.Subscription, change subscription.Change) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if cur, ok := m.rows[rec.StripeSubscriptionID]; ok && cur.LastEventAt.After(rec.LastEventAt) {
		return false, nil
	}
	cp := *rec
	m.rows[rec.StripeSubscriptionID] = &cp
	m.changes = append(m.changes, change)
	return true, nil
}

func (m *memStore) MarkStatus(_ context.Context, id string, status types.SubscriptionStatus, eventAt time.Time, change subscription.Change) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	cur, ok := m.rows[id]
	if !ok {
		return false, subscription.ErrRecordNotFound
	}
	if cur.LastEventAt.After(eventAt) {
		return false, nil
	}
	cur.Status = status
	cur.LastEventAt = eventAt
	m.changes = append(m.changes, change)
	return true, nil
}

func (m *memStore) FindByProviderSubscriptionID(_ context.Context, id string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if cur, ok := m.rows[id]; ok {
		cp := *cur
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) get(id string) *models.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type fakeGateway struct {
	subs          map[string]*stripeplatform.Subscription
	customers     map[string]map[string]string
	subErr        error
	customerErr   error
	customerCalls int
}

func (g *fakeGateway) GetSubscription(_ context.Context, id string) (*stripeplatform.Subscription, error) {
	if g.subErr != nil {
		return nil, g.subErr
	}
	sub, ok := g.subs[id]
	if !ok {
		return nil, context.DeadlineExceeded
	}
	return sub, nil
}

func (g *fakeGateway) GetCustomerMetadata(_ context.Context, id string) (map[string]string, error) {
	g.customerCalls++
	if g.customerErr != nil {
		return nil, g.customerErr
	}
	return g.customers[id], nil
}

type fakeUnlocker struct {
	known    map[string]bool
	unlocked map[string][]string
}

func (u *fakeUnlocker) UnlockByName(_ context.Context, userID, name string) error {
	if !u.known[name] {
		return personality.ErrPersonalityNotFound
	}
	if u.unlocked == nil {
		u.unlocked = map[string][]string{}
	}
	u.unlocked[userID] = append(u.unlocked[userID], name)
	return nil
}

type recordedLogs struct {
	mu      sync.Mutex
	entries []*models.WebhookEventLog
}

func (r *recordedLogs) Save(_ context.Context, entry *models.WebhookEventLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}
