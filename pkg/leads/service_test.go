package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
	"github.com/code-gritt/klientel/pkg/store"
)

var testMetrics = metrics.New()

type fakeStore struct {
	nextID      int
	leads       map[int]store.Lead
	activities  []string
	transitions []store.Transition
	credits     int
	insertErr   error
}

func newFakeStore(credits int) *fakeStore {
	return &fakeStore{nextID: 1, leads: map[int]store.Lead{}, credits: credits}
}

func (f *fakeStore) CreateLead(_ context.Context, userID int, name, email, status string) (store.Lead, error) {
	if f.insertErr != nil {
		return store.Lead{}, f.insertErr
	}
	l := store.Lead{ID: f.nextID, UserID: userID, Name: name, Email: email, Status: status}
	f.leads[l.ID] = l
	f.nextID++
	return l, nil
}

func (f *fakeStore) GetLead(_ context.Context, id, userID int) (store.Lead, error) {
	l, ok := f.leads[id]
	if !ok || l.UserID != userID {
		return store.Lead{}, store.ErrNotFound
	}
	return l, nil
}

func (f *fakeStore) ListLeadsByUser(_ context.Context, userID int) ([]store.Lead, error) {
	var out []store.Lead
	for _, l := range f.leads {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateLead(_ context.Context, id, userID int, name, email, status string) (store.Lead, error) {
	l, ok := f.leads[id]
	if !ok || l.UserID != userID {
		return store.Lead{}, store.ErrNotFound
	}
	l.Name, l.Email, l.Status = name, email, status
	f.leads[id] = l
	return l, nil
}

func (f *fakeStore) UpdateLeadStatus(_ context.Context, id, userID int, status string) (store.Lead, error) {
	l, ok := f.leads[id]
	if !ok || l.UserID != userID {
		return store.Lead{}, store.ErrNotFound
	}
	l.Status = status
	f.leads[id] = l
	return l, nil
}

func (f *fakeStore) DeleteLead(_ context.Context, id, userID int) (store.Lead, error) {
	l, ok := f.leads[id]
	if !ok || l.UserID != userID {
		return store.Lead{}, store.ErrNotFound
	}
	delete(f.leads, id)
	return l, nil
}

func (f *fakeStore) CreateTransition(_ context.Context, t store.Transition) (store.Transition, error) {
	f.transitions = append(f.transitions, t)
	return t, nil
}

func (f *fakeStore) AppendActivity(_ context.Context, userID int, action string) (store.Activity, error) {
	f.activities = append(f.activities, action)
	return store.Activity{UserID: userID, Action: action}, nil
}

func (f *fakeStore) DeductCredits(_ context.Context, userID, amount int) (int, error) {
	if f.credits < amount {
		return f.credits, store.ErrInsufficientCredits
	}
	f.credits -= amount
	return f.credits, nil
}

func (f *fakeStore) RefundCredits(_ context.Context, userID, amount int) (int, error) {
	f.credits += amount
	return f.credits, nil
}

func newTestService(fs *fakeStore) *Service {
	return NewService(fs, []string{"New", "Contacted", "Qualified", "Closed"}, logger.Default(), testMetrics)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to initial stage and charges a credit", func(t *testing.T) {
		fs := newFakeStore(3)
		svc := newTestService(fs)

		lead, err := svc.Create(ctx, 1, "Acme", "hi@acme.com", "")
		require.NoError(t, err)
		assert.Equal(t, "New", lead.Status)
		assert.Equal(t, 2, fs.credits)
		assert.Equal(t, []string{
			"Created lead: Acme",
			`Lead "Acme" status changed to New`,
		}, fs.activities)
		require.Len(t, fs.transitions, 1)
		assert.Equal(t, "", fs.transitions[0].FromStatus)
		assert.Equal(t, "New", fs.transitions[0].ToStatus)
	})

	t.Run("rejects unknown stage before charging", func(t *testing.T) {
		fs := newFakeStore(3)
		svc := newTestService(fs)

		_, err := svc.Create(ctx, 1, "Acme", "", "Bogus")
		require.Error(t, err)
		assert.Equal(t, 3, fs.credits)
	})

	t.Run("refunds the credit when the insert fails", func(t *testing.T) {
		fs := newFakeStore(3)
		fs.insertErr = errors.New("db down")
		svc := newTestService(fs)

		_, err := svc.Create(ctx, 1, "Acme", "", "")
		require.Error(t, err)
		assert.Equal(t, 3, fs.credits)
		assert.Empty(t, fs.activities)
	})

	t.Run("insufficient credits", func(t *testing.T) {
		fs := newFakeStore(0)
		svc := newTestService(fs)

		_, err := svc.Create(ctx, 1, "Acme", "", "")
		assert.ErrorIs(t, err, store.ErrInsufficientCredits)
		assert.Empty(t, fs.leads)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("records the transition and its marker", func(t *testing.T) {
		fs := newFakeStore(10)
		svc := newTestService(fs)
		lead, err := svc.Create(ctx, 1, "Acme", "", "")
		require.NoError(t, err)

		updated, err := svc.UpdateStatus(ctx, lead.ID, 1, "Contacted")
		require.NoError(t, err)
		assert.Equal(t, "Contacted", updated.Status)

		assert.Contains(t, fs.activities, `Lead "Acme" status changed from New to Contacted`)
		last := fs.transitions[len(fs.transitions)-1]
		assert.Equal(t, "New", last.FromStatus)
		assert.Equal(t, "Contacted", last.ToStatus)
	})

	t.Run("same stage is a no-op", func(t *testing.T) {
		fs := newFakeStore(10)
		svc := newTestService(fs)
		lead, err := svc.Create(ctx, 1, "Acme", "", "")
		require.NoError(t, err)

		before := len(fs.activities)
		_, err = svc.UpdateStatus(ctx, lead.ID, 1, "New")
		require.NoError(t, err)
		assert.Len(t, fs.activities, before)
		assert.Len(t, fs.transitions, 1)
	})

	t.Run("other user's lead is invisible", func(t *testing.T) {
		fs := newFakeStore(10)
		svc := newTestService(fs)
		lead, err := svc.Create(ctx, 1, "Acme", "", "")
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, lead.ID, 2, "Contacted")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore(10)
	svc := newTestService(fs)
	lead, err := svc.Create(ctx, 1, "Acme", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, lead.ID, 1))
	assert.Empty(t, fs.leads)
	assert.Contains(t, fs.activities, "Lead deleted: Acme")

	last := fs.transitions[len(fs.transitions)-1]
	assert.Equal(t, "New", last.FromStatus)
	assert.Equal(t, "", last.ToStatus)
}
