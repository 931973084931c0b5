package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"guest-dashboard-guard/pkg/model"
	"guest-dashboard-guard/pkg/store"
)

type failingSink struct{ err error }

func (f failingSink) Notify(context.Context, model.Notification) error { return f.err }

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	mem := store.NewMemoryStore()
	boom := errors.New("boom")
	m := Multi{failingSink{err: boom}, nil, mem}

	err := m.Notify(context.Background(), model.Notification{ID: "n1", Title: "t"})
	assert.ErrorIs(t, err, boom)

	list, lerr := mem.ListNotifications(context.Background())
	assert.NoError(t, lerr)
	assert.Len(t, list, 1)
}

func TestMulti_NoErrors(t *testing.T) {
	m := Multi{store.NewMemoryStore()}
	assert.NoError(t, m.Notify(context.Background(), model.Notification{ID: "n1"}))
}
