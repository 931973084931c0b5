package hostfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/guard"
)

const snapshot = `
users:
  - {id: owner, name: Owner, is_admin: true}
  - {id: g1, name: Guest One}
  - {id: supervisor, name: Supervisor, system_generated: true}
lovelace:
  - url_path: lovelace
    config:
      title: Home
  - url_path: kids
    mode: yaml
    config:
      title: Kids
      visibility:
        visible_to_all: false
        visible_users: [g1]
panels:
  - {url_path: map, title: Map, component_name: map}
  - {url_path: config, title: Settings, component_name: config, require_admin: true}
visibility:
  map: {visible_to_all: false, visible_users: [owner]}
`

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRegistry_Sources(t *testing.T) {
	ctx := context.Background()
	r := New(writeSnapshot(t, snapshot))

	users, err := r.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.True(t, users[0].IsAdmin)
	assert.True(t, users[2].SystemGenerated)

	ds, err := r.LovelaceDashboards(ctx)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "yaml", ds[1].Mode)
	assert.Equal(t, "Kids", ds[1].Config["title"])

	_, err = r.LegacyDashboards(ctx)
	assert.ErrorIs(t, err, guard.ErrSourceAbsent)

	panels, err := r.Panels(ctx)
	require.NoError(t, err)
	assert.Len(t, panels, 2)
}

func TestRegistry_Visibility(t *testing.T) {
	ctx := context.Background()
	r := New(writeSnapshot(t, snapshot))

	v, err := r.Visibility(ctx, "kids")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, v.VisibleToAll)
	assert.Equal(t, []string{"g1"}, v.VisibleUsers)

	v, err = r.Visibility(ctx, "map")
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, v.VisibleUsers)

	v, err = r.Visibility(ctx, "default")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRegistry_EmptyListIsNotAbsent(t *testing.T) {
	r := New(writeSnapshot(t, "lovelace: []\n"))
	ds, err := r.LovelaceDashboards(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestRegistry_ReloadsOnChange(t *testing.T) {
	ctx := context.Background()
	path := writeSnapshot(t, "users: [{id: a}]\n")
	r := New(path)
	users, err := r.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	require.NoError(t, os.WriteFile(path, []byte("users: [{id: a}, {id: b}]\n"), 0o600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	users, err = r.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRegistry_MissingFile(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := r.ListUsers(context.Background())
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("users: {not: [a list"))
	assert.Error(t, err)
}

func TestRegistry_FullCycle(t *testing.T) {
	r := New(writeSnapshot(t, snapshot))
	c, err := guard.New(guard.Options{Users: r, Registry: r, Settings: config.Default()}, zap.NewNop())
	require.NoError(t, err)

	res, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.DashboardsCount)
	assert.Equal(t, 1, res.GuestUsersCount)
	require.Len(t, res.Violations, 2)
	assert.Equal(t, "default", res.Violations[0].Dashboard)
	assert.Equal(t, "kids", res.Violations[1].Dashboard)
	assert.Equal(t, []string{"g1"}, res.Violations[1].AffectedGuests)
}
