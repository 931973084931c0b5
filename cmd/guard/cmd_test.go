package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"guest-dashboard-guard/pkg/hostfile"
	"guest-dashboard-guard/pkg/model"
	"guest-dashboard-guard/pkg/store"
)

const snapshotYAML = `users:
  - {id: owner, name: Owner, is_admin: true}
  - {id: g1, name: Guest}
  - {id: sys, name: Supervisor, system_generated: true}
lovelace:
  - url_path: lovelace
    config: {title: Home}
  - url_path: kids
    config:
      title: Kids
      visibility: {visible_to_all: false, visible_users: [g1]}
panels:
  - {url_path: config, title: Settings, component_name: config, require_admin: true}
visibility:
  kids: {visible_to_all: false, visible_users: [g1]}
`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshotYAML), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "guard", root.Use)
	assert.NotEmpty(t, root.Version)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "check", "users", "seed"} {
		assert.True(t, names[want], want)
	}
	for _, flag := range []string{"host-backend", "host-file", "users-backend", "action-mode", "check-interval", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestServeCmdFlags(t *testing.T) {
	cmd := serveCmd()
	for _, flag := range []string{"addr", "token", "login", "notify-db", "tls-cert", "tls-key", "client-ca"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
}

func TestCheckCmd(t *testing.T) {
	path := writeSnapshot(t)
	out, err := execute(t, "check", "--host-file", path)
	require.NoError(t, err)

	var res model.PollResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.DashboardsCount)
	assert.Equal(t, 1, res.GuestUsersCount)
	require.Len(t, res.Violations, 2)
	assert.Equal(t, model.DefaultDashboardKey, res.Violations[0].Dashboard)
	assert.Equal(t, model.IssueDefaultVisible, res.Violations[0].Kind)
	assert.Equal(t, "kids", res.Violations[1].Dashboard)
	assert.Equal(t, model.IssueExplicitGuestAccess, res.Violations[1].Kind)
}

func TestCheckCmdIgnoreAndFail(t *testing.T) {
	path := writeSnapshot(t)
	_, err := execute(t, "check", "--host-file", path, "--fail-on-violation")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 dashboard(s)")

	out, err := execute(t, "check", "--host-file", path, "--ignore", "default,kids", "--fail-on-violation", "-o", "yaml")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res["dashboardsCount"])
	assert.Nil(t, res["violations"])
}

func TestCheckCmdSpecificUsers(t *testing.T) {
	path := writeSnapshot(t)
	out, err := execute(t, "check", "--host-file", path, "--guest-detection", "specific_users", "--guest-users", "nobody")
	require.NoError(t, err)
	var res model.PollResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.GuestUsersCount)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, []string{"nobody"}, res.Violations[0].AffectedGuests)
}

func TestCheckCmdInvalidSettings(t *testing.T) {
	path := writeSnapshot(t)
	_, err := execute(t, "check", "--host-file", path, "--check-interval", "5")
	assert.Error(t, err)
}

func TestCheckCmdUnknownBackend(t *testing.T) {
	_, err := execute(t, "check", "--host-backend", "etcd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported host backend")
}

func TestUsersListCmd(t *testing.T) {
	path := writeSnapshot(t)
	out, err := execute(t, "users", "list", "--host-backend", "memory", "--host-file", path)
	require.NoError(t, err)
	var rows []userRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	guests := map[string]bool{}
	for _, r := range rows {
		guests[r.ID] = r.Guest
	}
	assert.Equal(t, map[string]bool{"owner": false, "g1": true, "sys": false}, guests)
}

func TestUsersCreateRequiresMySQL(t *testing.T) {
	path := writeSnapshot(t)
	_, err := execute(t, "users", "create", "--host-file", path, "--id", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestSeedMemory(t *testing.T) {
	snap, err := hostfile.Parse([]byte(snapshotYAML))
	require.NoError(t, err)
	mem := store.NewMemoryStore()
	seedMemory(mem, snap)

	users, err := mem.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)
	ds, err := mem.LovelaceDashboards(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds, 2)
	_, err = mem.LegacyDashboards(context.Background())
	assert.Error(t, err)
	v, err := mem.Visibility(context.Background(), "kids")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, []string{"g1"}, v.VisibleUsers)
}

func TestNewCoordinatorLeavesStoredSettings(t *testing.T) {
	root := newRootCmd()
	require.NoError(t, root.PersistentFlags().Parse([]string{"--check-interval", "30"}))

	mem := store.NewMemoryStore()
	stored, err := mem.GetSettings()
	require.NoError(t, err)
	stored.ActionMode = model.ActionRevoke
	stored.CheckInterval = 900
	require.NoError(t, mem.UpdateSettings(stored))

	coord, err := newCoordinator(&backends{Users: mem, Registry: mem, Store: mem}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 30, coord.Settings().CheckInterval)

	got, err := mem.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestWriteOutputUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeOutput(&buf, "table", map[string]int{"a": 1}))
}
