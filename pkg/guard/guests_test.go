package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"guest-dashboard-guard/pkg/model"
)

var testUsers = []model.User{
	{ID: "admin", Name: "Owner", IsAdmin: true},
	{ID: "g1", Name: "Guest One"},
	{ID: "g2", Name: "Guest Two"},
	{ID: "supervisor", Name: "Supervisor", SystemGenerated: true},
	{ID: "cloud", Name: "Cloud", SystemGenerated: true, IsAdmin: true},
}

func TestResolveGuests_NonAdmin(t *testing.T) {
	got := ResolveGuests(testUsers, model.GuestNonAdmin, []string{"admin"})
	assert.Equal(t, []string{"g1", "g2"}, got.Sorted())
}

func TestResolveGuests_SpecificUsersVerbatim(t *testing.T) {
	got := ResolveGuests(testUsers, model.GuestSpecificUsers, []string{"admin", "deleted-user"})
	assert.Equal(t, []string{"admin", "deleted-user"}, got.Sorted())
}

func TestResolveGuests_SpecificUsersIgnoresDirectory(t *testing.T) {
	got := ResolveGuests(nil, model.GuestSpecificUsers, []string{"g9"})
	assert.True(t, got.Has("g9"))
}

func TestResolveGuests_UnknownMode(t *testing.T) {
	assert.Empty(t, ResolveGuests(testUsers, "everyone", nil))
}

func TestGuestSet_Intersect(t *testing.T) {
	s := NewGuestSet("g1", "g3")
	assert.Equal(t, []string{"g1"}, s.Intersect([]string{"g1", "g2", "g1"}))
	assert.Empty(t, s.Intersect(nil))
}
