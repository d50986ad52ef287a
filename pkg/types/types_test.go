package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalHasClaims(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		want      bool
	}{
		{"nil principal", nil, false},
		{"empty principal", &Principal{}, false},
		{"subject only", &Principal{Subject: "user-1"}, true},
		{"client only", &Principal{ClientID: "svc-a"}, true},
		{"roles only", &Principal{Roles: []string{"admin"}}, true},
		{"scopes only", &Principal{Scopes: []string{"api.read"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.principal.HasClaims())
		})
	}
}

func TestPrincipalHasRole(t *testing.T) {
	p := &Principal{Subject: "user-1", Roles: []string{"editor", "viewer"}}

	assert.True(t, p.HasRole("editor"))
	assert.False(t, p.HasRole("admin"))

	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.HasRole("editor"))
}

func TestRequirementSatisfied(t *testing.T) {
	tests := []struct {
		name string
		req  PermissionRequirement
		hits int
		want bool
	}{
		{"empty requirement never satisfied", RequireAll(), 0, false},
		{"match all with full hits", RequireAll("read", "write"), 2, true},
		{"match all with partial hits", RequireAll("read", "write"), 1, false},
		{"match any with one hit", RequireAny("read", "write"), 1, true},
		{"match any with zero hits", RequireAny("read", "write"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Satisfied(tt.hits))
		})
	}
}

func TestResourceOwnership(t *testing.T) {
	owned := OwnedResource{UserIDs: []string{"user-1", "user-2"}}

	assert.True(t, HasOwners(owned))
	assert.True(t, IsOwner(owned, "user-1"))
	assert.False(t, IsOwner(owned, "user-3"))
	assert.False(t, IsOwner(owned, ""))

	empty := OwnedResource{}
	assert.False(t, HasOwners(empty))
	assert.False(t, HasOwners(nil))
}

func TestResourceKinds(t *testing.T) {
	assert.Equal(t, KindOwned, OwnedResource{}.Kind())
	assert.Equal(t, KindAffiliated, NewAffiliatedResource(nil, nil, nil).Kind())
	assert.Equal(t, KindAffiliatedDataset, NewAffiliatedDatasetResource(nil, nil, nil).Kind())
	assert.Equal(t, KindAffiliatedDeferred, NewAffiliatedDeferredResource(nil, nil, nil).Kind())
}
