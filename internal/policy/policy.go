// Package policy resolves role names and client identifiers to permission
// sets. Backing tables are loaded once at startup and are immutable for the
// process lifetime; all lookups are safe for unlimited concurrent reads.
package policy

// PermissionPolicy is the query contract the authorization handlers consume.
// Unknown role or permission names contribute the empty set, never an error.
type PermissionPolicy interface {
	// PermissionsOf resolves account-wide roles to their permission union
	PermissionsOf(roles []string) Set
	// PermissionsOfAffiliated resolves roles granted on an affiliated resource
	PermissionsOfAffiliated(roles []string) Set
	// PermissionsOfDataset resolves roles granted on a dataset
	PermissionsOfDataset(roles []string) Set
	// PermissionsOfContext resolves deferred (context) roles
	PermissionsOfContext(roles []string) Set
	// ClientsHaving is the inverse lookup: client ids statically granted
	// a permission, used for machine-to-machine authorization
	ClientsHaving(permission string) Set
}

// Set is a set of permission or client identifier strings
type Set map[string]struct{}

// NewSet builds a set from its members
func NewSet(members ...string) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Contains reports membership
func (s Set) Contains(member string) bool {
	_, ok := s[member]
	return ok
}

// Union returns a new set holding the members of both sets
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for m := range s {
		out[m] = struct{}{}
	}
	for m := range other {
		out[m] = struct{}{}
	}
	return out
}

// Hits counts how many of the wanted names are members
func (s Set) Hits(wanted []string) int {
	hits := 0
	for _, w := range wanted {
		if s.Contains(w) {
			hits++
		}
	}
	return hits
}

// roleTable maps a role name to its granted permissions
type roleTable map[string]Set

// permissionsOf unions the permissions of each role; unknown roles
// contribute nothing
func (t roleTable) permissionsOf(roles []string) Set {
	out := make(Set)
	for _, role := range roles {
		for p := range t[role] {
			out[p] = struct{}{}
		}
	}
	return out
}

// Memory is the in-memory PermissionPolicy backed by static tables
type Memory struct {
	roles      roleTable
	affiliated roleTable
	dataset    roleTable
	context    roleTable
	// clients maps permission name -> client ids granted it
	clients map[string]Set
}

// NewMemory creates an empty policy; use the Loader to populate one from
// configuration
func NewMemory() *Memory {
	return &Memory{
		roles:      make(roleTable),
		affiliated: make(roleTable),
		dataset:    make(roleTable),
		context:    make(roleTable),
		clients:    make(map[string]Set),
	}
}

// PermissionsOf resolves account-wide roles
func (m *Memory) PermissionsOf(roles []string) Set {
	return m.roles.permissionsOf(roles)
}

// PermissionsOfAffiliated resolves affiliated-resource roles. Affiliated,
// dataset and context roles are independent namespaces: a role name in one
// table has no meaning in another.
func (m *Memory) PermissionsOfAffiliated(roles []string) Set {
	return m.affiliated.permissionsOf(roles)
}

// PermissionsOfDataset resolves dataset roles
func (m *Memory) PermissionsOfDataset(roles []string) Set {
	return m.dataset.permissionsOf(roles)
}

// PermissionsOfContext resolves deferred (context) roles
func (m *Memory) PermissionsOfContext(roles []string) Set {
	return m.context.permissionsOf(roles)
}

// ClientsHaving returns the client ids statically granted a permission
func (m *Memory) ClientsHaving(permission string) Set {
	if s, ok := m.clients[permission]; ok {
		return s
	}
	return nil
}
