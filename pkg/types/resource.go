package types

// ResourceKind tags the closed set of resource variants
type ResourceKind string

const (
	KindOwned              ResourceKind = "owned"
	KindAffiliated         ResourceKind = "affiliated"
	KindAffiliatedDataset  ResourceKind = "affiliated_dataset"
	KindAffiliatedDeferred ResourceKind = "affiliated_deferred"
)

// Resource is the object a request acts on, carrying its own ownership and
// affiliation metadata independent of the principal's account-wide roles.
// The implementation set is closed: each variant pairs with exactly one
// authorization handler.
type Resource interface {
	Kind() ResourceKind
	// Owners returns the subject ids that own the resource; may be empty
	Owners() []string
}

// OwnedResource is owned outright by one or more subjects. Ownership
// supersedes permission checks: an owner always has full access.
type OwnedResource struct {
	UserIDs []string `json:"user_ids"`
}

func (r OwnedResource) Kind() ResourceKind { return KindOwned }
func (r OwnedResource) Owners() []string   { return r.UserIDs }

// affiliation is the metadata shared by the affiliated resource variants:
// roles and permissions granted on this specific resource, distinct from
// anything the principal holds account-wide.
type affiliation struct {
	UserIDs []string `json:"user_ids,omitempty"`
	// AffiliatedRoles are resolved through the policy's role tables
	AffiliatedRoles []string `json:"affiliated_roles,omitempty"`
	// AffiliatedPermissions are granted directly, bypassing role resolution
	AffiliatedPermissions []string `json:"affiliated_permissions,omitempty"`
}

func (a affiliation) Owners() []string { return a.UserIDs }

// AffiliatedResource carries per-resource role and permission grants
type AffiliatedResource struct {
	affiliation
}

// NewAffiliatedResource builds an affiliated resource
func NewAffiliatedResource(userIDs, roles, permissions []string) AffiliatedResource {
	return AffiliatedResource{affiliation{UserIDs: userIDs, AffiliatedRoles: roles, AffiliatedPermissions: permissions}}
}

func (r AffiliatedResource) Kind() ResourceKind { return KindAffiliated }

// AffiliatedDatasetResource carries dataset-scoped grants; dataset roles
// live in their own namespace, independent of affiliated-resource roles.
type AffiliatedDatasetResource struct {
	affiliation
}

// NewAffiliatedDatasetResource builds a dataset-affiliated resource
func NewAffiliatedDatasetResource(userIDs, roles, permissions []string) AffiliatedDatasetResource {
	return AffiliatedDatasetResource{affiliation{UserIDs: userIDs, AffiliatedRoles: roles, AffiliatedPermissions: permissions}}
}

func (r AffiliatedDatasetResource) Kind() ResourceKind { return KindAffiliatedDataset }

// AffiliatedDeferredResource is resolved late in the request, after the
// endpoint has loaded the resource; its owner list is required.
type AffiliatedDeferredResource struct {
	affiliation
}

// NewAffiliatedDeferredResource builds a deferred-affiliated resource
func NewAffiliatedDeferredResource(userIDs, roles, permissions []string) AffiliatedDeferredResource {
	return AffiliatedDeferredResource{affiliation{UserIDs: userIDs, AffiliatedRoles: roles, AffiliatedPermissions: permissions}}
}

func (r AffiliatedDeferredResource) Kind() ResourceKind { return KindAffiliatedDeferred }

// HasOwners reports whether a resource names at least one owning subject
func HasOwners(r Resource) bool {
	return r != nil && len(r.Owners()) > 0
}

// IsOwner reports whether subject is among the resource's owners
func IsOwner(r Resource, subject string) bool {
	if r == nil || subject == "" {
		return false
	}
	for _, id := range r.Owners() {
		if id == subject {
			return true
		}
	}
	return false
}
