package authorize

import (
	"regexp"
	"strings"

	"github.com/Alijeyrad/clinicbook/internal/model"
)

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Lifecycle actions
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"

	// Manage implies every other action on the resource.
	ActionManage Action = "manage"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionCancel: {}, ActionComplete: {},
	ActionManage: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceAppointment      Resource = "appointment"
	ResourceAvailabilitySlot Resource = "availability_slot"
)

var KnownResources = map[Resource]struct{}{
	ResourceAppointment:      {},
	ResourceAvailabilitySlot: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Roles are the policy subjects. A caller is enforced as the role mapped
// from the role recorded on its user.

const (
	WildcardRole Role = "*"

	RolePlatformAdmin  Role = "role:platform:admin"
	RoleClinicManager  Role = "role:clinic:manager"
	RoleClinicStaff    Role = "role:clinic:staff"
	RoleClinicCustomer Role = "role:clinic:customer"
)

var KnownRoles = map[Role]struct{}{
	RolePlatformAdmin:  {},
	RoleClinicManager:  {},
	RoleClinicStaff:    {},
	RoleClinicCustomer: {},
}

// UserRoleToRBACRole maps the role stored on a user to its policy subject.
var UserRoleToRBACRole = map[model.Role]Role{
	model.RoleAdmin:         RolePlatformAdmin,
	model.RoleClinicManager: RoleClinicManager,
	model.RoleStaff:         RoleClinicStaff,
	model.RoleCustomer:      RoleClinicCustomer,
}

// ----------------------------
// Domains
// ----------------------------

const (
	DomainSys          Domain = "sys"
	DomainPrefixClinic Domain = "clinic:"
	WildcardDomain     Domain = "*"
)

var reUUID = regexp.MustCompile(`^[0-9a-fA-F-]{36}$`)

func ClinicDomain(clinicID string) Domain {
	return DomainPrefixClinic + Domain(clinicID)
}

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	if d == DomainSys || d == WildcardDomain {
		return true
	}
	id, ok := strings.CutPrefix(string(d), string(DomainPrefixClinic))
	return ok && reUUID.MatchString(id)
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// Subject is the r.sub of a request: a role, or a concrete principal id
// when a policy row names one directly.
type Subject string

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
