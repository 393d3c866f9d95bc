package authorize

import (
	"context"
	"log/slog"
)

// DefaultPolicies is the baseline RBAC policy set. Ownership (which clinic,
// which staff member, which customer) is checked by the booking services on
// top of these role grants.
func DefaultPolicies() []PermissionPolicy {
	return []PermissionPolicy{
		// Platform admin: everything
		{RolePlatformAdmin, WildcardDomain, WildcardResource, WildcardAction, EffectAllow},

		// Clinic manager: full control inside clinic domains
		{RoleClinicManager, WildcardDomain, ResourceAppointment, ActionManage, EffectAllow},
		{RoleClinicManager, WildcardDomain, ResourceAvailabilitySlot, ActionManage, EffectAllow},

		// Staff: run their own calendar
		{RoleClinicStaff, WildcardDomain, ResourceAppointment, ActionCreate, EffectAllow},
		{RoleClinicStaff, WildcardDomain, ResourceAppointment, ActionRead, EffectAllow},
		{RoleClinicStaff, WildcardDomain, ResourceAppointment, ActionList, EffectAllow},
		{RoleClinicStaff, WildcardDomain, ResourceAppointment, ActionUpdate, EffectAllow},
		{RoleClinicStaff, WildcardDomain, ResourceAppointment, ActionCancel, EffectAllow},
		{RoleClinicStaff, WildcardDomain, ResourceAppointment, ActionComplete, EffectAllow},
		{RoleClinicStaff, WildcardDomain, ResourceAvailabilitySlot, ActionManage, EffectAllow},

		// Customer: book, move and cancel their own appointments
		{RoleClinicCustomer, WildcardDomain, ResourceAppointment, ActionCreate, EffectAllow},
		{RoleClinicCustomer, WildcardDomain, ResourceAppointment, ActionRead, EffectAllow},
		{RoleClinicCustomer, WildcardDomain, ResourceAppointment, ActionList, EffectAllow},
		{RoleClinicCustomer, WildcardDomain, ResourceAppointment, ActionUpdate, EffectAllow},
		{RoleClinicCustomer, WildcardDomain, ResourceAppointment, ActionCancel, EffectAllow},
		{RoleClinicCustomer, WildcardDomain, ResourceAvailabilitySlot, ActionRead, EffectAllow},
		{RoleClinicCustomer, WildcardDomain, ResourceAvailabilitySlot, ActionList, EffectAllow},
	}
}

// SeedDefaultPolicies adds DefaultPolicies; rows already present are skipped.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	policies := DefaultPolicies()
	for _, p := range policies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(policies))
	return nil
}

// SavePolicies writes the enforcer's current policies through its adapter.
// `system migrate` uses it to materialize the defaults into a policy file.
func SavePolicies(auth IAuthorization) error {
	return auth.Raw().SavePolicy()
}
