package rbac

import "fmt"

// Checker answers permission queries from a validated Config. It holds only
// constant lookup tables and is safe for concurrent use.
type Checker struct {
	config     Config
	roleIndex  map[Role]int
	grants     map[Role]PermissionSet
	validPerms map[Permission]bool
}

// New creates a Checker from a validated Config
func New(cfg Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc := &Checker{config: cfg}
	rc.buildLookups()
	return rc, nil
}

// MustNew creates a Checker and panics on invalid config
func MustNew(cfg Config) *Checker {
	rc, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewPanicFmt, err))
	}
	return rc
}

func (rc *Checker) buildLookups() {
	cfg := rc.config

	rc.roleIndex = make(map[Role]int, len(cfg.Roles))
	for _, rd := range cfg.Roles {
		rc.roleIndex[rd.Name] = rd.Level
	}

	rc.validPerms = make(map[Permission]bool, len(cfg.Permissions))
	for _, p := range cfg.Permissions {
		rc.validPerms[p] = true
	}

	rc.grants = make(map[Role]PermissionSet, len(cfg.Roles))
	for _, rd := range cfg.Roles {
		rc.grants[rd.Name] = PermissionSet{}
	}
	for role, resources := range cfg.Capabilities {
		for res, actions := range resources {
			for _, act := range actions {
				rc.grants[role][NewPermission(res, act)] = struct{}{}
			}
		}
	}
}

// Can reports whether role holds permission
func (rc *Checker) Can(role Role, perm Permission) bool {
	return rc.grants[role].Has(perm)
}

// CanAny reports whether role holds at least one of perms
func (rc *Checker) CanAny(role Role, perms ...Permission) bool {
	return rc.grants[role].HasAny(perms...)
}

// CanAll reports whether role holds every one of perms
func (rc *Checker) CanAll(role Role, perms ...Permission) bool {
	return rc.grants[role].HasAll(perms...)
}

// Permissions returns a copy of the permission set held by role. Unknown
// roles get an empty set.
func (rc *Checker) Permissions(role Role) PermissionSet {
	src := rc.grants[role]
	out := make(PermissionSet, len(src))
	for p := range src {
		out[p] = struct{}{}
	}
	return out
}

// Authorize is the error-returning form of Can
func (rc *Checker) Authorize(role Role, perm Permission) error {
	if !rc.Can(role, perm) {
		return fmt.Errorf(errDeniedRoleLacksPermissionFmt, ErrDenied, role, perm)
	}
	return nil
}

// IsRoleElevated checks if role1 has equal or higher privilege than role2
func (rc *Checker) IsRoleElevated(role1, role2 Role) bool {
	level1, exists1 := rc.roleIndex[role1]
	level2, exists2 := rc.roleIndex[role2]
	if !exists1 || !exists2 {
		return false
	}
	return level1 >= level2
}

// ValidateRole validates a role string against configured roles
func (rc *Checker) ValidateRole(role string) (Role, error) {
	r := Role(role)
	if _, ok := rc.roleIndex[r]; ok {
		return r, nil
	}
	return "", fmt.Errorf(errInvalidRoleFmt, ErrInvalidRole, role)
}

// IsPermission reports whether perm is declared in the config
func (rc *Checker) IsPermission(perm Permission) bool {
	return rc.validPerms[perm]
}

// AllPermissions returns every declared permission in declaration order
func (rc *Checker) AllPermissions() []Permission {
	out := make([]Permission, len(rc.config.Permissions))
	copy(out, rc.config.Permissions)
	return out
}
