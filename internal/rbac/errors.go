package rbac

import "errors"

var (
	ErrDenied            = errors.New("authorization denied")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidPermission = errors.New("invalid permission")
)

const (
	errConfigRolesEmpty                   = "rbac config: roles must not be empty"
	errConfigResourcesEmpty               = "rbac config: resources must not be empty"
	errConfigActionsEmpty                 = "rbac config: actions must not be empty"
	errConfigPermissionsEmpty             = "rbac config: permissions must not be empty"
	errConfigCapabilitiesEmpty            = "rbac config: capabilities must not be empty"
	errConfigRoleNameEmpty                = "rbac config: role name must not be empty"
	errConfigDuplicateRoleNameFmt         = "rbac config: duplicate role name: %s"
	errConfigDuplicateRoleLevelFmt        = "rbac config: duplicate role level %d (roles %s and %s)"
	errConfigResourceEmpty                = "rbac config: resource must not be empty"
	errConfigDuplicateResourceFmt         = "rbac config: duplicate resource: %s"
	errConfigActionEmpty                  = "rbac config: action must not be empty"
	errConfigDuplicateActionFmt           = "rbac config: duplicate action: %s"
	errConfigDuplicatePermissionFmt       = "rbac config: duplicate permission: %s"
	errConfigMalformedPermissionFmt       = "rbac config: permission %q is not resource:action"
	errConfigPermissionUnknownResourceFmt = "rbac config: permission %s references unknown resource"
	errConfigPermissionUnknownActionFmt   = "rbac config: permission %s references unknown action"
	errConfigCapabilityUnknownRoleFmt     = "rbac config: capability references unknown role: %s"
	errConfigCapabilityUndeclaredFmt      = "rbac config: capability for role %s grants undeclared permission: %s"
	errMustNewPanicFmt                    = "rbac.MustNew: %v"
	errDeniedRoleLacksPermissionFmt       = "%w: role '%s' lacks permission '%s'"
	errInvalidRoleFmt                     = "%w: %s"
)
