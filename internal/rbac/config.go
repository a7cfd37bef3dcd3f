package rbac

import (
	"errors"
	"fmt"
)

// Config declares the roles, the resource:action vocabulary and what each
// role may do. Checker only accepts a Config that passes Validate.
type Config struct {
	Roles        []RoleDefinition
	Resources    []Resource
	Actions      []Action
	Permissions  []Permission
	Capabilities map[Role]map[Resource][]Action
}

// uniqueSet builds a membership set, rejecting empty and repeated entries.
func uniqueSet[T ~string](items []T, emptyMsg, duplicateFmt string) (map[T]bool, error) {
	set := make(map[T]bool, len(items))
	for _, item := range items {
		if item == "" {
			return nil, errors.New(emptyMsg)
		}
		if set[item] {
			return nil, fmt.Errorf(duplicateFmt, item)
		}
		set[item] = true
	}
	return set, nil
}

func (c *Config) Validate() error {
	switch {
	case len(c.Roles) == 0:
		return errors.New(errConfigRolesEmpty)
	case len(c.Resources) == 0:
		return errors.New(errConfigResourcesEmpty)
	case len(c.Actions) == 0:
		return errors.New(errConfigActionsEmpty)
	case len(c.Permissions) == 0:
		return errors.New(errConfigPermissionsEmpty)
	case len(c.Capabilities) == 0:
		return errors.New(errConfigCapabilitiesEmpty)
	}

	names := make([]Role, 0, len(c.Roles))
	levels := make(map[int]Role, len(c.Roles))
	for _, rd := range c.Roles {
		names = append(names, rd.Name)
		if other, taken := levels[rd.Level]; taken && rd.Name != "" && other != rd.Name {
			return fmt.Errorf(errConfigDuplicateRoleLevelFmt, rd.Level, other, rd.Name)
		}
		levels[rd.Level] = rd.Name
	}
	roles, err := uniqueSet(names, errConfigRoleNameEmpty, errConfigDuplicateRoleNameFmt)
	if err != nil {
		return err
	}

	resources, err := uniqueSet(c.Resources, errConfigResourceEmpty, errConfigDuplicateResourceFmt)
	if err != nil {
		return err
	}
	actions, err := uniqueSet(c.Actions, errConfigActionEmpty, errConfigDuplicateActionFmt)
	if err != nil {
		return err
	}

	declared := make(map[Permission]bool, len(c.Permissions))
	for _, p := range c.Permissions {
		if err := checkPermission(p, resources, actions); err != nil {
			return err
		}
		if declared[p] {
			return fmt.Errorf(errConfigDuplicatePermissionFmt, p)
		}
		declared[p] = true
	}

	for role, grants := range c.Capabilities {
		if !roles[role] {
			return fmt.Errorf(errConfigCapabilityUnknownRoleFmt, role)
		}
		for res, acts := range grants {
			for _, act := range acts {
				if p := NewPermission(res, act); !declared[p] {
					return fmt.Errorf(errConfigCapabilityUndeclaredFmt, role, p)
				}
			}
		}
	}

	return nil
}

func checkPermission(p Permission, resources map[Resource]bool, actions map[Action]bool) error {
	res, act, ok := p.Split()
	switch {
	case !ok:
		return fmt.Errorf(errConfigMalformedPermissionFmt, p)
	case !resources[res]:
		return fmt.Errorf(errConfigPermissionUnknownResourceFmt, p)
	case !actions[act]:
		return fmt.Errorf(errConfigPermissionUnknownActionFmt, p)
	}
	return nil
}
