package rbac

import (
	"sort"
	"strings"
)

// Role represents a user's role in the system (hierarchical)
type Role string

// Resource represents a type of resource in the system
type Resource string

// Action represents an operation on a resource
type Action string

// Permission is a "resource:action" pair
type Permission string

const permissionSeparator = ":"

// NewPermission joins a resource and an action into a Permission
func NewPermission(resource Resource, action Action) Permission {
	return Permission(string(resource) + permissionSeparator + string(action))
}

// Split returns the resource and action parts of p
func (p Permission) Split() (Resource, Action, bool) {
	res, act, ok := strings.Cut(string(p), permissionSeparator)
	if !ok || res == "" || act == "" {
		return "", "", false
	}
	return Resource(res), Action(act), true
}

// RoleDefinition defines a role and its privilege level
type RoleDefinition struct {
	Name  Role
	Level int
}

// PermissionSet is the resolved set of permissions held by one role
type PermissionSet map[Permission]struct{}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

func (s PermissionSet) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll is true for an empty list
func (s PermissionSet) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// List returns the permissions sorted for stable output
func (s PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
