package models

import (
	"fmt"
	"slices"
	"strings"
)

// PlanTier is the subscription level governing feature access for a user.
type PlanTier string

const (
	PlanFree PlanTier = "free"
	PlanPlus PlanTier = "plus"
	PlanPro  PlanTier = "pro"
)

// PlanTiers lists every valid [PlanTier] from lowest to highest.
var PlanTiers = []PlanTier{PlanFree, PlanPlus, PlanPro}

// ParsePlanTier validates s against the closed set of plan tiers.
func ParsePlanTier(s string) (PlanTier, error) {
	p := PlanTier(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(PlanTiers, p) {
		return p, nil
	}
	return "", fmt.Errorf("unknown plan tier %q", s)
}

// Paid reports whether the tier is a paid subscription.
func (p PlanTier) Paid() bool { return p == PlanPlus || p == PlanPro }

func (p PlanTier) String() string { return string(p) }

// Role is a capability grant independent of the plan tier.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleCreator   Role = "creator"
	RoleCurator   Role = "curator"
)

// Roles lists every valid [Role].
var Roles = []Role{RoleAdmin, RoleModerator, RoleCreator, RoleCurator}

// ParseRole validates s against the closed set of roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Roles, r) {
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// RoleSet is an unordered, duplicate-free collection of roles.
//
// It is kept sorted so that equal sets compare and print identically.
type RoleSet []Role

// NewRoleSet builds a [RoleSet] from roles, dropping duplicates.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if !slices.Contains(set, r) {
			set = append(set, r)
		}
	}
	slices.Sort(set)
	return set
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	_, found := slices.BinarySearch(s, r)
	return found
}

// Clone returns a copy that shares no memory with s.
func (s RoleSet) Clone() RoleSet {
	if s == nil {
		return RoleSet{}
	}
	return slices.Clone(s)
}

// Strings returns the roles as plain strings.
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

func (s RoleSet) String() string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s.Strings(), ",")
}

// Resolution is the outcome of resolving one user's types, as reported by bulk operations.
//
// Code and Error are set only when resolution failed.
type Resolution struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email,omitempty"`
	PlanTier PlanTier `json:"plan_tier,omitempty"`
	Roles    RoleSet  `json:"roles,omitempty"`
	Code     string   `json:"code,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// OK reports whether resolution succeeded.
func (r Resolution) OK() bool { return r.Error == "" }
