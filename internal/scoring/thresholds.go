package scoring

import "fmt"

// Role tags the audience of a dashboard. The caller supplies it; the core
// never derives it from anything.
type Role string

const (
	RoleDeveloper   Role = "developer"
	RoleTeamLeader  Role = "team_leader"
	RoleManager     Role = "manager"
	RoleHR          Role = "hr"
	RoleAdmin       Role = "admin"
	RoleStakeholder Role = "stakeholder"
)

// AlertState is the threshold classification of a score for a given role.
type AlertState string

const (
	AlertSafe    AlertState = "safe"
	AlertWarning AlertState = "warning"
	AlertDanger  AlertState = "danger"
)

// ThresholdProfile is a per-role pair of alerting cutoffs on the 0-100
// scale. It gates alerting only; score computation is role-independent.
type ThresholdProfile struct {
	Warning int `json:"warning"`
	Danger  int `json:"danger"`
}

// Validate enforces warning < danger with both cutoffs in [0,100].
func (p ThresholdProfile) Validate() error {
	if p.Warning < 0 || p.Warning > 100 || p.Danger < 0 || p.Danger > 100 {
		return fmt.Errorf("threshold cutoffs %d/%d outside [0,100]", p.Warning, p.Danger)
	}
	if p.Warning >= p.Danger {
		return fmt.Errorf("warning cutoff %d not below danger cutoff %d", p.Warning, p.Danger)
	}
	return nil
}

// Classify maps a score onto the profile. Boundaries are inclusive: a score
// exactly at a cutoff counts as crossing it.
func (p ThresholdProfile) Classify(score int) AlertState {
	switch {
	case score >= p.Danger:
		return AlertDanger
	case score >= p.Warning:
		return AlertWarning
	default:
		return AlertSafe
	}
}

var roleThresholds = map[Role]ThresholdProfile{
	RoleDeveloper:   {Warning: 40, Danger: 60},
	RoleTeamLeader:  {Warning: 45, Danger: 65},
	RoleManager:     {Warning: 50, Danger: 70},
	RoleHR:          {Warning: 60, Danger: 75},
	RoleAdmin:       {Warning: 40, Danger: 60},
	RoleStakeholder: {Warning: 50, Danger: 70},
}

// ProfileFor returns the alerting profile for a role, falling back to the
// developer profile for unknown roles.
func ProfileFor(role Role) ThresholdProfile {
	if p, ok := roleThresholds[role]; ok {
		return p
	}
	return roleThresholds[RoleDeveloper]
}

// ParseRole maps a request string onto a known role. The second return is
// false for roles no threshold profile exists for.
func ParseRole(s string) (Role, bool) {
	role := Role(s)
	_, ok := roleThresholds[role]
	return role, ok
}
