package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	membershipdomain "paladin-core/internal/membership/domain"
)

// Organisation is the tenant boundary for memberships, roles, and invitations.
// Members is populated only when explicitly requested; MemberCount is always set.
type Organisation struct {
	ID          uuid.UUID
	Name        string
	Plan        Plan
	MemberCount int
	CreatedAt   time.Time
	Members     []*membershipdomain.Membership
}

// Plan is the organisation's subscription tier.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// Valid reports whether p is a defined plan.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// ParsePlan parses a plan name case-insensitively.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown organisation plan %q", s)
	}
	return p, nil
}

// Validate validates the organisation for persistence. Returns an error
// describing the first validation failure.
func (o *Organisation) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return errors.New("name is required")
	}
	if o.Plan == "" {
		o.Plan = PlanFree
	}
	if !o.Plan.Valid() {
		return fmt.Errorf("unknown organisation plan %q", o.Plan)
	}
	return nil
}
