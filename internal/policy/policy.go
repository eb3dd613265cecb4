// Package policy decides who may register devices for whom, whether a
// registration needs review, and who may resolve a pending request.
package policy

import "byod/internal/domain"

type Outcome int

const (
	Forbidden Outcome = iota
	AutoApprove
	Pending
)

func (o Outcome) String() string {
	switch o {
	case AutoApprove:
		return "auto_approved"
	case Pending:
		return "pending"
	default:
		return "forbidden"
	}
}

// Decide applies the registration rules in order: only admins may register
// for someone else, admins are auto-approved, teachers registering for
// themselves are auto-approved, everything else goes to review.
func Decide(registrar domain.Role, forSelf bool) Outcome {
	switch {
	case !forSelf && registrar != domain.RoleAdmin:
		return Forbidden
	case registrar == domain.RoleAdmin:
		return AutoApprove
	case registrar == domain.RoleTeacher && forSelf:
		return AutoApprove
	default:
		return Pending
	}
}

// ApproverRoles lists the roles allowed to resolve a request raised by a
// user with the given role.
func ApproverRoles(requester domain.Role) []domain.Role {
	switch requester {
	case domain.RoleStudent:
		return []domain.Role{domain.RoleTeacher, domain.RoleAdmin}
	case domain.RoleTeacher:
		return []domain.Role{domain.RoleAdmin}
	default:
		return nil
	}
}

func IsApproverRole(approver, requester domain.Role) bool {
	for _, r := range ApproverRoles(requester) {
		if r == approver {
			return true
		}
	}
	return false
}

// CanResolve returns nil when approver may approve or reject a request
// raised by requester.
func CanResolve(approverID domain.UserID, approverRole domain.Role, requesterID domain.UserID, requesterRole domain.Role) error {
	if approverID == requesterID {
		return domain.ErrSelfApproval
	}
	if !IsApproverRole(approverRole, requesterRole) {
		return domain.ErrNotEligibleApprover
	}
	return nil
}

func CanViewQueue(role domain.Role) bool {
	return role == domain.RoleTeacher || role == domain.RoleAdmin
}

// QueueRoles returns the requester roles whose pending requests appear in
// the review queue of role. Nil means the role has no queue.
func QueueRoles(role domain.Role) []domain.Role {
	var out []domain.Role
	for _, requester := range domain.Roles {
		if IsApproverRole(role, requester) {
			out = append(out, requester)
		}
	}
	return out
}
