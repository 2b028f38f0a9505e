// Package authz decides whether an authenticated user may change a course.
package authz

import (
	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/user"
)

type Decision int

const (
	Deny Decision = iota
	Permit
)

func (d Decision) String() string {
	if d == Permit {
		return "permit"
	}
	return "deny"
}

// Authorize decides whether identity may update or delete c.
// Only the owner may; the zero Decision is Deny.
func Authorize(identity user.User, c course.Course) Decision {
	if identity.ID != 0 && c.OwnerID == identity.ID {
		return Permit
	}

	return Deny
}
