package policy

import (
	"fmt"
	"strings"

	"github.com/localnerve/brokerdb/internal/models"
)

// Role is the closed set of user roles.
type Role = models.Role

const (
	Admin  = models.RoleAdmin
	Agent  = models.RoleAgent
	Viewer = models.RoleViewer
)

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Requester is the identity every policy call is made for.
type Requester struct {
	UserID        uint64
	Role          Role
	Authenticated bool
}

// Anonymous returns the requester of an unauthenticated request.
func Anonymous() Requester {
	return Requester{}
}

// ForUser returns the requester for an authenticated user.
func ForUser(user *models.User) Requester {
	return Requester{UserID: user.ID, Role: user.Role, Authenticated: true}
}

// IsAdmin reports whether the requester is an authenticated admin.
func (r Requester) IsAdmin() bool {
	return r.Authenticated && r.Role == Admin
}

// String is used in log fields.
func (r Requester) String() string {
	if !r.Authenticated {
		return "anonymous"
	}
	return fmt.Sprintf("%s:%d", r.Role, r.UserID)
}

// Resource is a kind of entity guarded by the policy.
type Resource int

const (
	Client Resource = iota + 1
	Property
	Contract
	Visit
	ContactForm
	Favorite
	Dashboard
	Account
)

func (r Resource) String() string {
	switch r {
	case Client:
		return "client"
	case Property:
		return "property"
	case Contract:
		return "contract"
	case Visit:
		return "visit"
	case ContactForm:
		return "contact_form"
	case Favorite:
		return "favorite"
	case Dashboard:
		return "dashboard"
	case Account:
		return "account"
	}
	return fmt.Sprintf("resource(%d)", int(r))
}

// Op is an operation on a resource.
type Op int

const (
	Read Op = iota + 1
	Create
	Update
	Delete
)

func (o Op) String() string {
	switch o {
	case Read:
		return "read"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("op(%d)", int(o))
}
