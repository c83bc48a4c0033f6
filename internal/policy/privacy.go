// privacy.go
//
// Real-estate brokerage back office data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of brokerdb.
// brokerdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// brokerdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with brokerdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package policy decides who may touch which rows of the brokerage data.
//
// Categorical decisions (may this role perform this operation on this kind
// of resource) are expressed as rules returning the Allow, Deny or Skip
// sentinels. Row visibility is expressed as GORM scopes, and row ownership
// for writes is checked with OwnsRow.
package policy

import (
	"errors"
	"fmt"
)

// Policy decision sentinels. Check them with errors.Is.
var (
	// Allow terminates evaluation with an allow decision.
	Allow = errors.New("policy: allow rule")

	// Deny terminates evaluation with a deny decision.
	Deny = errors.New("policy: deny rule")

	// Skip lets evaluation continue with the next rule.
	Skip = errors.New("policy: skip rule")
)

// Errors returned to callers once a decision has been made.
var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Rule makes a decision about a requester performing op on res.
// Returning nil is the same as returning Skip.
type Rule interface {
	Eval(req Requester, res Resource, op Op) error
}

// RuleFunc adapts an ordinary function to a Rule.
type RuleFunc func(req Requester, res Resource, op Op) error

// Eval returns f(req, res, op).
func (f RuleFunc) Eval(req Requester, res Resource, op Op) error {
	return f(req, res, op)
}

// Policy is an ordered list of rules.
type Policy []Rule

// Eval runs the rules in order and returns the first decision that is not
// Skip. A policy where every rule skips denies.
func (p Policy) Eval(req Requester, res Resource, op Op) error {
	for _, rule := range p {
		err := rule.Eval(req, res, op)
		switch {
		case err == nil || errors.Is(err, Skip):
			continue
		default:
			return err
		}
	}
	return Denyf("policy: no rule allowed %s on %s", op, res)
}

// DenyAnonymousRule denies any request without a verified identity.
func DenyAnonymousRule() Rule {
	return RuleFunc(func(req Requester, res Resource, op Op) error {
		if !req.Authenticated {
			return fmt.Errorf("%w: %w", Deny, ErrUnauthenticated)
		}
		return Skip
	})
}

// RoleTableRule allows the operation when the requester's role is listed
// for it in table.
func RoleTableRule(table map[Resource]map[Op][]Role) Rule {
	return RuleFunc(func(req Requester, res Resource, op Op) error {
		for _, role := range table[res][op] {
			if role == req.Role {
				return Allowf("policy: %s may %s %s", req.Role, op, res)
			}
		}
		return Skip
	})
}

// DefaultPolicy is the categorical gate used by every route.
var DefaultPolicy = Policy{
	DenyAnonymousRule(),
	RoleTableRule(accessTable),
}

var (
	staff   = []Role{Admin, Agent}
	viewers = []Role{Viewer}
	anyone  = []Role{Admin, Agent, Viewer}
)

var accessTable = map[Resource]map[Op][]Role{
	Client:   {Read: staff, Create: staff, Update: staff, Delete: staff},
	Property: {Read: staff, Create: staff, Update: staff, Delete: staff},
	Contract: {Read: staff, Create: staff, Update: staff, Delete: staff},
	Visit:    {Read: staff, Create: staff, Update: staff, Delete: staff},
	// Contact forms are write-once; nobody updates them.
	ContactForm: {Read: staff, Create: viewers, Delete: staff},
	Favorite:    {Read: anyone, Create: viewers},
	Dashboard:   {Read: staff},
	Account:     {Read: anyone},
}

// CanAccess is the categorical gate. It returns nil, ErrUnauthenticated or
// ErrForbidden.
func CanAccess(req Requester, res Resource, op Op) error {
	err := DefaultPolicy.Eval(req, res, op)
	switch {
	case errors.Is(err, Allow):
		return nil
	case errors.Is(err, ErrUnauthenticated):
		return ErrUnauthenticated
	default:
		return ErrForbidden
	}
}
