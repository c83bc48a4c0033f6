package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyEvalFirstDecisionWins(t *testing.T) {
	calls := 0
	p := Policy{
		RuleFunc(func(Requester, Resource, Op) error { calls++; return Skip }),
		RuleFunc(func(Requester, Resource, Op) error { calls++; return nil }),
		RuleFunc(func(Requester, Resource, Op) error { calls++; return Allow }),
		RuleFunc(func(Requester, Resource, Op) error { calls++; return Deny }),
	}

	err := p.Eval(Requester{}, Client, Read)
	assert.ErrorIs(t, err, Allow)
	assert.Equal(t, 3, calls)
}

func TestPolicyEvalAllSkipDenies(t *testing.T) {
	p := Policy{RuleFunc(func(Requester, Resource, Op) error { return Skip })}
	assert.ErrorIs(t, p.Eval(Requester{}, Client, Read), Deny)
}

func TestCanAccess(t *testing.T) {
	admin := Requester{UserID: 1, Role: Admin, Authenticated: true}
	agent := Requester{UserID: 2, Role: Agent, Authenticated: true}
	viewer := Requester{UserID: 3, Role: Viewer, Authenticated: true}

	tests := []struct {
		name string
		req  Requester
		res  Resource
		op   Op
		want error
	}{
		{"anonymous read property", Anonymous(), Property, Read, ErrUnauthenticated},
		{"anonymous contact form", Anonymous(), ContactForm, Create, ErrUnauthenticated},
		{"admin create client", admin, Client, Create, nil},
		{"agent delete contract", agent, Contract, Delete, nil},
		{"viewer list properties", viewer, Property, Read, ErrForbidden},
		{"viewer create visit", viewer, Visit, Create, ErrForbidden},
		{"viewer dashboard", viewer, Dashboard, Read, ErrForbidden},
		{"agent dashboard", agent, Dashboard, Read, nil},
		{"viewer contact form", viewer, ContactForm, Create, nil},
		{"agent contact form create", agent, ContactForm, Create, ErrForbidden},
		{"admin contact form create", admin, ContactForm, Create, ErrForbidden},
		{"contact form update", admin, ContactForm, Update, ErrForbidden},
		{"viewer toggle favorite", viewer, Favorite, Create, nil},
		{"agent toggle favorite", agent, Favorite, Create, ErrForbidden},
		{"agent list favorites", agent, Favorite, Read, nil},
		{"viewer account", viewer, Account, Read, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAccess(tt.req, tt.res, tt.op)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestOwnsRow(t *testing.T) {
	assert.True(t, OwnsRow(Requester{UserID: 1, Role: Admin, Authenticated: true}, 99))
	assert.True(t, OwnsRow(Requester{UserID: 2, Role: Agent, Authenticated: true}, 2))
	assert.False(t, OwnsRow(Requester{UserID: 2, Role: Agent, Authenticated: true}, 3))
	assert.False(t, OwnsRow(Requester{UserID: 3, Role: Viewer, Authenticated: true}, 3))
	assert.False(t, OwnsRow(Requester{UserID: 1, Role: Admin}, 1))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Agent ")
	assert.NoError(t, err)
	assert.Equal(t, Agent, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}
