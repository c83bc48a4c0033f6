// auth.go
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

package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/brokerdb/internal/auth"
	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/types"
	"gorm.io/gorm"
)

// RequesterKey is the c.Locals key holding the policy.Requester.
const RequesterKey = "requester"

// Auth validates the bearer token, loads the user it names and stores the
// requester for the handlers. Missing, invalid or expired tokens and
// inactive users get 401.
func Auth(db *gorm.DB, issuer *auth.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, err := bearerToken(c)
		if err != nil {
			return unauthorized(err.Error())
		}

		claims, err := issuer.Parse(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return unauthorized("Token expired")
			}
			return unauthorized("Invalid token")
		}
		userID, err := claims.UserID()
		if err != nil {
			return unauthorized(err.Error())
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unauthorized("User not found")
			}
			return err
		}
		if !user.IsActive {
			return unauthorized("User is inactive")
		}

		// the stored role wins over the role claimed in the token
		c.Locals(RequesterKey, policy.ForUser(&user))
		return c.Next()
	}
}

// Requester returns the requester stored by Auth, or the anonymous requester.
func Requester(c *fiber.Ctx) policy.Requester {
	if req, ok := c.Locals(RequesterKey).(policy.Requester); ok {
		return req
	}
	return policy.Anonymous()
}

// RequireAccess rejects requests whose role may never perform op on res.
func RequireAccess(res policy.Resource, op policy.Op) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := policy.CanAccess(Requester(c), res, op); err != nil {
			return err
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	h := c.Get(fiber.HeaderAuthorization)
	if h == "" {
		return "", errors.New("Authentication credentials were not provided")
	}
	if !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("Authorization header must use the Bearer scheme")
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if token == "" {
		return "", errors.New("Authentication credentials were not provided")
	}
	return token, nil
}

func unauthorized(message string) error {
	return &types.CustomError{
		Code:    fiber.StatusUnauthorized,
		Message: message,
		Type:    "authentication",
	}
}
