// common.go
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

package handlers

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/brokerdb/internal/middleware"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/localnerve/brokerdb/internal/types"
	"github.com/localnerve/brokerdb/internal/utils"
	"github.com/sirupsen/logrus"
)

// requester returns the identity the auth middleware stored for c.
func requester(c *fiber.Ctx) policy.Requester {
	return middleware.Requester(c)
}

// parseID reads the :id route parameter. Anything that is not a positive
// integer cannot name a row.
func parseID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, services.ErrNotFound
	}
	return id, nil
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// bindInput decodes a JSON, urlencoded or multipart body into out. An empty
// body leaves out untouched.
func bindInput(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return types.NewValidationError(types.NonFieldErrors, "Malformed request body: "+err.Error())
	}
	return nil
}

// formFiles returns the files uploaded under field, if any.
func formFiles(c *fiber.Ctx, field string) ([]*multipart.FileHeader, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, types.NewValidationError(types.NonFieldErrors, "Malformed multipart body: "+err.Error())
	}
	return form.File[field], nil
}

// formValues returns every value sent under field in a form body.
func formValues(c *fiber.Ctx, field string) ([]string, error) {
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationForm) {
		var values []string
		for _, v := range c.Request().PostArgs().PeekMulti(field) {
			values = append(values, string(v))
		}
		return values, nil
	}
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, types.NewValidationError(types.NonFieldErrors, "Malformed multipart body: "+err.Error())
	}
	return form.Value[field], nil
}

// formFile returns the single file uploaded under field, or nil.
func formFile(c *fiber.Ctx, field string) (*multipart.FileHeader, error) {
	files, err := formFiles(c, field)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return files[0], nil
}

// respondError maps service and policy errors onto HTTP responses
func respondError(c *fiber.Ctx, err error, errorType string) error {
	var verr *types.ValidationError
	var cerr *types.CustomError
	var ferr *fiber.Error

	switch {
	case errors.As(err, &verr):
		return utils.ValidationErrorResponse(c, verr.Fields)
	case errors.As(err, &cerr):
		return utils.ErrorResponse(c, cerr.Message, cerr.Code, cerr.Type)
	case errors.Is(err, policy.ErrUnauthenticated):
		return utils.ErrorResponse(c, "Authentication credentials were not provided.", fiber.StatusUnauthorized, "authentication")
	case errors.Is(err, policy.ErrForbidden):
		return utils.ErrorResponse(c, "You do not have permission to perform this action.", fiber.StatusForbidden, "permission")
	case errors.Is(err, services.ErrPropertyNotFound):
		return utils.NotFoundResponse(c, "Property not found.")
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, "Not found.")
	case errors.As(err, &ferr):
		return utils.ErrorResponse(c, ferr.Message, ferr.Code, errorType)
	}

	utils.Logger.WithFields(logrus.Fields{
		"status": fiber.StatusInternalServerError,
		"type":   errorType,
		"url":    c.OriginalURL(),
	}).WithError(err).Error("request failed")
	return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, errorType)
}

// ErrorHandler is the application error handler; errors returned by
// middleware and handlers end up here.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err, "unknown")
}
