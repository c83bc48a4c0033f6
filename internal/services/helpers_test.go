package services_test

import (
	"strconv"
	"testing"

	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/testutil"
	"github.com/localnerve/brokerdb/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func flex(id uint64) *types.FlexUint64 {
	return ptr(types.FlexUint64(id))
}

func money(s string) *decimal.Decimal {
	return ptr(decimal.RequireFromString(s))
}

func date(t *testing.T, s string) *types.Date {
	t.Helper()
	d, err := types.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func newStore(t *testing.T) *storage.LocalStore {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// assertFieldError checks that err is a validation error carrying msg on
// field.
func assertFieldError(t *testing.T, err error, field, msg string) {
	t.Helper()
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields[field], msg, "errors: %v", verr.Fields)
}

func pdf() testutil.FilePart {
	return testutil.Document("document")
}

func fmtID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
