package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/localnerve/brokerdb/internal/testutil"
	"github.com/localnerve/brokerdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type contractFixture struct {
	db       *gorm.DB
	admin    *models.User
	agent    *models.User
	other    *models.User
	property *models.Property
	client   *models.Client
}

func newContractFixture(t *testing.T) *contractFixture {
	db := testutil.OpenDB(t)
	agent := testutil.CreateUser(t, db, models.RoleAgent)
	return &contractFixture{
		db:       db,
		admin:    testutil.CreateUser(t, db, models.RoleAdmin),
		agent:    agent,
		other:    testutil.CreateUser(t, db, models.RoleAgent),
		property: testutil.CreateProperty(t, db, agent, models.PropertyAvailable),
		client:   testutil.CreateClient(t, db, agent),
	}
}

func (f *contractFixture) input(t *testing.T, typ models.ContractType, status models.ContractStatus) services.ContractInput {
	return services.ContractInput{
		Property:  flex(f.property.ID),
		Client:    flex(f.client.ID),
		Type:      ptr(typ),
		Price:     money("1500.00"),
		StartDate: date(t, "2026-01-01"),
		Status:    ptr(status),
		Document:  testutil.FileHeaders(t, pdf())[0],
	}
}

func TestCreateContractDraftLeavesPropertyAvailable(t *testing.T) {
	f := newContractFixture(t)
	store := newStore(t)
	req := testutil.Requester(f.agent)

	contract, err := services.CreateContract(context.Background(), f.db, store, req, f.input(t, models.ContractRental, models.ContractDraft))
	require.NoError(t, err)
	assert.Equal(t, f.agent.ID, contract.AgentID)
	assert.Equal(t, models.ContractDraft, contract.Status)
	require.NotNil(t, contract.Property)
	assert.Equal(t, models.PropertyAvailable, contract.Property.Status)

	_, err = os.Stat(filepath.Join(store.Root, filepath.FromSlash(contract.Document)))
	assert.NoError(t, err)
}

func TestCreateContractDefaultsToDraft(t *testing.T) {
	f := newContractFixture(t)
	in := f.input(t, models.ContractSale, models.ContractDraft)
	in.Status = nil

	contract, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), in)
	require.NoError(t, err)
	assert.Equal(t, models.ContractDraft, contract.Status)
}

func TestCreateSignedContractPropagatesStatus(t *testing.T) {
	tests := []struct {
		typ  models.ContractType
		want models.PropertyStatus
	}{
		{models.ContractRental, models.PropertyRented},
		{models.ContractSale, models.PropertySold},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			f := newContractFixture(t)
			_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), f.input(t, tt.typ, models.ContractSigned))
			require.NoError(t, err)

			var property models.Property
			testutil.Reload(t, f.db, &property, f.property.ID)
			assert.Equal(t, tt.want, property.Status)
		})
	}
}

func TestCreateContractRules(t *testing.T) {
	t.Run("end before start", func(t *testing.T) {
		f := newContractFixture(t)
		in := f.input(t, models.ContractRental, models.ContractDraft)
		in.EndDate = date(t, "2025-12-31")
		// ownership would also fail; the date rule runs first
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.other), in)
		assertFieldError(t, err, "end_date", services.MsgEndBeforeStart)
	})

	t.Run("end equal to start", func(t *testing.T) {
		f := newContractFixture(t)
		in := f.input(t, models.ContractRental, models.ContractDraft)
		in.EndDate = date(t, "2026-01-01")
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), in)
		assert.NoError(t, err)
	})

	t.Run("foreign property", func(t *testing.T) {
		f := newContractFixture(t)
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.other), f.input(t, models.ContractRental, models.ContractDraft))
		assertFieldError(t, err, types.NonFieldErrors, services.MsgForeignProperty)
	})

	t.Run("foreign client", func(t *testing.T) {
		f := newContractFixture(t)
		in := f.input(t, models.ContractRental, models.ContractDraft)
		in.Client = flex(testutil.CreateClient(t, f.db, f.other).ID)
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), in)
		assertFieldError(t, err, types.NonFieldErrors, services.MsgForeignClient)
	})

	t.Run("property not available", func(t *testing.T) {
		f := newContractFixture(t)
		require.NoError(t, f.db.Model(f.property).Update("status", models.PropertyReserved).Error)
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), f.input(t, models.ContractRental, models.ContractDraft))
		assertFieldError(t, err, types.NonFieldErrors, services.MsgPropertyNotAvailable)
	})

	t.Run("already signed", func(t *testing.T) {
		f := newContractFixture(t)
		testutil.CreateContract(t, f.db, f.property, f.client, f.agent, models.ContractSale, models.ContractSigned)
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), f.input(t, models.ContractRental, models.ContractSigned))
		assertFieldError(t, err, types.NonFieldErrors, services.MsgAlreadySigned)
	})

	t.Run("signed conflict precedes availability", func(t *testing.T) {
		f := newContractFixture(t)
		testutil.CreateContract(t, f.db, f.property, f.client, f.agent, models.ContractRental, models.ContractSigned)
		require.NoError(t, f.db.Model(f.property).Update("status", models.PropertyRented).Error)

		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), f.input(t, models.ContractSale, models.ContractSigned))
		assertFieldError(t, err, types.NonFieldErrors, services.MsgAlreadySigned)

		_, err = services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), f.input(t, models.ContractSale, models.ContractDraft))
		assertFieldError(t, err, types.NonFieldErrors, services.MsgPropertyNotAvailable)
	})

	t.Run("draft beside a signed contract", func(t *testing.T) {
		f := newContractFixture(t)
		testutil.CreateContract(t, f.db, f.property, f.client, f.agent, models.ContractSale, models.ContractSigned)
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), f.input(t, models.ContractRental, models.ContractDraft))
		assert.NoError(t, err)
	})

	t.Run("unknown property", func(t *testing.T) {
		f := newContractFixture(t)
		in := f.input(t, models.ContractRental, models.ContractDraft)
		in.Property = flex(9999)
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), in)
		assertFieldError(t, err, "property", `Invalid pk "9999" - object does not exist.`)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newContractFixture(t)
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), services.ContractInput{})
		for _, field := range []string{"property", "client", "type", "price", "start_date"} {
			assertFieldError(t, err, field, "This field is required.")
		}
		assertFieldError(t, err, "document", "No file was submitted.")
	})

	t.Run("bad type", func(t *testing.T) {
		f := newContractFixture(t)
		_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), f.input(t, "lease", models.ContractDraft))
		assertFieldError(t, err, "type", `"lease" is not a valid choice.`)
	})
}

func TestCreateContractAdminSkipsOwnership(t *testing.T) {
	f := newContractFixture(t)
	contract, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.admin), f.input(t, models.ContractRental, models.ContractDraft))
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, contract.AgentID)
}

func TestCreateContractViewerForbidden(t *testing.T) {
	f := newContractFixture(t)
	viewer := testutil.CreateUser(t, f.db, models.RoleViewer)
	_, err := services.CreateContract(context.Background(), f.db, newStore(t), testutil.Requester(viewer), f.input(t, models.ContractRental, models.ContractDraft))
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestUpdateContractToSigned(t *testing.T) {
	f := newContractFixture(t)
	req := testutil.Requester(f.agent)
	draft := testutil.CreateContract(t, f.db, f.property, f.client, f.agent, models.ContractRental, models.ContractDraft)
	second := testutil.CreateContract(t, f.db, f.property, f.client, f.agent, models.ContractSale, models.ContractDraft)

	contract, err := services.UpdateContract(context.Background(), f.db, newStore(t), req, draft.ID,
		services.ContractInput{Status: ptr(models.ContractSigned)})
	require.NoError(t, err)
	assert.Equal(t, models.ContractSigned, contract.Status)

	var property models.Property
	testutil.Reload(t, f.db, &property, f.property.ID)
	assert.Equal(t, models.PropertyRented, property.Status)

	// signed to signed is not a new signing
	_, err = services.UpdateContract(context.Background(), f.db, newStore(t), req, draft.ID,
		services.ContractInput{Price: money("1600.00")})
	require.NoError(t, err)

	_, err = services.UpdateContract(context.Background(), f.db, newStore(t), req, second.ID,
		services.ContractInput{Status: ptr(models.ContractSigned)})
	assertFieldError(t, err, types.NonFieldErrors, services.MsgAlreadySigned)
}

func TestUpdateContractMoveToUnavailableProperty(t *testing.T) {
	f := newContractFixture(t)
	contract := testutil.CreateContract(t, f.db, f.property, f.client, f.agent, models.ContractRental, models.ContractDraft)
	sold := testutil.CreateProperty(t, f.db, f.agent, models.PropertySold)

	_, err := services.UpdateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), contract.ID,
		services.ContractInput{Property: flex(sold.ID)})
	assertFieldError(t, err, types.NonFieldErrors, services.MsgPropertyNotAvailable)

	// the same property is not a move
	require.NoError(t, f.db.Model(f.property).Update("status", models.PropertyReserved).Error)
	_, err = services.UpdateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), contract.ID,
		services.ContractInput{Property: flex(f.property.ID), Price: money("10")})
	assert.NoError(t, err)
}

func TestUpdateContractEndDateAgainstStoredStart(t *testing.T) {
	f := newContractFixture(t)
	contract := testutil.CreateContract(t, f.db, f.property, f.client, f.agent, models.ContractRental, models.ContractDraft)

	_, err := services.UpdateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.agent), contract.ID,
		services.ContractInput{EndDate: date(t, "2000-01-01")})
	assertFieldError(t, err, "end_date", services.MsgEndBeforeStart)
}

func TestUpdateContractReplacesDocument(t *testing.T) {
	f := newContractFixture(t)
	store := newStore(t)
	req := testutil.Requester(f.agent)

	created, err := services.CreateContract(context.Background(), f.db, store, req, f.input(t, models.ContractRental, models.ContractDraft))
	require.NoError(t, err)
	oldPath := filepath.Join(store.Root, filepath.FromSlash(created.Document))

	updated, err := services.UpdateContract(context.Background(), f.db, store, req, created.ID,
		services.ContractInput{Document: testutil.FileHeaders(t, pdf())[0]})
	require.NoError(t, err)
	assert.NotEqual(t, created.Document, updated.Document)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, services.DeleteContract(context.Background(), f.db, store, req, created.ID))
	_, err = os.Stat(filepath.Join(store.Root, filepath.FromSlash(updated.Document)))
	assert.True(t, os.IsNotExist(err))
}

func TestContractVisibility(t *testing.T) {
	f := newContractFixture(t)
	contract := testutil.CreateContract(t, f.db, f.property, f.client, f.agent, models.ContractRental, models.ContractDraft)

	_, err := services.GetContract(context.Background(), f.db, testutil.Requester(f.other), contract.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = services.UpdateContract(context.Background(), f.db, newStore(t), testutil.Requester(f.other), contract.ID,
		services.ContractInput{Price: money("1")})
	assert.ErrorIs(t, err, services.ErrNotFound)

	got, err := services.GetContract(context.Background(), f.db, testutil.Requester(f.admin), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, f.client.Name, got.Client.Name)

	list, err := services.ListContracts(context.Background(), f.db, testutil.Requester(f.other))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteContractKeepsPropertyStatus(t *testing.T) {
	f := newContractFixture(t)
	store := newStore(t)
	req := testutil.Requester(f.agent)

	contract, err := services.CreateContract(context.Background(), f.db, store, req, f.input(t, models.ContractSale, models.ContractSigned))
	require.NoError(t, err)
	require.NoError(t, services.DeleteContract(context.Background(), f.db, store, req, contract.ID))

	var property models.Property
	testutil.Reload(t, f.db, &property, f.property.ID)
	assert.Equal(t, models.PropertySold, property.Status)
}
