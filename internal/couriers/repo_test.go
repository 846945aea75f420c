package couriers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gasflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

func TestRepositoryIdentifierTakenIgnoresCase(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	courier := &models.Courier{Identifier: "Moto-01", Active: true}
	require.NoError(t, repo.Create(ctx, courier))

	taken, err := repo.IdentifierTaken(ctx, "moto-01", uuid.Nil)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.IdentifierTaken(ctx, "MOTO-01", courier.ID)
	require.NoError(t, err)
	require.False(t, taken, "the courier itself is excluded")
}

func TestRepositoryListActiveOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	a := &models.Courier{Identifier: "b-moto", Active: true}
	b := &models.Courier{Identifier: "a-carro", Active: true}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.SetActive(ctx, a.ID, false))

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "a-carro", all[0].Identifier)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, b.ID, active[0].ID)
}
