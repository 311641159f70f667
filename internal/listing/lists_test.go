package listing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tokokita/internal/sandbox"
	"github.com/suteetoe/tokokita/internal/sandbox/sandboxtest"
)

func TestProductListAgainstDuplicatingBackend(t *testing.T) {
	env := sandboxtest.Start(t, sandbox.Options{PageSize: 10, DuplicateRows: true})
	list := NewProductList(env.API.Products)
	ctx := context.Background()

	require.NoError(t, list.Load(ctx, 1, Reset))
	for list.Snapshot().Page < list.Snapshot().TotalPages {
		require.NoError(t, list.LoadMore(ctx))
	}

	snap := list.Snapshot()
	require.Len(t, snap.Items, 25)
	assert.Equal(t, "BRG001", snap.Items[0].Code)
	assert.Equal(t, "BRG025", snap.Items[24].Code)
	assert.Equal(t, 3, env.Requests())

	require.NoError(t, list.LoadMore(ctx))
	assert.Equal(t, 3, env.Requests())
}

func TestCustomerListSearch(t *testing.T) {
	env := sandboxtest.Start(t, sandbox.Options{})
	list := NewCustomerList(env.API.Customers)
	ctx := context.Background()

	require.NoError(t, list.Search(ctx, "warung"))
	snap := list.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "PLG002", snap.Items[0].Code)

	require.NoError(t, list.Refresh(ctx))
	assert.Len(t, list.Snapshot().Items, 5)
}
