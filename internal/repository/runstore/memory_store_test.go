package runstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Run{
		MessageId: "m1",
		ComId:     "C001",
		EmpId:     "E042",
		Status:    StatusQueued,
	}))

	run, err := store.Get(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, StatusQueued, run.Status)
	assert.Equal(t, "C001", run.ComId)
	assert.False(t, run.UpdatedAt.IsZero())
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()

	run, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestMemoryStoreSetStatus(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Run{MessageId: "m1", Status: StatusQueued}))
	require.NoError(t, store.SetStatus(ctx, "m1", StatusFailed, "boom"))

	run, err := store.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, "boom", run.ErrorMessage)
}

func TestMemoryStoreSetStatusMissing(t *testing.T) {
	store := NewMemoryStore()
	assert.Error(t, store.SetStatus(context.Background(), "nope", StatusDone, ""))
}
