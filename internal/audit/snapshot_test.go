package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/almacen-api/internal/models"
)

func TestSnapshotCaptureAndConsume(t *testing.T) {
	store := NewMemorySnapshotStore(DefaultRegistry(), 10, time.Minute)

	fields := Fields{"id": uint(3), "nombre": "Bebidas"}
	store.Capture(models.EntityCategory, "3", fields)
	fields["nombre"] = "mutated after capture"
	require.Equal(t, 1, store.Len())

	snap, ok := store.Consume(models.EntityCategory, "3")
	require.True(t, ok)
	require.Equal(t, "Bebidas", snap.Fields["nombre"])
	require.Equal(t, "3", snap.ID)

	_, ok = store.Consume(models.EntityCategory, "3")
	require.False(t, ok, "consume removes the snapshot")
	require.Equal(t, 0, store.Len())
}

func TestSnapshotCaptureIgnoresUnauditedAndUnsaved(t *testing.T) {
	store := NewMemorySnapshotStore(DefaultRegistry(), 10, time.Minute)

	store.Capture(models.EntityUser, "1", Fields{"id": uint(1)})
	store.Capture(models.EntityCategory, "", Fields{"nombre": "nuevo"})
	require.Equal(t, 0, store.Len())

	_, ok := store.Consume(models.EntityCategory, "")
	require.False(t, ok)
}

func TestSnapshotStoreIsBounded(t *testing.T) {
	store := NewMemorySnapshotStore(DefaultRegistry(), 2, time.Minute)

	store.Capture(models.EntityProduct, "1", Fields{})
	store.Capture(models.EntityProduct, "2", Fields{})
	store.Capture(models.EntityProduct, "3", Fields{})
	require.Equal(t, 2, store.Len())

	_, ok := store.Consume(models.EntityProduct, "1")
	require.False(t, ok, "oldest entry is evicted")
}

func TestSnapshotStoreExpiresAbandonedEntries(t *testing.T) {
	store := NewMemorySnapshotStore(DefaultRegistry(), 10, 20*time.Millisecond)

	store.Capture(models.EntityProduct, "9", Fields{"nombre": "Arroz"})
	time.Sleep(60 * time.Millisecond)

	_, ok := store.Consume(models.EntityProduct, "9")
	require.False(t, ok)
}
