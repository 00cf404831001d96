package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/storage"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	key := "contracts/01HZX-contrato.pdf"

	require.NoError(t, s.Put(ctx, key, []byte("%PDF-1.4 hola"), "application/pdf"))

	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 hola", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, s.Delete(ctx, key), "borrar dos veces no es error")
}

func TestLocalStorage_RechazaClavesFueraDeLaRaiz(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = s.Put(context.Background(), "../fuera.pdf", []byte("x"), "application/pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, storage.DriverLocal, s.Driver())
}
