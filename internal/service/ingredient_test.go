package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListIngredientsPrefix(t *testing.T) {
	db := setupDB(t)
	svc := NewIngredientService(db)
	createIngredient(t, db, "Salt", "g")
	createIngredient(t, db, "salmon", "g")
	createIngredient(t, db, "pepper", "g")

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Prefix matching is case-insensitive.
	matched, err := svc.List(context.Background(), "sal")
	require.NoError(t, err)
	require.Len(t, matched, 2)

	none, err := svc.List(context.Background(), "alt")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetIngredient(t *testing.T) {
	db := setupDB(t)
	svc := NewIngredientService(db)
	salt := createIngredient(t, db, "Salt", "g")

	got, err := svc.Get(context.Background(), salt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salt", got.Name)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportFileJSON(t *testing.T) {
	db := setupDB(t)
	svc := NewIngredientService(db)

	path := filepath.Join(t.TempDir(), "ingredients.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "flour", "measurement_unit": "g"},
		{"name": "milk", "measurement_unit": "ml"},
		{"name": "", "measurement_unit": "g"}
	]`), 0o644))

	created, err := svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// Re-importing skips rows that already exist.
	created, err = svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestImportFileCSV(t *testing.T) {
	db := setupDB(t)
	svc := NewIngredientService(db)

	path := filepath.Join(t.TempDir(), "ingredients.csv")
	require.NoError(t, os.WriteFile(path, []byte("flour,g\nmilk,ml\n"), 0o644))

	created, err := svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	items, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestImportFileUnsupportedFormat(t *testing.T) {
	db := setupDB(t)
	svc := NewIngredientService(db)

	path := filepath.Join(t.TempDir(), "ingredients.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flour: g"), 0o644))

	_, err := svc.ImportFile(context.Background(), path)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
