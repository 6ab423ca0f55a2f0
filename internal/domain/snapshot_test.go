package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackup(t *testing.T) {
	t.Run("logs key is optional", func(t *testing.T) {
		imported, err := ParseBackup([]byte(`{"products": [{"id": "p1", "stock": 0}], "sales": [{"id": "s1", "quantity": 1}]}`))
		require.NoError(t, err)
		assert.Len(t, imported.Products, 1)
		assert.Len(t, imported.Sales, 1)
		assert.Nil(t, imported.Logs)
	})

	t.Run("negative stock", func(t *testing.T) {
		_, err := ParseBackup([]byte(`{"products": [{"id": "x", "stock": -4}], "sales": []}`))
		assert.ErrorIs(t, err, ErrInvalidBackup)
		assert.ErrorContains(t, err, `"x"`)
	})

	t.Run("sale without units", func(t *testing.T) {
		_, err := ParseBackup([]byte(`{"products": [], "sales": [{"id": "s", "quantity": -2}]}`))
		assert.ErrorIs(t, err, ErrInvalidBackup)
	})
}
