package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/restaurant-cli/internal/model"
)

func TestOpen_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "open.db")
	st, err := Open(context.Background(), "sqlite", dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	_, ok := st.(*SQLiteStore)
	assert.True(t, ok)

	n, err := st.SaveRestaurants(context.Background(), sampleRestaurants())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "postgres", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires store.database_url")

	_, err = Open(context.Background(), "mysql", "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "mysql"`)
}

func TestDedupe(t *testing.T) {
	in := []model.Restaurant{
		{Name: "a", Address: "x", Region: "first"},
		{Name: "a", Address: "x", Region: "second"},
		{Name: "a", Address: "y"},
	}
	out := dedupe(in)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Region)
}

func TestDedupe_TrimsKeyColumns(t *testing.T) {
	in := []model.Restaurant{
		{Name: " 땀땀 ", Address: "서울 강남구 ", Region: "first"},
		{Name: "땀땀", Address: "서울 강남구", Region: "second"},
	}
	out := dedupe(in)
	require.Len(t, out, 1)
	assert.Equal(t, "땀땀", out[0].Name)
	assert.Equal(t, "서울 강남구", out[0].Address)
	assert.Equal(t, " 땀땀 ", in[0].Name)
}
