package eventlog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppendAndLoadPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Append(ctx, "g1", 1, Intent{Type: RNGSeed}))
	require.NoError(t, s.Append(ctx, "g1", 2, Intent{Type: Join, PlayerID: "p1"}))

	records, err := s.Load(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, RNGSeed, records[0].Intent.Type)
	assert.Equal(t, Join, records[1].Intent.Type)
}

func TestFileStoreRoundTrips(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Append(ctx, "g1", 1, Intent{Type: RNGSeed}))
	require.NoError(t, s.Append(ctx, "g1", 2, Intent{Type: DrawCards, PlayerID: "p1"}))
	require.NoError(t, s.Close())

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	records, err := reopened.Load(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].Seq)
	assert.Equal(t, int64(2), records[1].Seq)
}

func TestFileStoreLoadMissingGameReturnsEmpty(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	records, err := s.Load(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNormaliseAcceptsFlatAndNestedShapes(t *testing.T) {
	flat := json.RawMessage(`{"count":7}`)
	out, err := Normalise(flat)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":7}`, string(out))

	nested := json.RawMessage(`{"payload":{"count":7}}`)
	out, err = Normalise(nested)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":7}`, string(out))
}
