package knowledge

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/answerdesk/answerdesk/internal/log"
	"github.com/answerdesk/answerdesk/internal/testutil"
)

const testDimension = 768

// testVector builds a unit-ish vector whose direction is controlled by
// the seed component, so cosine distances between different seeds are
// predictable enough for ordering assertions.
func testVector(seed float32) []float32 {
	vec := make([]float32, testDimension)
	vec[0] = 1
	vec[1] = seed
	return vec
}

func TestStore_InsertAndQuery_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	store, err := New(ctx, db.Pool, testDimension, log.NewNop())
	require.NoError(t, err)

	docs := []Document{
		{
			ID:      uuid.New().String(),
			Content: "Refunds are processed within 5 business days.",
			Vector:  testVector(0),
			Metadata: map[string]any{
				"source_type":  SourceTypeText,
				"chunk_index":  0,
				"total_chunks": 2,
			},
		},
		{
			ID:      uuid.New().String(),
			Content: "Shipping takes 3 to 7 days depending on region.",
			Vector:  testVector(2),
			Metadata: map[string]any{
				"source_type":  SourceTypeText,
				"chunk_index":  1,
				"total_chunks": 2,
			},
		},
	}

	require.NoError(t, store.Insert(ctx, docs))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Query with the first document's exact vector: it must come back
	// first with near-zero distance, and ordering must be ascending.
	results, err := store.Query(ctx, testVector(0), 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, docs[0].Content, results[0].Content)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)

	// Metadata round-trips through JSONB. Numbers come back as float64.
	assert.Equal(t, SourceTypeText, results[0].Metadata["source_type"])
	assert.Equal(t, float64(0), results[0].Metadata["chunk_index"])
}

func TestStore_QueryLimit_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	store, err := New(ctx, db.Pool, testDimension, log.NewNop())
	require.NoError(t, err)

	docs := make([]Document, 8)
	for i := range docs {
		docs[i] = Document{
			ID:      uuid.New().String(),
			Content: "chunk",
			Vector:  testVector(float32(i)),
		}
	}
	require.NoError(t, store.Insert(ctx, docs))

	results, err := store.Query(ctx, testVector(0), 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestStore_QueryEmptyCollection_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	store, err := New(ctx, db.Pool, testDimension, log.NewNop())
	require.NoError(t, err)

	results, err := store.Query(ctx, testVector(0), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_InsertRollsBackOnBadRow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	store, err := New(ctx, db.Pool, testDimension, log.NewNop())
	require.NoError(t, err)

	// Second row has a wrong-dimension vector; the whole batch must fail
	// and leave the collection unchanged.
	docs := []Document{
		{ID: uuid.New().String(), Content: "good", Vector: testVector(0)},
		{ID: uuid.New().String(), Content: "bad", Vector: []float32{1, 2, 3}},
	}

	err = store.Insert(ctx, docs)
	require.Error(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_Clear_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	store, err := New(ctx, db.Pool, testDimension, log.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.Insert(ctx, []Document{
		{ID: uuid.New().String(), Content: "doomed", Vector: testVector(0)},
	}))

	require.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_DimensionMismatch_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	_, err := New(ctx, db.Pool, 1536, log.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}
