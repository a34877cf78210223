package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

func setupTestRegistry(t *testing.T) *Registry {
	t.Helper()

	r, err := NewRegistry(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	return r
}

func testDoc(id string, created time.Time) domain.Document {
	return domain.Document{
		ID:        id,
		Title:     "Annual Report",
		Source:    "/tmp/report.pdf",
		MediaType: domain.MediaTypePDF,
		NumPages:  12,
		NumChunks: 48,
		CreatedAt: created,
	}
}

func TestRegistry_SaveAndGet(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	doc := testDoc("doc-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, r.Save(ctx, doc))

	got, err := r.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Source, got.Source)
	assert.Equal(t, domain.MediaTypePDF, got.MediaType)
	assert.Equal(t, 12, got.NumPages)
	assert.Equal(t, 48, got.NumChunks)
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := setupTestRegistry(t)

	_, err := r.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistry_SaveReplacesExisting(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	doc := testDoc("doc-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, r.Save(ctx, doc))

	doc.Title = "Annual Report (revised)"
	doc.NumChunks = 52
	require.NoError(t, r.Save(ctx, doc))

	got, err := r.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Annual Report (revised)", got.Title)
	assert.Equal(t, 52, got.NumChunks)

	docs, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestRegistry_ListOrdering(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, r.Save(ctx, testDoc("oldest", base)))
	require.NoError(t, r.Save(ctx, testDoc("newest", base.Add(2*time.Hour))))
	require.NoError(t, r.Save(ctx, testDoc("middle", base.Add(time.Hour))))

	docs, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "newest", docs[0].ID)
	assert.Equal(t, "middle", docs[1].ID)
	assert.Equal(t, "oldest", docs[2].ID)
}

func TestRegistry_Delete(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, testDoc("doc-1", time.Now().UTC())))
	require.NoError(t, r.Delete(ctx, "doc-1"))

	_, err := r.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting an unknown ID is a no-op.
	require.NoError(t, r.Delete(ctx, "doc-1"))
}

func TestRegistry_ReopenPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	r, err := NewRegistry(dir)
	require.NoError(t, err)
	require.NoError(t, r.Save(ctx, testDoc("doc-1", time.Now().UTC())))
	require.NoError(t, r.Close())

	r2, err := NewRegistry(dir)
	require.NoError(t, err)
	defer r2.Close()

	got, err := r2.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
}
