package badger

import (
	"context"
	"testing"

	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepository_PutAndGet(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	doc := &core.Document{Type: "article", Id: "1", Title: "Needles", Body: "in haystacks"}
	require.NoError(t, repos.Documents.PutDocuments(ctx, doc))

	got, err := repos.Documents.GetDocument(ctx, core.IdentityHit{ModelType: "article", ModelID: "1"})
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = repos.Documents.GetDocument(ctx, core.IdentityHit{ModelType: "article", ModelID: "2"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = repos.Documents.PutDocuments(ctx, &core.Document{Id: "x"})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

func TestDocumentRepository_GetDocuments(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, repos.Documents.PutDocuments(ctx,
		&core.Document{Type: "article", Id: "1"},
		&core.Document{Type: "article", Id: "2"},
		&core.Document{Type: "note", Id: "3"},
	))

	docs, err := repos.Documents.GetDocuments(ctx, "article", "1", "2")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = repos.Documents.GetDocuments(ctx, "article", "1", "3")
	assert.ErrorIs(t, err, storage.ErrNotAllFound)
	assert.Len(t, docs, 1)
	assert.Contains(t, docs, "1")
}

func TestDocumentRepository_ListAndDelete(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	require.NoError(t, repos.Documents.PutDocuments(ctx,
		&core.Document{Type: "article", Id: "1"},
		&core.Document{Type: "article", Id: "2"},
		&core.Document{Type: "articles", Id: "3"},
	))

	docs, err := repos.Documents.ListDocuments(ctx, "article")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = repos.Documents.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	require.NoError(t, repos.Documents.DeleteDocuments(ctx,
		core.IdentityHit{ModelType: "article", ModelID: "1"},
		core.IdentityHit{ModelType: "article", ModelID: "missing"},
	))
	docs, err = repos.Documents.ListDocuments(ctx, "article")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2", docs[0].Id)
}
