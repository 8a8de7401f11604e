package hub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovagov/policyhub/storage"
)

type fakeEmbedClient struct {
	vector []float32
	err    error
	texts  []string
}

func (f *fakeEmbedClient) Embed(_ context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func TestEmbedderHandleCreated(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, goodTranslator())

	p, err := svc.Create(context.Background(), testDraft())
	require.NoError(t, err)

	embed := &fakeEmbedClient{vector: []float32{0.1, 0.2, 0.3}}
	e := NewEmbedder(store, embed, nil, nil)

	require.NoError(t, e.HandleCreated(context.Background(), p.ID))

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, stored.Embedding)

	require.Len(t, embed.texts, 1)
	assert.Contains(t, embed.texts[0], stored.TitleAr)
	assert.Contains(t, embed.texts[0], stored.RecommendationTextAr)
}

func TestEmbedderHandleCreated_MissingPolicy(t *testing.T) {
	e := NewEmbedder(storage.NewMemoryStore(), &fakeEmbedClient{}, nil, nil)
	err := e.HandleCreated(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEmbedderHandleCreated_EmbedFailureLeavesRecordUntouched(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, goodTranslator())

	p, err := svc.Create(context.Background(), testDraft())
	require.NoError(t, err)

	embed := &fakeEmbedClient{err: errors.New("endpoint down")}
	e := NewEmbedder(store, embed, nil, nil)

	require.Error(t, e.HandleCreated(context.Background(), p.ID))

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Embedding, "failed jobs never write partial vectors")
}
