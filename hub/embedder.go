package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/innovagov/policyhub/metrics"
	"github.com/innovagov/policyhub/storage"
)

// EmbedClient vectorizes text. *embedding.Client satisfies it.
type EmbedClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Embedder consumes policy creation events and writes embedding vectors
// back to the store. It is the async half of the pipeline: a failed or
// missing embedding only degrades duplicate detection to the LLM path,
// so failures are logged and dropped, never retried into the create flow.
type Embedder struct {
	store   storage.Store
	embed   EmbedClient
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEmbedder creates an Embedder. metrics may be nil.
func NewEmbedder(store storage.Store, embed EmbedClient, m *metrics.Metrics, logger *slog.Logger) *Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{store: store, embed: embed, metrics: m, logger: logger}
}

// Run subscribes to creation events and processes them until ctx is
// cancelled.
func (e *Embedder) Run(ctx context.Context, nc *nats.Conn) error {
	sub, err := nc.Subscribe(SubjectPolicyCreated, func(msg *nats.Msg) {
		var event CreatedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			e.logger.Warn("Dropping malformed creation event", "error", err)
			return
		}
		if err := e.HandleCreated(ctx, event.ID); err != nil {
			e.logger.Warn("Embedding job failed", "id", event.ID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectPolicyCreated, err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	return ctx.Err()
}

// HandleCreated embeds one policy and stores the vector. Exported so the
// worker loop and tests share one code path.
func (e *Embedder) HandleCreated(ctx context.Context, id string) error {
	p, err := e.store.Get(ctx, id)
	if err != nil {
		e.countJob("load_error")
		return fmt.Errorf("load policy %s: %w", id, err)
	}

	text := p.TitleAr + "\n" + p.RecommendationTextAr
	vector, err := e.embed.Embed(ctx, text)
	if err != nil {
		e.countJob("embed_error")
		return fmt.Errorf("embed policy %s: %w", id, err)
	}

	if err := e.store.UpdateEmbedding(ctx, id, vector); err != nil {
		e.countJob("store_error")
		return fmt.Errorf("store embedding for %s: %w", id, err)
	}

	e.countJob("ok")
	e.logger.Debug("Embedded policy", "id", id, "dimension", len(vector))
	return nil
}

func (e *Embedder) countJob(outcome string) {
	if e.metrics != nil {
		e.metrics.EmbeddingJobs.WithLabelValues(outcome).Inc()
	}
}
