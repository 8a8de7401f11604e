package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/innovagov/policyhub/policy"
)

// BucketPolicies is the KV bucket holding policy records.
const BucketPolicies = "POLICYHUB_POLICIES"

// NATSStore stores policies in a NATS JetStream KV bucket, one key per
// policy ID.
type NATSStore struct {
	policies jetstream.KeyValue
}

// NewNATSStore creates the store, creating the KV bucket if needed.
func NewNATSStore(ctx context.Context, js jetstream.JetStream) (*NATSStore, error) {
	kv, err := getOrCreateBucket(ctx, js, BucketPolicies)
	if err != nil {
		return nil, fmt.Errorf("create policies bucket: %w", err)
	}
	return &NATSStore{policies: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Policyhub policy records",
		History:     5,
	})
}

// List implements Store.
func (s *NATSStore) List(ctx context.Context) ([]*policy.Policy, error) {
	keys, err := s.policies.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil, nil
		}
		return nil, fmt.Errorf("list policy keys: %w", err)
	}

	out := make([]*policy.Policy, 0, len(keys))
	for _, key := range keys {
		entry, err := s.policies.Get(ctx, key)
		if err != nil {
			continue // skip entries that fail to load
		}
		var p policy.Policy
		if err := json.Unmarshal(entry.Value(), &p); err != nil {
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

// Get implements Store.
func (s *NATSStore) Get(ctx context.Context, id string) (*policy.Policy, error) {
	entry, err := s.policies.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get policy: %w", err)
	}

	var p policy.Policy
	if err := json.Unmarshal(entry.Value(), &p); err != nil {
		return nil, fmt.Errorf("unmarshal policy: %w", err)
	}
	return &p, nil
}

// Create implements Store. It assigns the ID, code, and timestamps.
func (s *NATSStore) Create(ctx context.Context, p *policy.Policy) error {
	StampNew(p, time.Now())

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}
	if _, err := s.policies.Create(ctx, p.ID, data); err != nil {
		return fmt.Errorf("store policy: %w", err)
	}
	return nil
}

// Update implements Store.
func (s *NATSStore) Update(ctx context.Context, p *policy.Policy) error {
	if _, err := s.Get(ctx, p.ID); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}
	if _, err := s.policies.Put(ctx, p.ID, data); err != nil {
		return fmt.Errorf("update policy: %w", err)
	}
	return nil
}

// UpdateEmbedding implements Store with a read-modify-write on the single
// record so concurrent field edits elsewhere in the record survive.
func (s *NATSStore) UpdateEmbedding(ctx context.Context, id string, vector []float32) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	p.Embedding = vector
	return s.Update(ctx, p)
}

// Delete implements Store.
func (s *NATSStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.policies.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	return nil
}

// StampNew assigns identity and creation metadata to a record about to be
// persisted for the first time. Shared by all Store implementations.
func StampNew(p *policy.Policy, now time.Time) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Code == "" {
		suffix := p.ID
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		p.Code = fmt.Sprintf("POL-%d-%s", now.Year(), strings.ToUpper(suffix))
	}
	if p.Status == "" {
		p.Status = policy.StatusDraft
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
