// Package hub orchestrates the policy lifecycle: the blocking create flow
// (validate, translate, persist), status transitions, duplicate checks,
// and the asynchronous embedding pipeline triggered over NATS.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/innovagov/policyhub/duplicate"
	"github.com/innovagov/policyhub/metrics"
	"github.com/innovagov/policyhub/policy"
	"github.com/innovagov/policyhub/storage"
	"github.com/innovagov/policyhub/translate"
)

// SubjectPolicyCreated carries creation events that trigger async
// embedding. Payload: CreatedEvent.
const SubjectPolicyCreated = "policyhub.policy.created"

// CreatedEvent is published after a policy record is persisted.
type CreatedEvent struct {
	ID string `json:"id"`
}

// Translator is the blocking translation boundary used during create.
type Translator interface {
	TranslateDraft(ctx context.Context, d *policy.Draft) (*translate.Fields, error)
}

// Publisher is the fire-and-forget event boundary. *nats.Conn satisfies
// it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Service orchestrates policy operations against the store and the AI
// boundaries.
type Service struct {
	store      storage.Store
	translator Translator
	detector   *duplicate.Detector
	pub        Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPublisher sets the event publisher. Without one, creation events
// are skipped and embeddings must be produced out of band.
func WithPublisher(pub Publisher) ServiceOption {
	return func(s *Service) { s.pub = pub }
}

// WithDetector sets the duplicate detector used by CheckDuplicates.
func WithDetector(d *duplicate.Detector) ServiceOption {
	return func(s *Service) { s.detector = d }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(store storage.Store, translator Translator, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		translator: translator,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create runs the blocking create flow: validate, translate, persist,
// then publish the creation event. Translation failure aborts before any
// write so the operator's draft is never consumed by a half-created
// record. The event publish outcome never affects the result.
func (s *Service) Create(ctx context.Context, draft *policy.Draft) (*policy.Policy, error) {
	start := s.now()

	// Deep copy: Normalize and the translation merge must never write
	// through to the caller's draft, which survives a failed create.
	working := draft.Clone()
	working.Normalize()
	if err := working.ValidateForSubmission(); err != nil {
		return nil, err
	}

	fields, err := s.translator.TranslateDraft(ctx, &working)
	if err != nil {
		if s.metrics != nil && errors.Is(err, policy.ErrTranslationFailed) {
			s.metrics.TranslationFailures.Inc()
		}
		return nil, err
	}

	p := &policy.Policy{Draft: working}
	p.Draft.ID = "" // persisted identity lives on the record
	fields.Apply(p)
	p.Status = policy.StatusDraft
	p.SubmissionDate = s.now()

	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}

	s.publishCreated(p.ID)

	if s.metrics != nil {
		s.metrics.PoliciesCreated.Inc()
		s.metrics.CreateDuration.Observe(s.now().Sub(start).Seconds())
	}
	s.logger.Info("Policy created",
		"id", p.ID,
		"code", p.Code,
		"title_en", p.TitleEn)
	return p, nil
}

// publishCreated emits the creation event. Failures are logged and
// swallowed; embedding is an enhancement, not part of the create
// contract.
func (s *Service) publishCreated(id string) {
	if s.pub == nil {
		return
	}
	data, err := json.Marshal(CreatedEvent{ID: id})
	if err != nil {
		s.logger.Warn("Marshal creation event failed", "id", id, "error", err)
		return
	}
	if err := s.pub.Publish(SubjectPolicyCreated, data); err != nil {
		s.logger.Warn("Publish creation event failed", "id", id, "error", err)
	}
}

// Get retrieves one policy.
func (s *Service) Get(ctx context.Context, id string) (*policy.Policy, error) {
	return s.store.Get(ctx, id)
}

// List returns all policies.
func (s *Service) List(ctx context.Context) ([]*policy.Policy, error) {
	return s.store.List(ctx)
}

// Update validates and persists edits to an existing policy.
func (s *Service) Update(ctx context.Context, p *policy.Policy) error {
	p.Draft.Normalize()
	if err := p.Draft.ValidateForSubmission(); err != nil {
		return err
	}
	return s.store.Update(ctx, p)
}

// reviewStages are the statuses where a decision is pending. Leaving one
// records the review timestamp.
var reviewStages = map[policy.Status]bool{
	policy.StatusLegalReview:        true,
	policy.StatusPublicConsultation: true,
	policy.StatusCouncilApproval:    true,
	policy.StatusMinistryApproval:   true,
}

// Transition moves a policy to a new lifecycle status.
func (s *Service) Transition(ctx context.Context, id string, to policy.Status) (*policy.Policy, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.Status
	if err := p.Transition(to); err != nil {
		return nil, err
	}
	if reviewStages[from] {
		now := s.now()
		p.ReviewedAt = &now
	}

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Policy transitioned", "id", id, "from", from, "to", to)
	return p, nil
}

// Delete removes a policy record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// CheckDuplicates runs advisory duplicate detection for draft against the
// stored corpus. A store failure degrades to no matches; detection must
// never block drafting.
func (s *Service) CheckDuplicates(ctx context.Context, draft *policy.Draft, opts duplicate.Options) []duplicate.Match {
	if s.detector == nil {
		return nil
	}
	corpus, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("Listing corpus for duplicate check failed", "error", err)
		return nil
	}
	matches, path := s.detector.Detect(ctx, draft, corpus, opts)
	if s.metrics != nil && path != "" {
		s.metrics.DuplicateChecks.WithLabelValues(path).Inc()
	}
	return matches
}
