package hub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovagov/policyhub/duplicate"
	"github.com/innovagov/policyhub/llm/testutil"
	"github.com/innovagov/policyhub/metrics"
	"github.com/innovagov/policyhub/policy"
	"github.com/innovagov/policyhub/storage"
	"github.com/innovagov/policyhub/translate"
)

// fakeTranslator returns canned fields or a canned error.
type fakeTranslator struct {
	fields *translate.Fields
	err    error
	calls  int
}

func (f *fakeTranslator) TranslateDraft(_ context.Context, _ *policy.Draft) (*translate.Fields, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

// capturePublisher records published events.
type capturePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (c *capturePublisher) Publish(subject string, data []byte) error {
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return c.err
}

func goodTranslator() *fakeTranslator {
	return &fakeTranslator{fields: &translate.Fields{
		TitleEn:              "Greywater Reuse Policy",
		RecommendationTextEn: "Mandate reuse systems",
	}}
}

func testDraft() *policy.Draft {
	return &policy.Draft{
		TitleAr:              "سياسة إعادة استخدام المياه",
		RecommendationTextAr: "إلزام المباني الجديدة بأنظمة إعادة الاستخدام",
	}
}

func TestCreate(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &capturePublisher{}
	svc := NewService(store, goodTranslator(), WithPublisher(pub))

	p, err := svc.Create(context.Background(), testDraft())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, policy.StatusDraft, p.Status)
	assert.Equal(t, "Greywater Reuse Policy", p.TitleEn)
	assert.Equal(t, "Mandate reuse systems", p.RecommendationTextEn)
	assert.False(t, p.SubmissionDate.IsZero())

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.TitleEn, stored.TitleEn)

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, SubjectPolicyCreated, pub.subjects[0])
	var event CreatedEvent
	require.NoError(t, json.Unmarshal(pub.payloads[0], &event))
	assert.Equal(t, p.ID, event.ID)
}

func TestCreate_TranslationFailureAbortsBeforePersist(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &capturePublisher{}
	tr := &fakeTranslator{err: policy.ErrTranslationFailed}
	svc := NewService(store, tr, WithPublisher(pub))

	draft := testDraft()
	draft.ImplementationSteps = []policy.Step{{Ar: " صياغة التنظيم "}}
	draft.SuccessMetrics = []policy.Metric{{MetricAr: " نسبة الامتثال ", Target: "80", Unit: "%"}}
	before := draft.Clone()

	_, err := svc.Create(context.Background(), draft)
	require.ErrorIs(t, err, policy.ErrTranslationFailed)

	// Nothing was persisted and no event went out.
	all, listErr := store.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, all)
	assert.Empty(t, pub.subjects)

	// The caller's draft is intact for retry, including slice-backed
	// fields that normalization must not have reached through.
	assert.Equal(t, before, *draft)
	assert.Equal(t, " صياغة التنظيم ", draft.ImplementationSteps[0].Ar)
}

func TestCreate_InvalidDraftSkipsTranslation(t *testing.T) {
	store := storage.NewMemoryStore()
	tr := goodTranslator()
	svc := NewService(store, tr)

	_, err := svc.Create(context.Background(), &policy.Draft{TitleAr: "عنوان فقط"})
	require.ErrorIs(t, err, policy.ErrInvalidInput)
	assert.Equal(t, 0, tr.calls)
}

func TestCreate_PublishFailureDoesNotFailCreate(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &capturePublisher{err: errors.New("nats down")}
	svc := NewService(store, goodTranslator(), WithPublisher(pub))

	p, err := svc.Create(context.Background(), testDraft())
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
}

func TestCreate_NoPublisherConfigured(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), goodTranslator())
	_, err := svc.Create(context.Background(), testDraft())
	assert.NoError(t, err)
}

func TestTransition(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, goodTranslator())

	p, err := svc.Create(context.Background(), testDraft())
	require.NoError(t, err)

	p, err = svc.Transition(context.Background(), p.ID, policy.StatusLegalReview)
	require.NoError(t, err)
	assert.Equal(t, policy.StatusLegalReview, p.Status)
	assert.Nil(t, p.ReviewedAt, "entering review does not record a decision")

	p, err = svc.Transition(context.Background(), p.ID, policy.StatusPublicConsultation)
	require.NoError(t, err)
	require.NotNil(t, p.ReviewedAt, "leaving a review stage records the decision time")

	_, err = svc.Transition(context.Background(), p.ID, policy.StatusImplemented)
	assert.ErrorIs(t, err, policy.ErrInvalidInput)

	_, err = svc.Transition(context.Background(), "missing", policy.StatusLegalReview)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCheckDuplicates(t *testing.T) {
	store := storage.NewMemoryStore()
	mock := &testutil.MockInvoker{Payloads: []string{`{"matches": []}`, `{"matches": []}`}}
	detector := duplicate.NewDetector(duplicate.NewEmbeddingStrategy(), duplicate.NewLLMStrategy(mock, nil), nil)
	m := metrics.New()
	svc := NewService(store, goodTranslator(), WithDetector(detector), WithMetrics(m))

	// Empty corpus: no matches, no AI request, nothing counted.
	matches := svc.CheckDuplicates(context.Background(), testDraft(), duplicate.Options{})
	assert.Empty(t, matches)
	assert.Equal(t, 0, mock.CallCount())
	assert.Zero(t, promtest.ToFloat64(m.DuplicateChecks.WithLabelValues("llm")))

	_, err := svc.Create(context.Background(), testDraft())
	require.NoError(t, err)

	matches = svc.CheckDuplicates(context.Background(), testDraft(), duplicate.Options{})
	assert.Empty(t, matches)
	assert.Equal(t, 1, mock.CallCount(), "non-empty corpus without vectors uses the LLM path")
	assert.Equal(t, 1.0, promtest.ToFloat64(m.DuplicateChecks.WithLabelValues("llm")))

	// A draft carrying a vector still counts as an LLM run when no stored
	// candidate has a comparable one.
	withVector := testDraft()
	withVector.Embedding = []float32{1, 0, 0}
	svc.CheckDuplicates(context.Background(), withVector, duplicate.Options{})
	assert.Equal(t, 2.0, promtest.ToFloat64(m.DuplicateChecks.WithLabelValues("llm")))
	assert.Zero(t, promtest.ToFloat64(m.DuplicateChecks.WithLabelValues("embedding")))
}

func TestCheckDuplicates_NoDetector(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), goodTranslator())
	assert.Nil(t, svc.CheckDuplicates(context.Background(), testDraft(), duplicate.Options{}))
}

func TestUpdateValidates(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, goodTranslator())

	p, err := svc.Create(context.Background(), testDraft())
	require.NoError(t, err)

	p.TitleAr = ""
	assert.ErrorIs(t, svc.Update(context.Background(), p), policy.ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, goodTranslator())

	p, err := svc.Create(context.Background(), testDraft())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), p.ID))

	_, err = svc.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
