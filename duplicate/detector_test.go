package duplicate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovagov/policyhub/llm/testutil"
	"github.com/innovagov/policyhub/policy"
)

func newTestDetector(mock *testutil.MockInvoker) *Detector {
	return NewDetector(NewEmbeddingStrategy(), NewLLMStrategy(mock, nil), nil)
}

func persisted(id, titleAr string, vector []float32) *policy.Policy {
	p := &policy.Policy{
		ID:     id,
		Status: policy.StatusDraft,
	}
	p.Draft.TitleAr = titleAr
	p.Embedding = vector
	return p
}

func TestDetect_EmbeddingPathSkipsLLM(t *testing.T) {
	mock := &testutil.MockInvoker{}
	d := newTestDetector(mock)

	draft := &policy.Draft{TitleAr: "سياسة المياه", Embedding: []float32{1, 0, 0}}
	candidates := []*policy.Policy{
		persisted("pol-1", "سياسة مياه مشابهة", []float32{0.9, 0.1, 0}),
		persisted("pol-2", "سياسة نقل", []float32{0, 1, 0}),
	}

	matches, path := d.Detect(context.Background(), draft, candidates, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, "embedding", path)
	assert.Equal(t, "pol-1", matches[0].Policy.ID)
	assert.GreaterOrEqual(t, matches[0].Score, DefaultMinEmbedScore)
	assert.Empty(t, matches[0].Justification)

	// The embedding path answered; the LLM boundary must stay untouched.
	assert.Equal(t, 0, mock.CallCount())
}

func TestDetect_IdenticalEmbeddingsScoreHundred(t *testing.T) {
	mock := &testutil.MockInvoker{}
	d := newTestDetector(mock)

	vector := []float32{0.5, 0.5, 0.7}
	draft := &policy.Draft{TitleAr: "سياسة", Embedding: vector}
	candidates := []*policy.Policy{
		persisted("pol-1", "أولى", vector),
		persisted("pol-2", "ثانية", vector),
	}

	matches, _ := d.Detect(context.Background(), draft, candidates, Options{MinEmbedScore: 70, K: 3})
	require.Len(t, matches, 2)
	assert.Equal(t, 100, matches[0].Score)
	assert.Equal(t, 100, matches[1].Score)
	// Equal scores order by ascending id.
	assert.Equal(t, "pol-1", matches[0].Policy.ID)
	assert.Equal(t, "pol-2", matches[1].Policy.ID)
	assert.Equal(t, 0, mock.CallCount())
}

func TestDetect_EmptyCorpusReturnsImmediately(t *testing.T) {
	mock := &testutil.MockInvoker{}
	d := newTestDetector(mock)

	draft := &policy.Draft{TitleAr: "سياسة"}
	matches, path := d.Detect(context.Background(), draft, nil, Options{})
	assert.Empty(t, matches)
	assert.Empty(t, path, "no strategy ran")
	assert.Equal(t, 0, mock.CallCount())
}

func TestDetect_EmptyDraftIsNoOp(t *testing.T) {
	mock := &testutil.MockInvoker{}
	d := newTestDetector(mock)

	matches, _ := d.Detect(context.Background(), &policy.Draft{}, []*policy.Policy{
		persisted("pol-1", "سياسة", nil),
	}, Options{})
	assert.Empty(t, matches)
	assert.Equal(t, 0, mock.CallCount())
}

func TestDetect_FallsBackToLLMWithoutEmbedding(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{
		`{"matches": [{"id": "pol-2", "score": 85, "justification": "Same intervention"}]}`,
	}}
	d := newTestDetector(mock)

	draft := &policy.Draft{TitleAr: "سياسة إعادة استخدام المياه"}
	candidates := []*policy.Policy{
		persisted("pol-1", "سياسة نقل", nil),
		persisted("pol-2", "سياسة مياه", nil),
	}

	matches, path := d.Detect(context.Background(), draft, candidates, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, "llm", path)
	assert.Equal(t, "pol-2", matches[0].Policy.ID)
	assert.Equal(t, 85, matches[0].Score)
	assert.Equal(t, "Same intervention", matches[0].Justification)
	assert.Equal(t, 1, mock.CallCount())
}

func TestDetect_VectorDraftWithoutComparableCandidatesReportsLLMPath(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{`{"matches": []}`}}
	d := newTestDetector(mock)

	// The draft has a vector but no candidate shares its dimension, so
	// the embedding strategy never applies and the LLM path runs.
	draft := &policy.Draft{TitleAr: "سياسة", Embedding: []float32{1, 0, 0}}
	candidates := []*policy.Policy{persisted("pol-1", "سياسة أخرى", nil)}

	_, path := d.Detect(context.Background(), draft, candidates, Options{})
	assert.Equal(t, "llm", path)
	assert.Equal(t, 1, mock.CallCount())
}

func TestDetect_LLMCandidateSetIsBounded(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{`{"matches": []}`}}
	d := newTestDetector(mock)

	candidates := make([]*policy.Policy, 500)
	for i := range candidates {
		candidates[i] = persisted(fmt.Sprintf("pol-%03d", i), "سياسة", nil)
	}

	draft := &policy.Draft{TitleAr: "سياسة جديدة"}
	_, _ = d.Detect(context.Background(), draft, candidates, Options{})

	require.Equal(t, 1, mock.CallCount())
	prompt := mock.LastPrompt().User
	assert.Equal(t, DefaultCandidateCap, strings.Count(prompt, "- id: pol-"))
	assert.NotContains(t, prompt, "pol-050")
}

func TestDetect_HallucinatedIDIsDropped(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{
		`{"matches": [
			{"id": "pol-404", "score": 95, "justification": "made up"},
			{"id": "pol-1", "score": 80, "justification": "real"}
		]}`,
	}}
	d := newTestDetector(mock)

	draft := &policy.Draft{TitleAr: "سياسة"}
	candidates := []*policy.Policy{persisted("pol-1", "سياسة مشابهة", nil)}

	matches, _ := d.Detect(context.Background(), draft, candidates, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, "pol-1", matches[0].Policy.ID)
}

func TestDetect_LLMFailureDegradesToEmpty(t *testing.T) {
	mock := &testutil.MockInvoker{Err: policy.ErrProviderUnavailable}
	d := newTestDetector(mock)

	draft := &policy.Draft{TitleAr: "سياسة"}
	candidates := []*policy.Policy{persisted("pol-1", "سياسة", nil)}

	matches, path := d.Detect(context.Background(), draft, candidates, Options{})
	assert.Empty(t, matches)
	assert.Equal(t, "llm", path, "the failed run still happened on the LLM path")
}

func TestDetect_LLMScoreFloorIsExclusive(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{
		`{"matches": [{"id": "pol-1", "score": 60, "justification": "borderline"}]}`,
	}}
	d := newTestDetector(mock)

	draft := &policy.Draft{TitleAr: "سياسة"}
	candidates := []*policy.Policy{persisted("pol-1", "سياسة", nil)}

	matches, _ := d.Detect(context.Background(), draft, candidates, Options{})
	assert.Empty(t, matches)
}

func TestEmbeddingStrategy_SelfExclusion(t *testing.T) {
	s := NewEmbeddingStrategy()

	vector := []float32{1, 0}
	draft := &policy.Draft{ID: "pol-1", TitleAr: "سياسة", Embedding: vector}
	candidates := []*policy.Policy{
		persisted("pol-1", "سياسة", vector), // the draft's own record
		persisted("pol-2", "سياسة أخرى", vector),
	}

	matches, err := s.Detect(context.Background(), draft, candidates, Options{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "pol-2", matches[0].Policy.ID)
}

func TestEmbeddingStrategy_DimensionMismatchSkipped(t *testing.T) {
	s := NewEmbeddingStrategy()

	draft := &policy.Draft{TitleAr: "سياسة", Embedding: []float32{1, 0, 0}}
	candidates := []*policy.Policy{
		persisted("pol-1", "بعدان فقط", []float32{1, 0}),
		persisted("pol-2", "ثلاثة أبعاد", []float32{1, 0, 0}),
	}

	matches, err := s.Detect(context.Background(), draft, candidates, Options{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "pol-2", matches[0].Policy.ID)
}

func TestEmbeddingStrategy_TopK(t *testing.T) {
	s := NewEmbeddingStrategy()

	vector := []float32{1, 0}
	draft := &policy.Draft{TitleAr: "سياسة", Embedding: vector}
	candidates := make([]*policy.Policy, 5)
	for i := range candidates {
		candidates[i] = persisted(fmt.Sprintf("pol-%d", i), "سياسة", vector)
	}

	matches, err := s.Detect(context.Background(), draft, candidates, Options{K: 2})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestLLMStrategy_SelfExclusion(t *testing.T) {
	mock := &testutil.MockInvoker{Payloads: []string{`{"matches": []}`}}
	s := NewLLMStrategy(mock, nil)

	draft := &policy.Draft{ID: "pol-1", TitleAr: "سياسة"}
	candidates := []*policy.Policy{persisted("pol-1", "سياسة", nil)}

	matches, err := s.Detect(context.Background(), draft, candidates, Options{})
	require.NoError(t, err)
	assert.Empty(t, matches)
	// The only candidate was the draft itself; no request should be made.
	assert.Equal(t, 0, mock.CallCount())
}

func TestTruncateRunes_ArabicSafe(t *testing.T) {
	text := strings.Repeat("نص", 200) // 400 runes
	out := truncateRunes(text, maxRecommendationRunes)
	assert.Equal(t, maxRecommendationRunes+3, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "..."))
}
