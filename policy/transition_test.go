package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"draft to legal review", StatusDraft, StatusLegalReview, true},
		{"draft to rejected", StatusDraft, StatusRejected, true},
		{"draft skips to published", StatusDraft, StatusPublished, false},
		{"legal review advances", StatusLegalReview, StatusPublicConsultation, true},
		{"consultation to council", StatusPublicConsultation, StatusCouncilApproval, true},
		{"council to ministry", StatusCouncilApproval, StatusMinistryApproval, true},
		{"ministry to published", StatusMinistryApproval, StatusPublished, true},
		{"published to active", StatusPublished, StatusActive, true},
		{"published cannot be rejected", StatusPublished, StatusRejected, false},
		{"active to implemented", StatusActive, StatusImplemented, true},
		{"implemented is terminal", StatusImplemented, StatusActive, false},
		{"rejected is terminal", StatusRejected, StatusDraft, false},
		{"no backwards moves", StatusCouncilApproval, StatusLegalReview, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestPolicyTransition(t *testing.T) {
	p := &Policy{Status: StatusDraft}

	require.NoError(t, p.Transition(StatusLegalReview))
	assert.Equal(t, StatusLegalReview, p.Status)

	err := p.Transition(StatusImplemented)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, StatusLegalReview, p.Status, "failed transition must not change status")

	err = p.Transition(Status("archived"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []Status{StatusLegalReview, StatusRejected}, NextStatuses(StatusDraft))
	assert.Empty(t, NextStatuses(StatusImplemented))
	assert.Empty(t, NextStatuses(StatusRejected))
}

func TestEveryStatusReachableFromDraft(t *testing.T) {
	reached := map[Status]bool{StatusDraft: true}
	frontier := []Status{StatusDraft}
	for len(frontier) > 0 {
		s := frontier[0]
		frontier = frontier[1:]
		for _, next := range NextStatuses(s) {
			if !reached[next] {
				reached[next] = true
				frontier = append(frontier, next)
			}
		}
	}

	for _, s := range []Status{
		StatusLegalReview, StatusPublicConsultation, StatusCouncilApproval,
		StatusMinistryApproval, StatusPublished, StatusActive,
		StatusImplemented, StatusRejected,
	} {
		assert.True(t, reached[s], "status %s unreachable from draft", s)
	}
}
