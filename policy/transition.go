package policy

// transitions encodes the approval lifecycle. A policy advances through
// the review stages in order; rejection is reachable from any stage that
// still awaits a decision.
var transitions = map[Status][]Status{
	StatusDraft:              {StatusLegalReview, StatusRejected},
	StatusLegalReview:        {StatusPublicConsultation, StatusRejected},
	StatusPublicConsultation: {StatusCouncilApproval, StatusRejected},
	StatusCouncilApproval:    {StatusMinistryApproval, StatusRejected},
	StatusMinistryApproval:   {StatusPublished, StatusRejected},
	StatusPublished:          {StatusActive},
	StatusActive:             {StatusImplemented},
	StatusImplemented:        {},
	StatusRejected:           {},
}

// CanTransition reports whether a policy may move from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s, in review order.
func NextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Transition validates and applies a status change.
func (p *Policy) Transition(to Status) error {
	if !ValidStatus(to) {
		return InvalidInputf("unknown status %q", to)
	}
	if !CanTransition(p.Status, to) {
		return InvalidInputf("cannot move policy from %s to %s", p.Status, to)
	}
	p.Status = to
	return nil
}
