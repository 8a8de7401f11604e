package policy

import (
	"fmt"
	"strings"
)

// ContextSource is a resolved platform entity projected into a compact
// textual summary for AI context. Each linkable entity type has its own
// variant with a fixed field projection; adding a new linkable type means
// adding one variant here.
type ContextSource interface {
	// EntityType returns the linkable type this summary represents.
	EntityType() EntityType

	// Summarize renders the projection as a single prompt-ready line.
	Summarize() string
}

// ChallengeContext projects an innovation challenge.
type ChallengeContext struct {
	ID          string
	Title       string
	Description string
	Sector      string
	Status      string
}

func (c ChallengeContext) EntityType() EntityType { return EntityChallenge }

func (c ChallengeContext) Summarize() string {
	return joinFields("Challenge",
		field("title", c.Title),
		field("sector", c.Sector),
		field("status", c.Status),
		field("description", c.Description),
	)
}

// PilotContext projects a pilot deployment.
type PilotContext struct {
	ID      string
	Title   string
	Summary string
	Region  string
	Stage   string
}

func (p PilotContext) EntityType() EntityType { return EntityPilot }

func (p PilotContext) Summarize() string {
	return joinFields("Pilot",
		field("title", p.Title),
		field("region", p.Region),
		field("stage", p.Stage),
		field("summary", p.Summary),
	)
}

// RDProjectContext projects a research and development project.
type RDProjectContext struct {
	ID           string
	Title        string
	ResearchArea string
	Institution  string
	Findings     string
}

func (r RDProjectContext) EntityType() EntityType { return EntityRDProject }

func (r RDProjectContext) Summarize() string {
	return joinFields("R&D project",
		field("title", r.Title),
		field("research area", r.ResearchArea),
		field("institution", r.Institution),
		field("findings", r.Findings),
	)
}

// ProgramContext projects a government program.
type ProgramContext struct {
	ID          string
	Name        string
	Description string
	Sector      string
}

func (p ProgramContext) EntityType() EntityType { return EntityProgram }

func (p ProgramContext) Summarize() string {
	return joinFields("Program",
		field("name", p.Name),
		field("sector", p.Sector),
		field("description", p.Description),
	)
}

func field(name, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", name, value)
}

func joinFields(kind string, fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return kind
	}
	return kind + ": " + strings.Join(parts, "; ")
}
