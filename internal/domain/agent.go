package domain

import "time"

// AgentExperience enumerates support seniority tiers.
type AgentExperience string

const (
	AgentExperienceJunior AgentExperience = "JUNIOR"
	AgentExperienceMid    AgentExperience = "MID"
	AgentExperienceSenior AgentExperience = "SENIOR"
)

// Agent models a support operator who can hold ticket assignments.
type Agent struct {
	ID                   string
	Name                 string
	Email                string
	PasswordHash         string
	Active               bool
	ExperienceLevel      AgentExperience
	MaxConcurrentTickets int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
