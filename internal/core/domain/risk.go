package domain

import (
	"fmt"
	"strings"
)

// RiskSeverity grades the harm a hazard can cause.
type RiskSeverity string

// Severity levels, least to most severe.
const (
	SeverityNegligible   RiskSeverity = "negligible"
	SeverityMinor        RiskSeverity = "minor"
	SeveritySerious      RiskSeverity = "serious"
	SeverityCritical     RiskSeverity = "critical"
	SeverityCatastrophic RiskSeverity = "catastrophic"
)

var severityRank = map[RiskSeverity]int{
	SeverityNegligible:   1,
	SeverityMinor:        2,
	SeveritySerious:      3,
	SeverityCritical:     4,
	SeverityCatastrophic: 5,
}

// ParseRiskSeverity converts a free-form field value into a severity.
// Azure DevOps often prefixes values with an ordinal ("2 - Minor").
func ParseRiskSeverity(s string) (RiskSeverity, error) {
	v := RiskSeverity(normaliseLevel(s))
	if _, ok := severityRank[v]; !ok {
		return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, s)
	}
	return v, nil
}

// Rank returns 1 (negligible) to 5 (catastrophic), or 0 if unknown.
func (s RiskSeverity) Rank() int {
	return severityRank[s]
}

// RiskProbability grades how likely a hazard is to cause harm.
type RiskProbability string

// Probability levels, least to most likely.
const (
	ProbabilityImprobable RiskProbability = "improbable"
	ProbabilityRemote     RiskProbability = "remote"
	ProbabilityOccasional RiskProbability = "occasional"
	ProbabilityProbable   RiskProbability = "probable"
	ProbabilityFrequent   RiskProbability = "frequent"
)

var probabilityRank = map[RiskProbability]int{
	ProbabilityImprobable: 1,
	ProbabilityRemote:     2,
	ProbabilityOccasional: 3,
	ProbabilityProbable:   4,
	ProbabilityFrequent:   5,
}

// ParseRiskProbability converts a free-form field value into a probability.
func ParseRiskProbability(s string) (RiskProbability, error) {
	v := RiskProbability(normaliseLevel(s))
	if _, ok := probabilityRank[v]; !ok {
		return "", fmt.Errorf("%w: unknown probability %q", ErrInvalidInput, s)
	}
	return v, nil
}

// Rank returns 1 (improbable) to 5 (frequent), or 0 if unknown.
func (p RiskProbability) Rank() int {
	return probabilityRank[p]
}

// RiskLevel is the acceptability zone of a severity/probability pair.
type RiskLevel string

// Risk acceptability zones.
const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// ClassifyRisk maps a severity and probability onto a 5x5 risk matrix.
func ClassifyRisk(s RiskSeverity, p RiskProbability) RiskLevel {
	score := s.Rank() * p.Rank()
	switch {
	case score >= 12:
		return RiskLevelHigh
	case score >= 5:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RiskItem is a hazard tracked in the risk management file.
type RiskItem struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Hazard             string          `json:"hazard,omitempty"`
	HazardousSituation string          `json:"hazardous_situation,omitempty"`
	Harm               string          `json:"harm,omitempty"`
	Severity           RiskSeverity    `json:"severity,omitempty"`
	Probability        RiskProbability `json:"probability,omitempty"`
	MitigationIDs      []string        `json:"mitigation_ids,omitempty"`
	RequirementIDs     []string        `json:"requirement_ids,omitempty"`
	Source             AppSource       `json:"source"`
	URL                string          `json:"url,omitempty"`
}

// RiskLevel classifies the item, or returns "" when either axis is unknown.
func (r RiskItem) RiskLevel() RiskLevel {
	if r.Severity.Rank() == 0 || r.Probability.Rank() == 0 {
		return ""
	}
	return ClassifyRisk(r.Severity, r.Probability)
}

// Mitigation is a control applied to one or more risks.
type Mitigation struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	RiskIDs              []string  `json:"risk_ids,omitempty"`
	ImplementationStatus string    `json:"implementation_status,omitempty"`
	VerificationMethod   string    `json:"verification_method,omitempty"`
	Source               AppSource `json:"source"`
	URL                  string    `json:"url,omitempty"`
}

func normaliseLevel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(s, "-"); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}
	return s
}
