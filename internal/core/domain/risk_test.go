package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRiskSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want RiskSeverity
	}{
		{"critical", SeverityCritical},
		{"2 - Minor", SeverityMinor},
		{" Catastrophic ", SeverityCatastrophic},
	}
	for _, tt := range tests {
		got, err := ParseRiskSeverity(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParseRiskSeverity("moderate")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestParseRiskProbability(t *testing.T) {
	got, err := ParseRiskProbability("4 - Probable")
	require.NoError(t, err)
	assert.Equal(t, ProbabilityProbable, got)
	assert.Equal(t, 4, got.Rank())

	_, err = ParseRiskProbability("often")
	assert.Error(t, err)
}

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		s    RiskSeverity
		p    RiskProbability
		want RiskLevel
	}{
		{SeverityNegligible, ProbabilityImprobable, RiskLevelLow},
		{SeverityMinor, ProbabilityRemote, RiskLevelLow},
		{SeveritySerious, ProbabilityRemote, RiskLevelMedium},
		{SeverityCritical, ProbabilityOccasional, RiskLevelHigh},
		{SeverityCatastrophic, ProbabilityFrequent, RiskLevelHigh},
	}
	for _, tt := range tests {
		t.Run(string(tt.s)+"/"+string(tt.p), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRisk(tt.s, tt.p))
		})
	}
}

func TestRiskItem_RiskLevel(t *testing.T) {
	assert.Equal(t, RiskLevelHigh, RiskItem{Severity: SeverityCritical, Probability: ProbabilityFrequent}.RiskLevel())
	assert.Equal(t, RiskLevel(""), RiskItem{Severity: SeverityCritical}.RiskLevel())
}
