package services

import (
	"sort"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// RankArtifacts sorts artifacts newest first by effective time, in place.
// Artifacts without any timestamp sort last. The sort is stable, so equal
// keys keep their input order and re-ranking a ranked list is a no-op.
func RankArtifacts(artifacts []domain.Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		ti, okI := artifacts[i].EffectiveTime()
		tj, okJ := artifacts[j].EffectiveTime()
		switch {
		case okI && !okJ:
			return true
		case !okI:
			return false
		default:
			return ti.After(tj)
		}
	})
}
