// Package domain defines the core business entities for artifact search.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - AppSource: A supported backend (Azure DevOps, Figma, Notion, IcePanel)
//   - Artifact: A normalised item returned by any backend
//   - RoutedQuery: The routing decision for a natural-language query
//   - SearchResult: The merged, ranked and summarised answer
//   - RiskItem / Mitigation: Risk management records surfaced from work items
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
