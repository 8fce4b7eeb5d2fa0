// Package connectors builds the backend connectors used by the search
// engine. Each subpackage implements driven.Connector for one source:
//
//   - azuredevops: work items via WIQL
//   - figma: frames and components of one design file
//   - notion: pages and databases via the workspace search
//   - icepanel: C4 model objects and diagrams of one landscape
//
// NewFromSettings creates all of them from application settings.
package connectors
