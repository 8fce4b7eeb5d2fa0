// Package azuredevops implements a connector for Azure DevOps work items.
//
// Searches run a WIQL query against the configured project, matching each
// search term against title and description, then fetch the first page of
// matching work items in one batch call.
//
// # Authentication
//
// A Personal Access Token with Work Items (Read) scope is sent with HTTP
// Basic auth and an empty user name.
//
// # Risk items
//
// Work items of type Risk carry severity and probability in their HTML
// description. When present these are parsed into the artifact metadata
// together with the derived risk level.
package azuredevops
