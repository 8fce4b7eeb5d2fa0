// Package notion provides a connector for Notion pages and databases.
//
// Searches go through the workspace search endpoint and are parsed with the
// typed models of github.com/jomei/notionapi. The artifact type of a page is
// inferred from the names of its properties, so a page in a "Risk Register"
// database with a "Risk ID" column is reported as a risk.
package notion
