// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.artifact-search.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: User-editable prompt templates with embedded defaults
//   - PromptWatcher: Reloads prompts when their files change
package file
