// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Connector: Searches and fetches artifacts from one backend
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Language model operations. Without it, routing uses keywords
//     and summaries fall back to a result count.
//   - PromptStore: Editable prompt templates. Without it, built-in prompts are used.
//   - Cache: Response cache for slow backends. Without it, every call hits the API.
//   - HistoryStore: Search audit trail.
//   - EventPublisher: Search event stream.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
