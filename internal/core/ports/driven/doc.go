// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SearchBackend: Managed enterprise search (typed client or REST)
//   - HistoryStore: Query history counter store
//   - ConfigStore: Application configuration
//   - PromptStore: Generator prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TextGenerator: Generative-text model. Without it, the backend summary is used.
//   - TokenProvider: Access tokens. Only the REST transport needs one.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
