// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - IngestionTracker: Durable record of processed fingerprints
//   - StagingCache: Staged artifacts awaiting indexing
//   - DocumentConverter: PDF to structured text
//   - EmbeddingService: Text to fixed-dimension vectors
//   - VectorStore: Collection management and similarity search
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Completion model. Without it, ask and chat are disabled.
//   - PromptStore: Customisable prompts. Without it, built-in defaults apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
