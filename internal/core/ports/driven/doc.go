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
//   - EmbeddingService: Maps text batches to fixed-length vectors
//   - VectorStore: Durable per-document chunk/vector collections
//   - SessionStore: Bounded conversational history per session
//   - DocumentRegistry: Catalogue of ingested documents
//
// # Optional Interfaces
//
//   - LLMService: Completion provider. Without it, retrieval still works
//     but no answers can be generated.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
