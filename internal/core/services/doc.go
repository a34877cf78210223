// Package services implements the driving port interfaces.
// Services contain the retrieval core's business logic and orchestrate
// calls to driven ports (adapters): chunking, embedding, vector search,
// answer generation and session history.
//
// Services are pure Go with no external dependencies.
package services
