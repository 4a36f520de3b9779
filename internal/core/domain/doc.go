// Package domain defines the core business entities for quest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Quest: A research question tied to a document
//   - DocumentRef: The identity of a vault document
//   - RefreshReport: The outcome of one reconciliation cycle
//   - AppSettings: Application configuration
//
// It also holds the pure algorithms the reconciler is built from:
// Fingerprint, ExtractContext and ValidateQuests.
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
