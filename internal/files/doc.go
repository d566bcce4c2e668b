// Package files groups input discovery for the importer.
//
// Subpackages:
//   - filesystem: read-only filesystem abstraction with OS and in-memory implementations
//   - scanner: resolves a mauro.InputSelection into an ordered list of input files
package files
