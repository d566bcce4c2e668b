// Package filesystem provides the read-only filesystem abstraction the importer
// reads input files through.
//
// Implementations:
//   - OSFileSystem: production implementation over the os package
//   - MemoryFileSystem: in-memory implementation for tests
package filesystem
