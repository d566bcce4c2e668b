// Package scanner resolves an input selection into the files an import run reads.
//
// A SingleFile selection yields exactly that file. A Directory selection yields
// every regular file directly inside the directory whose extension matches,
// sorted by name; subdirectories are never descended into.
package scanner
