// Package mauro holds the public types shared by the Mauro data collector:
// hierarchy paths, normalized rows, lookup outcomes, property write intents,
// the catalog capability interfaces and the error taxonomy of an import run.
package mauro
