// Package cli assembles the parley command line application from its configuration.
package cli
