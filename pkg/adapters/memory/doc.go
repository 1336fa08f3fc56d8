// Package memory provides in-memory adapters: a knowledge-base Answer Service
// for demos and tests, and an answer cache.
package memory
