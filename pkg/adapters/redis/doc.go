// Package redis provides a Redis-backed answer cache.
package redis
