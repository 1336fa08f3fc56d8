/*
Package observability turns dialog lifecycle events into Prometheus metrics
and structured audit logs.

Both are plain domain.LifecycleHooks and can be combined with
domain.CombineHooks or by passing several parley.WithLifecycleHooks options.
*/
package observability
