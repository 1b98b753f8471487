/*
Package observability turns wizard lifecycle events into Prometheus metrics
and structured log records.

Both are exposed as domain.LifecycleHooks so they can be combined and handed
to the engine through runtime.WithLifecycleHooks.
*/
package observability
