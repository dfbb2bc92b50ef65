/*
Package observability turns engine lifecycle events into logs and Prometheus metrics.
Routing events are published by session.Manager once the outcome is saved.

Each helper returns a domain.LifecycleHooks value; combine them with LifecycleHooks.Merge
and pass the result to taxwizard.WithLifecycleHooks.
*/
package observability
