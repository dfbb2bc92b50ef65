/*
Package ports defines the driven ports (interfaces) of the questionnaire engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends, lock providers and event sinks.

# Key Interfaces

  - StatelessEngine: The engine surface used by HTTP, MCP and CLI adapters.
  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - ResultPublisher: Emits routing outcomes to downstream consumers.
*/
package ports
