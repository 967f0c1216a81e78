/*
Package ports defines the driven ports (interfaces) for the toyrobot adapters.

These interfaces decouple the session layer from external implementations,
allowing robots to be persisted in memory, on disk or in Redis.

# Key Interfaces

  - StateStore: Responsible for persisting and loading robot State per session.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
