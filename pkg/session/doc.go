/*
Package session keeps robots alive between stateless interactions.

A Manager wraps a ports.StateStore and runs every interaction as
load → mutate → save while holding a per-session lock, so two requests for the
same robot never interleave. An optional ports.DistributedLocker extends that
guarantee across server replicas.
*/
package session
