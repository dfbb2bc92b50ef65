/*
Package session implements session management and persistence orchestration.

The Manager serializes access to a questionnaire session: a per-process mutex,
reference counted so idle sessions leave no lock behind, optionally combined with a
ports.DistributedLocker when several replicas share one store. Apply wraps the
load, engine call and save of one request in a single critical section.
*/
package session
