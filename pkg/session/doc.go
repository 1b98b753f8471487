/*
Package session serialises access to wizard sessions.

Every operation on one session runs under a per-session mutex, optionally
backed by a distributed lock so that several replicas can share a store.
The lock is never held across the outbound registration request.
*/
package session
