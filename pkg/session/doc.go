/*
Package session implements the per-user session lifecycle.

The Manager fetches or creates the single live Session of a user, applies lazy
expiry (a session older than the configured TTL is discarded without export
on the next inbound message) and serializes turns of one user with an
in-process lock, optionally backed by a distributed lock for multi-replica
deployments.

GetOrCreate, Put and Delete perform no locking; run them inside WithLock.
*/
package session
