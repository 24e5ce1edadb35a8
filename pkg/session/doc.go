// Package session provides concurrency-safe access to per-session
// conversation contexts. Each context is owned by exactly one session;
// the manager guarantees two turns for the same session never mutate it
// concurrently, locally via reference-counted mutexes and, optionally,
// across replicas via a distributed locker.
package session
