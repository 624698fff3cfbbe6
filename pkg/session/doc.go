/*
Package session implements per-question edit serialization and persistence
orchestration.

Link transitions are read-modify-write operations over one question's options
config. This package guarantees that concurrent edits against the same
question are serialized, integrating local in-process locks with optional
distributed locking and pluggable storage adapters.
*/
package session
