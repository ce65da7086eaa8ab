// Package storage provides interfaces and types for storing and retrieving
// normalized GitHub webhook events. Durable backends live in sub-packages;
// this package holds the in-memory backend and the EventStore that degrades
// from a durable backend to memory when the durable one faults.
package storage
