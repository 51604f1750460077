// Package pool bounds the number of in-flight item operations.
// This includes a shared semaphore for all tables of a run and optional rate
// limiting to stay under the storage engine's throughput limits.
//
// Work admitted to the pool always runs to completion; a failing item never
// cancels its siblings.
package pool
