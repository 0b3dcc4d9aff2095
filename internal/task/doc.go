// Package task implements background job execution: the Task contract,
// a bounded buffered queue, and a worker pool that owns its workers and
// drains gracefully on shutdown.
package task
