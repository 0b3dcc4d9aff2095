// Package processing defines the query-processor boundary: the Processor
// interface that turns a prompt into a response, and the normalized error
// taxonomy its implementations return.
package processing
