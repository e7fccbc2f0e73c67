// Package search turns a stream of text-changed events into at most one
// active region lookup. Short inputs are ignored, each qualifying input
// cancels the previous pending lookup, and the newest input fires after a
// fixed delay on a single serial execution context.
package search
