/*
Package tracing provides lightweight request tracing for the introspection
server.

Each request gets a span. The trace id is a UUID taken from the X-Trace-ID
header when the caller supplies a valid one, and the span id is a ULID.
Both are echoed back in the response headers. Finished spans go through a
buffered channel to a collector goroutine that logs them; spans are dropped
rather than blocking when the buffer is full.

	tracer := tracing.New("commons", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
