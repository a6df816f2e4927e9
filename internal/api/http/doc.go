/*
Package http provides the read-only HTTP introspection API over an SDK
context.

	GET /health                                  registry sizes, 503 before Init
	GET /modules[?capability=]                   registered modules
	GET /modules/:name                           one module
	GET /capabilities                            availability per capability
	GET /capabilities/:capability/providers      providers in selection order
	GET /capabilities/:capability/resolve        dry-run provider selection
	GET /errors                                  code bands
	GET /errors/:code                            message and category of a code
	GET /benchmark/metrics                       device metrics capture
	GET /models/discovered                       model files under MODELS_DIR
	GET /metrics                                 Prometheus exposition
	GET /metrics/json                            running totals as JSON

Failures are reported as ErrorResponse with the result code and its
category; the HTTP status is derived from the code.
*/
package http
