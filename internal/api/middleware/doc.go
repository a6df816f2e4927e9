/*
Package middleware provides the HTTP middleware of the introspection server.

  - CORS: cross-origin access for read-only dashboards (gin-contrib/cors)
  - RateLimit: per-client token buckets keyed by client IP, with idle clients
    evicted after IdleTTL
  - GlobalRateLimit: one token bucket shared by every client

Rejected requests get 429 with a JSON body carrying the ServiceBusy code.
*/
package middleware
