/*
Package observability binds Prometheus collectors to session lifecycle hooks.

Every accepted or rejected line and every save or load outcome is counted so
HTTP hosts can expose them on /metrics.
*/
package observability
