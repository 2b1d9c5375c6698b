// Package observe provides the ambient collaborators of the cache:
// structured logging, OpenTelemetry metrics, and human-readable
// byte/timestamp formatting for log output.
package observe
