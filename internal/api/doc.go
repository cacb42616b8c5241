// Package api provides HTTP handlers for the REST API, along with the
// response envelope types and the mapping from internal errors to HTTP
// status codes and sanitized client messages.
package api
