// Package api handles incoming HTTP requests, request validation, and
// response formatting. It adapts external clients to the internal
// services, translating HTTP concerns into business operations and
// internal errors into safe, stable JSON responses.
package api
