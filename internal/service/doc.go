// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Services receive their dependencies through constructor injection and
// depend on domain entities and store interfaces, never on specific
// infrastructure implementations. The task service coordinates per-user
// task CRUD with transactional event emission; the auth subpackage covers
// registration, login, logout, and session resolution.
//
// Error handling follows one convention throughout: store and domain
// errors are wrapped with operation context on the way up, so callers
// classify failures with errors.Is against the store and domain
// sentinels rather than by message.
package service
