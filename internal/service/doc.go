// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the
// repositories defined in internal/store to fulfill application features:
// user registration and credentials, the access/refresh session lifecycle,
// task scheduling with overlap detection, and per-day completion tracking.
//
// Services receive dependencies through constructor injection and depend on
// store interfaces, never on concrete infrastructure. Check-then-write
// sequences (overlap detection, refresh token rotation) run inside database
// transactions via store.RunInTransaction.
package service
