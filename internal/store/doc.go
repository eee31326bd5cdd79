// Package store provides persistent storage for taskboard using SQLite.
//
// SQLiteStore implements the UserStore and TaskStore interfaces in a single
// struct. The schema is created automatically on open, and the database runs
// in WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Passwords are hashed with bcrypt inside CreateUser; the plaintext is never
// written. Usernames and emails are unique at the schema level.
//
// Common errors:
//
//   - ErrNotFound: requested entity does not exist
//   - ErrEmailExists: email already registered
//
// All methods accept context.Context for cancellation support.
package store
