// Package posts is a small HTTP backend for user registration and post
// creation.
//
// Registration:
//   - RegisterUserHandler validates the payload, rejects known emails, hashes
//     the password with bcrypt, persists the user and returns a signed JWT.
//     Passwords longer than the 72 byte bcrypt input are rejected up front.
//     The unique email index is the final guard against concurrent
//     registrations of the same address.
//
// Posts:
//   - ProtectedRoute verifies the configured token header before any payload is
//     read. CreatePostHandler then validates title and body and stores the
//     post with the author taken from the verified token.
//
// Routes are mounted on a go-router Router, NewServer serves them with the
// fiber adapter.
//
// Stores:
//   - Users and Posts are implemented on bun (SQLite, PostgreSQL) in this
//     package and on MongoDB in the repository package. The persistence
//     package picks one from the database URL.
//
// Activity sinks:
//   - ActivitySink receives user.registered, post.created and auth.rejected
//     events. Sinks run best-effort, errors are logged and never fail a
//     request.
package posts
