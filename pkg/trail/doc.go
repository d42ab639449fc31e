// Package trail persists a capped, string-only audit trail per engine.
//
// A Trail is separate from the in-memory ring buffer of recent events: it
// survives restarts, keeps up to DefaultCapacity lines and stores only the
// rendered line, never metadata. The backing Store decides where lines live:
//
//   - MemoryStore for tests and previews
//   - RedisStore, a list trimmed with LTRIM inside MULTI/EXEC
//   - MongoStore, one document per trail with a $push/$slice array
//   - PostgresStore, rows of audit_trail (see Migrations)
//   - S3Store, one JSON object per trail
//
// Every store trims to the limit on each push so a reader never sees more
// than the trail's capacity.
package trail
