// Package sqlite provides a SQLite-based implementation of the quest and
// scheduler stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Both stores share a single database connection:
//
//   - QuestStore: Whole-collection quest persistence
//   - SchedulerStore: Scheduled task state and run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.quest/data/quests.db
//
// # Thread Safety
//
// All operations are thread-safe. SaveQuests replaces the collection inside
// one transaction, so readers never observe a half-written collection.
package sqlite
