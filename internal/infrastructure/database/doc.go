// Package database provides the SQLite store backing load level
// history.
//
// The daemon keeps one small database: every dimmer level change the
// engine observes is appended by the history recorder, and the bridge
// prunes rows past the configured retention. WAL mode lets history
// queries run while the recorder writes; the busy timeout covers the
// rare overlap between the recorder and the pruner.
//
// Schema lives in embedded migrations (see the migrations package),
// applied at startup:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive-only: new columns are nullable or carry
// defaults, and columns are never dropped or renamed, so an older
// daemon can still open a newer file. Each step ships as an
// .up.sql/.down.sql pair named YYYYMMDD_HHMMSS_description.
//
// All queries use parameterised statements, and the database file is
// created with 0600 permissions.
package database
