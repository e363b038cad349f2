// Package sqlite keeps lexrag's local state in one modernc.org/sqlite
// database, <data_dir>/lexrag.db, opened in WAL mode.
//
// Store serves two ports over that connection. As an IngestionTracker it
// records parsed fingerprints in parsed_files. As a VectorStore it keeps
// collections and their points and ranks them by cosine similarity in
// process, which suits a single-user contract library.
//
// The schema comes from the numbered files in migrations, applied in
// order at open time.
package sqlite
