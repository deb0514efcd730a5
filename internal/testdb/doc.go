// Package testdb connects integration tests to a real PostgreSQL database.
//
// Tests call Open to get a migrated connection and WithTx to run against a
// transaction that is always rolled back:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.Open(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			s := postgres.NewPostgresQuestionSetStore(tx, nil)
//			// ...
//		})
//	}
//
// The database comes from HANGEUL_TEST_DATABASE_URL or DATABASE_URL. Tests
// are skipped when neither is set, except on CI where a missing database
// fails the run.
package testdb
