// Package testutil provides fixtures for tests and benchmarks.
//
// It is intended for use in tests only.
//
// # Fixture Dictionary
//
//	table := testutil.HiraganaTable()
//	m, err := testutil.BuildFixture(ctx, blobstore.NewMemoryStore())
//
// # Random Edits
//
//	rng := testutil.NewRNG(seed)
//	for _, e := range rng.Edits(100, 8) {
//		e.Apply(text)
//	}
package testutil
