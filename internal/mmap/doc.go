// Package mmap maps dictionary artifacts read-only into memory.
//
// LOUDS bit vectors, char tables and loudstxt3 shards are immutable once
// built, so a single shared mapping serves every composing session without
// copying. Readers hand out subslices of Bytes and must stop using them once
// the Mapping is closed.
//
//	m, err := mmap.Open("dict/[3042].loudstxt3")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessRandom)
//	data := m.Bytes()
//
// Unix uses mmap(2)/madvise(2); Windows uses CreateFileMapping and treats
// Advise as a no-op.
package mmap
