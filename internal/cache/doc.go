// Package cache holds immutable byte blocks fetched from dictionary storage.
//
// LRUBlockCache is a single-lock LRU. ShardedLRUBlockCache spreads keys over
// 64 of them for stores shared by many composing sessions. Both account their
// bytes against an optional resource.Controller.
package cache
