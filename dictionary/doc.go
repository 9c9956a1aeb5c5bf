// Package dictionary builds and reads sharded LOUDS dictionaries.
//
// Entries are grouped by reading and the readings by bucket, which is the
// first character of the reading or one of the reserved overlay names. Each
// bucket gets its own LOUDS trie and a run of loudstxt3 shards. The slot of a
// reading inside its shard is its trie node index modulo the shard size, so a
// lookup is one trie walk and one random access into one shard.
//
// A build is written to a blobstore.BlobStore below a fresh version directory
// and becomes visible when Publish replaces CURRENT. A Store opened on the
// same blob store serves lookups from the published version, mapping local
// files directly and caching decoded shards for remote ones.
package dictionary
