// Package kanakanji converts kana input to kanji candidates.
//
// An Engine owns the shared read-only state: the published dictionary, the
// scoring tables, the user dictionary and the learned-word memory. Each
// composing session gets its own Session, which converts incrementally as
// the text is edited.
//
// # Quick Start
//
//	cfg := config.DefaultConfig()
//	cfg.Dictionary.Path = "./dict"
//	eng, _ := kanakanji.Open(ctx, cfg)
//	defer eng.Close()
//
//	sess, _ := eng.NewSession()
//	res := sess.Convert(composing.FromKana("かいしゃ"))
//	for _, c := range res.Candidates() {
//	    fmt.Println(c.Text, c.Value)
//	}
//
// # Committing
//
// Committing a leading part of a candidate removes it from the text and
// rebases the session on the rest, so the next conversion continues the
// sentence:
//
//	text := composing.FromKana("かいしゃにいく")
//	best := sess.Convert(text).Candidates()[0]
//	sess.Commit(text, best, 1) // commit the first clause
//	res = sess.Convert(text)
//
// # Dictionary Sources
//
// Dictionaries are read from a local directory, from memory, from S3 (with
// an optional DynamoDB commit table) or from MinIO:
//
//	cfg.Dictionary.Source = config.SourceS3
//	cfg.Dictionary.Bucket = "dictionaries"
//	cfg.Dictionary.Prefix = "ja/"
//
// Remote shards go through a block cache sized by dictionary.cache_bytes.
package kanakanji
