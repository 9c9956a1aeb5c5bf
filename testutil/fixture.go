package testutil

import (
	"context"

	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/dictionary"
	"github.com/hupe1980/kanakanji/internal/manifest"
	"github.com/hupe1980/kanakanji/louds"
	"github.com/hupe1980/kanakanji/model"
)

// Alphabet is the reading alphabet of the fixture dictionary, most frequent
// first.
var Alphabet = []string{"か", "い", "し", "ゃ", "あ", "き", "ん", "う", "と"}

// HiraganaTable returns a char table holding the hiragana block and the
// long vowel mark.
func HiraganaTable() *louds.CharTable {
	var chars []rune
	for c := 'ぁ'; c <= 'ゖ'; c++ {
		chars = append(chars, c)
	}
	chars = append(chars, 'ー')
	table, err := louds.NewCharTable(chars)
	if err != nil {
		panic(err)
	}
	return table
}

func row(reading, word string, lcid, rcid model.ClassID, mid model.SemanticID, score float32) model.Entry {
	return model.Entry{Reading: reading, Word: word, LCID: lcid, RCID: rcid, MID: mid, Score: score}
}

// Entries is the fixture dictionary. Class 2 is a particle that attaches to
// the preceding clause; semantic id 0 is neutral.
var Entries = []model.Entry{
	row("あい", "愛", 1, 1, 10, -10),
	row("あい", "藍", 1, 1, 11, -12),
	row("あ", "亜", 1, 1, 12, -20),
	row("あ", "阿", 1, 1, 13, -21),
	row("か", "蚊", 1, 1, 7, -3),
	row("か", "課", 1, 1, 8, -3.5),
	row("か", "か", 2, 2, 0, -2.5),
	row("い", "胃", 1, 1, 9, -3.2),
	row("い", "井", 1, 1, 14, -4.1),
	row("かい", "会", 1, 1, 15, -2.5),
	row("かい", "貝", 1, 1, 16, -3),
	row("し", "氏", 1, 1, 17, -3.3),
	row("しゃ", "社", 1, 1, 18, -3.1),
	row("かいしゃ", "会社", 1, 1, 19, -2),
	row("き", "木", 1, 1, 20, -3),
	row("きん", "金", 1, 1, 21, -3),
	row("と", "と", 2, 2, 0, -1.5),
	row("う", "卯", 1, 1, 22, -6),
	row("ん", "ん", 2, 2, 0, -5),
}

// BuildFixture builds and publishes the fixture dictionary.
func BuildFixture(ctx context.Context, blobs blobstore.BlobStore, opts ...dictionary.Option) (*manifest.Manifest, error) {
	return Build(ctx, blobs, Entries, opts...)
}

// Build builds and publishes a dictionary of entries over HiraganaTable.
func Build(ctx context.Context, blobs blobstore.BlobStore, entries []model.Entry, opts ...dictionary.Option) (*manifest.Manifest, error) {
	b, err := dictionary.NewBuilder(blobs, HiraganaTable(), opts...)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := b.Add(e); err != nil {
			return nil, err
		}
	}
	m, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.Publish(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
