// dictbuild builds a kana-kanji dictionary from TSV source files and
// publishes it to a local directory or to the location a config names.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"

	"github.com/hupe1980/kanakanji"
	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/config"
	"github.com/hupe1980/kanakanji/dictionary"
	"github.com/hupe1980/kanakanji/internal/compress"
	"github.com/hupe1980/kanakanji/internal/manifest"
	"github.com/hupe1980/kanakanji/louds"
	"github.com/hupe1980/kanakanji/loudstxt"
	"github.com/hupe1980/kanakanji/model"
	"github.com/hupe1980/kanakanji/userdict"
)

var (
	srcPath     = flag.String("src", "", "source TSV: "+dictionary.TSVColumns)
	charsPath   = flag.String("chars", "", "character table, one character per line (default: collected from the readings)")
	outDir      = flag.String("out", "", "local output directory (overrides -config)")
	configPath  = flag.String("config", "", "config file naming the dictionary location")
	shardShift  = flag.Uint("shard-shift", loudstxt.DefaultShardShift, "log2 of readings per shard")
	compression = flag.String("compression", "none", "artifact compression: none, lz4 or zstd")
	publish     = flag.Bool("publish", true, "point CURRENT at the new version")
	keep        = flag.Int("keep", 0, "versions to keep after publishing (0 keeps all)")
	userDB      = flag.String("userdict", "", "user dictionary to export into the reserved user bucket")
	concurrency = flag.Int("concurrency", 0, "parallel shard writers (default: GOMAXPROCS)")
	verbose     = flag.Bool("v", false, "log at debug level")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *srcPath == "" {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `dictbuild - Build a kana-kanji dictionary

Usage: dictbuild -src <file.tsv> [-out <dir> | -config <file>] [options] [more.tsv ...]

Source lines hold reading, word, left class, right class, semantic id and
score separated by tabs. Lines starting with # are comments.

Options:`)
	flag.PrintDefaults()
}

func run(ctx context.Context) error {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := kanakanji.NewTextLogger(level)

	rows, err := readSources(append([]string{*srcPath}, flag.Args()...))
	if err != nil {
		return err
	}

	table, err := charTable(rows)
	if err != nil {
		return err
	}

	ct, err := compress.Parse(*compression)
	if err != nil {
		return err
	}

	blobs, err := openTarget(ctx)
	if err != nil {
		return err
	}

	opts := []dictionary.Option{
		dictionary.WithShardShift(*shardShift),
		dictionary.WithCompression(ct),
		dictionary.WithLogger(logger.Logger),
	}
	if *concurrency > 0 {
		opts = append(opts, dictionary.WithConcurrency(*concurrency))
	}
	b, err := dictionary.NewBuilder(blobs, table, opts...)
	if err != nil {
		return err
	}
	for _, e := range rows {
		if err := b.Add(e); err != nil {
			return fmt.Errorf("%s/%s: %w", e.Reading, e.Word, err)
		}
	}

	if *userDB != "" {
		d, err := userdict.Open(*userDB, userdict.WithLogger(logger.Logger))
		if err != nil {
			return err
		}
		n, err := d.ExportTo(ctx, b)
		_ = d.Close()
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "user dictionary exported", "rows", n)
	}

	m, err := b.Build(ctx)
	if err != nil {
		return err
	}
	entries := 0
	for _, bi := range m.Buckets {
		entries += bi.Entries
	}
	fmt.Printf("built %s: %d buckets, %d entries, %d chars\n", m.Dir(), len(m.Buckets), entries, table.Len())

	if !*publish {
		return nil
	}
	if err := b.Publish(ctx, m); err != nil {
		return err
	}
	fmt.Printf("published %s\n", m.Dir())

	if *keep > 0 {
		deleted, err := manifest.NewStore(blobs).Prune(ctx, *keep)
		if err != nil {
			return err
		}
		for _, id := range deleted {
			fmt.Printf("pruned %s\n", manifest.Dir(id))
		}
	}
	return nil
}

func readSources(paths []string) ([]model.Entry, error) {
	var rows []model.Entry
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r, err := dictionary.ReadTSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rows = append(rows, r...)
	}
	return rows, nil
}

func charTable(rows []model.Entry) (*louds.CharTable, error) {
	if *charsPath != "" {
		f, err := os.Open(*charsPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return louds.ReadCharTable(f)
	}

	seen := make(map[rune]struct{})
	var chars []rune
	for _, e := range rows {
		for _, c := range e.Reading {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				chars = append(chars, c)
			}
		}
	}
	slices.Sort(chars)
	return louds.NewCharTable(chars)
}

func openTarget(ctx context.Context) (blobstore.BlobStore, error) {
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return nil, err
		}
		return blobstore.NewLocalStore(*outDir), nil
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Dictionary.Source == config.SourceMemory {
		return nil, fmt.Errorf("cannot publish to source %q", cfg.Dictionary.Source)
	}
	blobs, _, err := kanakanji.OpenBlobStore(ctx, cfg.Dictionary)
	return blobs, err
}
