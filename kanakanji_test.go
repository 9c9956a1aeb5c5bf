package kanakanji

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/composing"
	"github.com/hupe1980/kanakanji/config"
	"github.com/hupe1980/kanakanji/converter"
	"github.com/hupe1980/kanakanji/model"
	"github.com/hupe1980/kanakanji/testutil"
)

func memoryConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Dictionary.Source = config.SourceMemory
	return cfg
}

func openFixture(t *testing.T, cfg *config.Config, opts ...Option) *Engine {
	t.Helper()
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	_, err := testutil.BuildFixture(ctx, blobs)
	require.NoError(t, err)

	opts = append([]Option{WithBlobStore(blobs), WithLogger(NoopLogger())}, opts...)
	eng, err := Open(ctx, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func newSession(t *testing.T, eng *Engine) *Session {
	t.Helper()
	s, err := eng.NewSession()
	require.NoError(t, err)
	return s
}

func texts(cands []converter.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Text
	}
	return out
}

func TestOpen(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		eng := openFixture(t, memoryConfig(), WithMetricsCollector(metrics))
		sess := newSession(t, eng)

		r := sess.Convert(composing.FromKana("かいしゃ"))
		assert.Equal(t, converter.Full, r.Strategy)
		cands := r.Candidates()
		require.NotEmpty(t, cands)
		assert.Equal(t, "会社", cands[0].Text)

		stats := metrics.GetStats()
		assert.Equal(t, int64(1), stats.ConversionCount)
		assert.Equal(t, int64(1), stats.Strategies["full"])
		assert.Positive(t, stats.ShardLoads)
		assert.Zero(t, stats.ShardErrors)
	})

	t.Run("Local", func(t *testing.T) {
		ctx := context.Background()
		dir := t.TempDir()
		_, err := testutil.BuildFixture(ctx, blobstore.NewLocalStore(dir))
		require.NoError(t, err)

		cfg := config.DefaultConfig()
		cfg.Dictionary.Path = dir
		eng, err := Open(ctx, cfg, WithLogger(NoopLogger()))
		require.NoError(t, err)
		defer eng.Close()

		cands := newSession(t, eng).Convert(composing.FromKana("かい")).Candidates()
		require.NotEmpty(t, cands)
		assert.Equal(t, "会", cands[0].Text)
	})

	t.Run("NoDictionary", func(t *testing.T) {
		_, err := Open(context.Background(), memoryConfig(), WithLogger(NoopLogger()))
		assert.ErrorIs(t, err, ErrNoDictionary)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.NBest = 0
		_, err := Open(context.Background(), cfg)
		var verrs config.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("MissingCostTable", func(t *testing.T) {
		ctx := context.Background()
		blobs := blobstore.NewMemoryStore()
		_, err := testutil.BuildFixture(ctx, blobs)
		require.NoError(t, err)

		cfg := memoryConfig()
		cfg.Costs.Matrix = filepath.Join(t.TempDir(), "missing.bin")
		_, err = Open(ctx, cfg, WithBlobStore(blobs), WithLogger(NoopLogger()))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoDictionary)
	})
}

func TestOpenBlobStore_Unsupported(t *testing.T) {
	_, _, err := OpenBlobStore(context.Background(), config.DictionaryConfig{Source: "ftp"})
	var unsupported *ErrUnsupportedSource
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "ftp", unsupported.Source)
}

func TestBaseURI(t *testing.T) {
	assert.Equal(t, "s3://dicts", baseURI(config.DictionaryConfig{Bucket: "dicts"}))
	assert.Equal(t, "s3://dicts/ja", baseURI(config.DictionaryConfig{Bucket: "dicts", Prefix: "/ja/"}))
}

func TestSession_Commit(t *testing.T) {
	eng := openFixture(t, memoryConfig())
	sess := newSession(t, eng)
	text := composing.FromKana("きんか")

	cands := sess.Convert(text).Candidates()
	require.NotEmpty(t, cands)
	best := cands[0]
	assert.Equal(t, "金か", best.Text)
	require.Len(t, best.Clauses, 2)

	head, err := sess.Commit(text, best, 1)
	require.NoError(t, err)
	assert.Equal(t, "金", head.Text)
	assert.Equal(t, "か", text.InputText())
	assert.Equal(t, 1, eng.Memory().Len())

	r := sess.Convert(text)
	assert.Equal(t, converter.PostCommit, r.Strategy)
	cands = r.Candidates()
	require.NotEmpty(t, cands)
	assert.Equal(t, "か", cands[0].Text)

	_, err = sess.Commit(text, converter.Candidate{}, 0)
	assert.ErrorIs(t, err, ErrNothingToCommit)
}

func TestSession_Learn(t *testing.T) {
	eng := openFixture(t, memoryConfig())

	cands := newSession(t, eng).Convert(composing.FromKana("か")).Candidates()
	require.NotEmpty(t, cands)
	assert.Equal(t, "か", cands[0].Text)

	var ka converter.Candidate
	for _, c := range cands {
		if c.Text == "課" {
			ka = c
		}
	}
	require.NotEmpty(t, ka.Entries)

	sess := newSession(t, eng)
	sess.Learn(ka)
	sess.Learn(ka)
	cands = sess.Convert(composing.FromKana("か")).Candidates()
	require.NotEmpty(t, cands)
	assert.Equal(t, "課", cands[0].Text)
	assert.NotZero(t, cands[0].Entries[0].Flags&model.Learned)

	eng.Forget("か", "課")
	sess.Reset()
	cands = sess.Convert(composing.FromKana("か")).Candidates()
	assert.Equal(t, "か", cands[0].Text)
}

func TestSession_LearnRebuildsLattice(t *testing.T) {
	eng := openFixture(t, memoryConfig())
	sess := newSession(t, eng)
	txt := composing.FromKana("か")

	cands := sess.Convert(txt).Candidates()
	require.NotEmpty(t, cands)
	assert.Equal(t, "か", cands[0].Text)
	var ka converter.Candidate
	for _, c := range cands {
		if c.Text == "課" {
			ka = c
		}
	}
	require.NotEmpty(t, ka.Entries)

	sess.Learn(ka)
	sess.Learn(ka)
	r := sess.Convert(txt)
	assert.Equal(t, converter.Full, r.Strategy)
	assert.Equal(t, "課", r.Candidates()[0].Text)

	txt.AppendKana("き")
	got := texts(sess.Convert(txt).Candidates())
	want := texts(newSession(t, eng).Convert(txt).Candidates())
	assert.Equal(t, want, got)
	assert.Equal(t, "課木", got[0])

	eng.Forget("か", "課")
	got = texts(sess.Convert(txt).Candidates())
	assert.Equal(t, texts(newSession(t, eng).Convert(txt).Candidates()), got)
}

func TestSession_UserWordRebuildsLattice(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	cfg.UserDict.Path = filepath.Join(t.TempDir(), "user.db")
	eng := openFixture(t, cfg)
	sess := newSession(t, eng)
	txt := composing.FromKana("かい")

	require.NotEqual(t, "櫂", sess.Convert(txt).Candidates()[0].Text)

	require.NoError(t, eng.AddUserWord(ctx, model.Entry{Reading: "かい", Word: "櫂", LCID: 1, RCID: 1, Score: 0}))
	assert.Equal(t, "櫂", sess.Convert(txt).Candidates()[0].Text)

	require.NoError(t, eng.RemoveUserWord(ctx, "かい", "櫂"))
	assert.NotContains(t, texts(sess.Convert(txt).Candidates()), "櫂")
}

func TestSession_EditsMatchFreshSession(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		eng := openFixture(t, memoryConfig())
		sess := newSession(t, eng)
		txt := &composing.Text{}
		for step, e := range testutil.NewRNG(seed).Edits(150, 8) {
			e.Apply(txt)
			got := sess.Convert(txt)
			gotTexts := texts(got.Candidates())
			want := newSession(t, eng).Convert(txt)
			require.InDeltaSlice(t, want.Scores(), got.Scores(), 1e-4,
				"seed %d step %d %q via %s", seed, step, txt.InputText(), got.Strategy)
			require.Equal(t, texts(want.Candidates()), gotTexts,
				"seed %d step %d %q", seed, step, txt.InputText())

			if step%40 == 39 {
				if cands := got.Candidates(); len(cands) > 1 {
					sess.Learn(cands[len(cands)-1])
				}
			}
		}
	}
}

func TestSession_Predict(t *testing.T) {
	eng := openFixture(t, memoryConfig())
	var words []string
	for _, e := range newSession(t, eng).Predict("かい", 10) {
		words = append(words, e.Word)
	}
	assert.Contains(t, words, "会社")
	assert.Contains(t, words, "会")
}

func TestSession_TypoCorrection(t *testing.T) {
	cfg := memoryConfig()
	assert.Empty(t, newSession(t, openFixture(t, cfg)).Convert(composing.FromKana("かぃ")).Candidates())

	cfg.NeedTypoCorrection = true
	cands := newSession(t, openFixture(t, cfg)).Convert(composing.FromKana("かぃ")).Candidates()
	require.NotEmpty(t, cands)
	assert.Equal(t, "会", cands[0].Text)
}

func TestEngine_BlockedWords(t *testing.T) {
	eng := openFixture(t, memoryConfig(), WithBlockedWords("会社"))
	cands := newSession(t, eng).Convert(composing.FromKana("かいしゃ")).Candidates()
	require.NotEmpty(t, cands)
	assert.NotContains(t, texts(cands), "会社")
}

func TestEngine_UserWords(t *testing.T) {
	ctx := context.Background()

	t.Run("Configured", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.UserDict.Path = filepath.Join(t.TempDir(), "user.db")
		eng := openFixture(t, cfg)

		require.NoError(t, eng.AddUserWord(ctx, model.Entry{Reading: "かい", Word: "櫂", LCID: 1, RCID: 1, Score: 0}))
		words, err := eng.UserWords(ctx)
		require.NoError(t, err)
		require.Len(t, words, 1)

		cands := newSession(t, eng).Convert(composing.FromKana("かい")).Candidates()
		require.NotEmpty(t, cands)
		assert.Equal(t, "櫂", cands[0].Text)

		require.NoError(t, eng.RemoveUserWord(ctx, "かい", "櫂"))
		assert.ErrorIs(t, eng.RemoveUserWord(ctx, "かい", "櫂"), ErrNotFound)
	})

	t.Run("NotConfigured", func(t *testing.T) {
		eng := openFixture(t, memoryConfig())
		assert.ErrorIs(t, eng.AddUserWord(ctx, model.Entry{Reading: "か", Word: "可"}), ErrNoUserDictionary)
		_, err := eng.UserWords(ctx)
		assert.ErrorIs(t, err, ErrNoUserDictionary)
	})
}

func TestEngine_Close(t *testing.T) {
	eng := openFixture(t, memoryConfig())
	require.NoError(t, eng.Close())
	require.NoError(t, eng.Close())
	_, err := eng.NewSession()
	assert.ErrorIs(t, err, ErrClosed)
}

func BenchmarkSession_Convert(b *testing.B) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	if _, err := testutil.BuildFixture(ctx, blobs); err != nil {
		b.Fatal(err)
	}
	eng, err := Open(ctx, memoryConfig(), WithBlobStore(blobs), WithLogger(NoopLogger()))
	if err != nil {
		b.Fatal(err)
	}
	defer eng.Close()

	input := []string{"か", "い", "し", "ゃ", "き", "ん", "か"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sess, _ := eng.NewSession()
		text := &composing.Text{}
		for _, kana := range input {
			text.AppendKana(kana)
			sess.Convert(text)
		}
	}
}
