// kana2kanji converts kana read from stdin, one edit per line.
//
// Each line is appended to the composing text and the text is converted
// again, so the session runs incrementally. Lines starting with ':' are
// commands.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/kanakanji"
	"github.com/hupe1980/kanakanji/composing"
	"github.com/hupe1980/kanakanji/config"
	"github.com/hupe1980/kanakanji/converter"
)

var (
	configPath = flag.String("config", "", "path to config file")
	dictPath   = flag.String("dict", "", "local dictionary directory (overrides the config)")
	top        = flag.Int("n", 5, "candidates to print")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dictPath != "" {
		cfg.Dictionary.Source = config.SourceLocal
		cfg.Dictionary.Path = *dictPath
	}

	ctx := context.Background()
	metrics := &kanakanji.BasicMetricsCollector{}
	eng, err := kanakanji.Open(ctx, cfg, kanakanji.WithMetricsCollector(metrics))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening dictionary: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	sess, err := eng.NewSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	r := &repl{sess: sess, metrics: metrics, text: &composing.Text{}, out: os.Stdout}
	if err := r.run(os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `kana2kanji - Interactive kana to kanji conversion

Usage: kana2kanji [options] < input

Each input line is appended to the text and converted.

Commands:
  :commit N   Commit the first N clauses of the best candidate (all if omitted)
  :del N      Delete the last N characters
  :reset      Start a new sentence
  :stats      Print conversion statistics

Options:`)
	flag.PrintDefaults()
}

type repl struct {
	sess    *kanakanji.Session
	metrics *kanakanji.BasicMetricsCollector
	text    *composing.Text
	out     io.Writer
	best    []converter.Candidate
}

func (r *repl) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			r.command(line)
			continue
		}
		r.text.AppendKana(line)
		r.convert()
	}
	return sc.Err()
}

func (r *repl) command(line string) {
	fields := strings.Fields(line)
	arg := 0
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintf(r.out, "bad argument %q\n", fields[1])
			return
		}
		arg = n
	}

	switch fields[0] {
	case ":commit":
		if len(r.best) == 0 {
			fmt.Fprintln(r.out, "nothing to commit")
			return
		}
		head, err := r.sess.Commit(r.text, r.best[0], arg)
		if err != nil {
			fmt.Fprintf(r.out, "commit: %v\n", err)
			return
		}
		fmt.Fprintf(r.out, "committed %s\n", head.Text)
		r.best = nil
		if r.text.InputCount() > 0 {
			r.convert()
		}
	case ":del":
		r.text.DeleteLast(max(arg, 1))
		r.convert()
	case ":reset":
		r.sess.Reset()
		r.text = &composing.Text{}
		r.best = nil
	case ":stats":
		s := r.metrics.GetStats()
		fmt.Fprintf(r.out, "conversions %d (avg %dns) strategies %v\n", s.ConversionCount, s.ConversionAvgNanos, s.Strategies)
		fmt.Fprintf(r.out, "shards loaded %d (%d bytes, %d errors)\n", s.ShardLoads, s.ShardBytes, s.ShardErrors)
	default:
		fmt.Fprintf(r.out, "unknown command %s\n", fields[0])
	}
}

func (r *repl) convert() {
	res := r.sess.Convert(r.text)
	r.best = res.Candidates()
	fmt.Fprintf(r.out, "%s [%s]\n", r.text.SurfaceText(), res.Strategy)
	for i, c := range r.best {
		if i == *top {
			break
		}
		clauses := make([]string, len(c.Clauses))
		for j, cl := range c.Clauses {
			clauses[j] = cl.Text
		}
		fmt.Fprintf(r.out, "%3d. %s\t%.2f\t%s\n", i+1, c.Text, c.Value, strings.Join(clauses, "|"))
	}
}
