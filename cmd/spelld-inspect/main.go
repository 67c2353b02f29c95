// Command spelld-inspect is a read-only operator tool: it opens a
// pebble-backed spelling index and dumps group registrations, word
// counts, and FastSS allocator state, for diagnosing a corrupt or
// bloated index. Grounded on the teacher's cmd/inspect (flag-parsed
// single-purpose CLI) and cmd/progressdb/main.go (godotenv + promhttp
// wiring).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spelld/pkg/kvtable/pebblekv"
	"spelld/pkg/spelling"
	"spelld/pkg/spelling/fastss"
	"spelld/pkg/spelling/fsck"
	"spelld/pkg/spelling/group"
	"spelld/pkg/spelling/ratelimit"
	"spelld/pkg/spelling/slogging"
)

func main() {
	var (
		dbPath      string
		prefix      string
		engineName  string
		runFsck     bool
		metricsAddr string
	)
	flag.StringVar(&dbPath, "path", "", "path to the pebble-backed spelling database (required)")
	flag.StringVar(&prefix, "prefix", "", "application prefix to dump word counts for")
	flag.StringVar(&engineName, "engine", "fastss", "active fragment engine: fastss or trigram")
	flag.BoolVar(&runFsck, "fsck", false, "run the read-only consistency sweep and exit")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "if set, serve /metrics on this address until interrupted")
	flag.Parse()

	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "--path is required")
		os.Exit(2)
	}

	_ = godotenv.Load(".env")
	slogging.Init()

	table, err := pebblekv.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer table.Close()

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			slogging.Info("metrics_listen", "addr", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				slogging.Error("metrics_listen_failed", "err", err)
			}
		}()
	}

	if runFsck {
		rep, err := fsck.Run(table)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fsck: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("scanned %d ids, %d postings; %d issues\n", rep.IDsScanned, rep.PostingsScanned, len(rep.Issues))
		for _, issue := range rep.Issues {
			fmt.Printf("  [%s] %s\n", issue.Kind, issue.Detail)
		}
		if len(rep.Issues) > 0 {
			os.Exit(1)
		}
		return
	}

	batch := table.NewBatch()
	registry := group.New(table, batch)
	stats, err := registry.Snapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "group snapshot: %v\n", err)
		os.Exit(1)
	}
	_ = batch.Cancel()

	fmt.Printf("GROUPMAX: %d\n", stats.GroupMax)
	fmt.Printf("registered prefixes: %d\n", len(stats.Prefixes))
	for p, g := range stats.Prefixes {
		fmt.Printf("  %q -> group %d\n", p, g)
	}

	kind := spelling.Trigram
	if engineName == "fastss" {
		kind = spelling.FastSS
		eng := fastss.New(table)
		if max, depth, err := eng.Stats(); err == nil {
			fmt.Printf("INDEXMAX: %d, INDEXSTACK depth: %d\n", max, depth)
		} else {
			fmt.Fprintf(os.Stderr, "allocator stats: %v\n", err)
		}
	}

	if prefix != "" {
		sess := spelling.New(table, kind)
		var count int
		limiter := ratelimit.New(10000, 1000)
		err := sess.WalkAllWords(context.Background(), prefix, limiter, func(word string, freq uint32) error {
			count++
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "walk %q: %v\n", prefix, err)
			os.Exit(1)
		}
		fmt.Printf("prefix %q: %d live words\n", prefix, count)
		_ = sess.Cancel()
	}
}
