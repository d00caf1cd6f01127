package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aretw0/jsonvault"
)

func main() {
	count := flag.Int("count", 1000, "Number of documents to insert")
	encrypt := flag.Bool("encrypted", false, "Benchmark an encrypted database")
	keep := flag.Bool("keep", false, "Keep the benchmark database after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "jsonvault_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	path := filepath.Join(benchDir, "bench.json")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := []jsonvault.Option{jsonvault.WithLogger(logger)}
	if *encrypt {
		key, err := jsonvault.GenerateKey()
		if err != nil {
			panic(err)
		}
		opts = append(opts, jsonvault.WithEncryption(true), jsonvault.WithKey(key))
	}

	ctx := context.TODO()

	db, err := jsonvault.Open(path, opts...)
	if err != nil {
		panic(err)
	}

	// Every Save rewrites the whole file, so this phase grows quadratically.
	fmt.Printf("Inserting %d documents into %s...\n", *count, path)
	startInsert := time.Now()
	for i := 0; i < *count; i++ {
		_, err := db.Save(ctx, "item", jsonvault.Document{
			"name":   fmt.Sprintf("Item %d", i),
			"bucket": i % 10,
			"tags":   []string{"benchmark", "test"},
		})
		if err != nil {
			panic(err)
		}
	}
	insert := time.Since(startInsert)

	info, err := os.Stat(path)
	if err != nil {
		panic(err)
	}

	// A fresh Open measures hydration as a new CLI invocation would see it.
	startLoad := time.Now()
	db2, err := jsonvault.Open(path, opts...)
	if err != nil {
		panic(err)
	}
	if err := db2.WaitReady(ctx); err != nil {
		panic(err)
	}
	load := time.Since(startLoad)

	startFind := time.Now()
	found, err := db2.Find(ctx, "item", []jsonvault.Filter{jsonvault.Equals("bucket", 3)})
	if err != nil {
		panic(err)
	}
	find := time.Since(startFind)

	startDelete := time.Now()
	if err := db2.DeleteByCriteria(ctx, "item", []jsonvault.Filter{jsonvault.Equals("bucket", 3)}); err != nil {
		panic(err)
	}
	deleteByCriteria := time.Since(startDelete)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d documents, %s on disk, encrypted=%v):\n", *count, humanize.Bytes(uint64(info.Size())), *encrypt)
	fmt.Printf("  Insert:           %v (%v/doc)\n", insert, insert/time.Duration(max(*count, 1)))
	fmt.Printf("  Load:             %v\n", load)
	fmt.Printf("  Find:             %v (Items: %d)\n", find, len(found))
	fmt.Printf("  DeleteByCriteria: %v\n", deleteByCriteria)
	fmt.Printf("--------------------------------------------------\n")
}
