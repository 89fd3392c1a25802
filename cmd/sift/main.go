// Copyright 2026 Quillstack Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/quillstack/sift"
	"github.com/quillstack/sift/ai"
	"github.com/quillstack/sift/ingest"
	"github.com/quillstack/sift/jobs"
	"github.com/quillstack/sift/storage"
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	app := &cli.App{
		Name:   "sift",
		Usage:  "Document ingestion and hybrid retrieval engine",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest one or more documents into the index",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Chunking strategy (sliding_window, sentence_paragraph, semantic)",
						Value: "sliding_window",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
						Value: 512,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Overlap between consecutive chunks in characters",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Documents processed concurrently in a batch",
						Value: 5,
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Extra metadata as key=value (repeatable)",
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Search the index",
				ArgsUsage: "QUERY",
				Action:    queryCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Retrieval mode (vector, hybrid, keyword)",
						Value: "hybrid",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum vector similarity",
						Value: 0.7,
					},
					&cli.Float64Flag{
						Name:  "alpha",
						Usage: "Vector weight in hybrid scoring (0..1)",
						Value: 0.5,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Restrict to one document type (pdf, txt, json, md)",
					},
				),
			},
			{
				Name:   "documents",
				Usage:  "List ingested documents",
				Action: documentsCommand,
				Flags: append(engineFlags(),
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Number of documents to skip",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of documents",
						Value: 20,
					},
				),
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and all its chunks",
				ArgsUsage: "DOCUMENT_ID",
				Action:    deleteCommand,
				Flags:     engineFlags(),
			},
			{
				Name:      "job",
				Usage:     "Show the state of a batch ingestion job",
				ArgsUsage: "JOB_ID",
				Action:    jobCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "redis-addr",
						Usage:   "Redis address for job tracking",
						EnvVars: []string{"SIFT_REDIS_ADDR"},
					},
					&cli.StringFlag{
						Name:    "redis-password",
						Usage:   "Redis password",
						EnvVars: []string{"SIFT_REDIS_PASSWORD"},
					},
					&cli.IntFlag{
						Name:    "redis-db",
						Usage:   "Redis database number",
						EnvVars: []string{"SIFT_REDIS_DB"},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// engineFlags are shared by every command that opens the engine.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the index directory",
			Required: true,
			EnvVars:  []string{"SIFT_DB"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"SIFT_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "text-embedding-3-small",
			EnvVars: []string{"SIFT_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "embedding-token",
			Usage:   "Embedding service API token",
			Value:   "none",
			EnvVars: []string{"SIFT_EMBEDDING_TOKEN"},
		},
		&cli.IntFlag{
			Name:    "dimension",
			Usage:   "Embedding vector dimension",
			Value:   1536,
			EnvVars: []string{"SIFT_EMBEDDING_DIMENSION"},
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Texts sent per embedding call",
			Value: 32,
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Redis address for job tracking",
			EnvVars: []string{"SIFT_REDIS_ADDR"},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			EnvVars: []string{"SIFT_REDIS_PASSWORD"},
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   "Redis database number",
			EnvVars: []string{"SIFT_REDIS_DB"},
		},
	}
}

func openEngine(c *cli.Context) (*sift.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithToken(c.String("embedding-token")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("dimension")),
		ai.WithBatchSize(c.Int("batch-size")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	opts := []sift.EngineOption{
		sift.WithAIConfig(aiConfig),
	}
	if c.IsSet("strategy") || c.IsSet("chunk-size") || c.IsSet("chunk-overlap") {
		opts = append(opts, sift.WithChunking(
			c.String("strategy"), c.Int("chunk-size"), c.Int("chunk-overlap")))
	}
	if c.IsSet("pool-size") {
		opts = append(opts, sift.WithPoolSize(c.Int("pool-size")))
	}
	if addr := c.String("redis-addr"); addr != "" {
		opts = append(opts, sift.WithRedis(addr, c.String("redis-password"), c.Int("redis-db")))
	}

	return sift.Open(c.String("db"), opts...)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	metadata, err := parseMetadata(c.StringSlice("meta"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	ctx := context.Background()

	if c.NArg() == 1 {
		path := c.Args().First()
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		result, err := engine.Ingest(ctx, filepath.Base(path), data, metadata)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}

		fmt.Printf("document_id: %s\n", result.DocumentID)
		fmt.Printf("chunks: %d\n", result.Chunks)
		fmt.Printf("hash: %s\n", result.Hash)
		return nil
	}

	docs := make([]ingest.Document, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, ingest.Document{
			Filename: filepath.Base(path),
			Data:     data,
			Metadata: metadata,
		})
	}

	jobID, err := engine.IngestBatch(ctx, docs)
	if err != nil {
		return fmt.Errorf("batch ingestion failed: %w", err)
	}
	fmt.Printf("job_id: %s\n", jobID)

	// The batch runs in the background; wait for it so the engine is not
	// closed out from under the workers.
	for {
		job, err := engine.Job(ctx, jobID)
		if err != nil {
			return err
		}
		if job.Terminal() {
			printJob(job)
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func queryCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("query text is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	opts := ingest.QueryOptions{
		Mode: c.String("mode"),
		Search: storage.SearchOptions{
			Limit:        c.Int("limit"),
			Threshold:    float32(c.Float64("threshold")),
			Alpha:        c.Float64("alpha"),
			DocumentType: c.String("type"),
		},
	}

	results, err := engine.Query(context.Background(), query, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, result := range results {
		fmt.Printf("%2d. score=%.4f vector=%.4f keyword=%.4f doc=%s chunk=%d\n",
			i+1, result.Score, result.VectorScore, result.KeywordScore,
			result.Record.DocumentID, result.Record.ChunkID)
		fmt.Printf("    %s\n", snippet(result.Record.Text, 160))
	}
	return nil
}

func documentsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	docs, total, err := engine.ListDocuments(context.Background(), c.Int("offset"), c.Int("limit"))
	if err != nil {
		return err
	}

	fmt.Printf("%d document(s)\n", total)
	for _, doc := range docs {
		fmt.Printf("%s  %-6s %4d chunk(s)  %s\n",
			doc.DocumentID, doc.DocumentType, doc.ChunkCount, doc.Filename)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one document ID is required")
	}
	documentID := c.Args().First()

	engine, err := openEngine(c)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	deleted, err := engine.DeleteDocument(context.Background(), documentID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("document %s not found", documentID)
	}
	fmt.Printf("deleted %s\n", documentID)
	return nil
}

func jobCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one job ID is required")
	}

	ctx := context.Background()
	trackerOpts := []jobs.TrackerOption{}
	if addr := c.String("redis-addr"); addr != "" {
		trackerOpts = append(trackerOpts,
			jobs.WithRedis(addr, c.String("redis-password"), c.Int("redis-db")))
	}
	tracker := jobs.NewTracker(ctx, trackerOpts...)

	job, err := tracker.GetJob(ctx, c.Args().First())
	if err != nil {
		return err
	}
	printJob(job)
	return nil
}

func printJob(job *jobs.Job) {
	fmt.Printf("job_id: %s\n", job.JobID)
	fmt.Printf("status: %s\n", job.Status)
	fmt.Printf("progress: %d completed, %d failed of %d\n",
		job.CompletedDocuments, job.FailedDocuments, job.TotalDocuments)
	if job.Error != "" {
		fmt.Printf("error: %s\n", job.Error)
	}
	if job.CurrentFile != "" {
		fmt.Printf("current_file: %s\n", job.CurrentFile)
	}
	for docID, entry := range job.Documents {
		if entry.Error != "" {
			fmt.Printf("  %s (%s): %s (%s)\n", docID, entry.Filename, entry.Status, entry.Error)
		} else {
			fmt.Printf("  %s (%s): %s\n", docID, entry.Filename, entry.Status)
		}
	}
}

func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}

func snippet(text string, max int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
