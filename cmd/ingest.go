package cmd

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/askphys/askphys/internal/log"
)

// runIngest indexes the corpus directory into the vector store.
func runIngest(logger log.Logger, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	dir := fs.String("dir", "", "corpus directory (default: corpus_dir from config)")
	force := fs.Bool("force", false, "re-ingest documents that are already indexed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.close()

	pipeline, err := a.ingester(*force)
	if err != nil {
		return err
	}

	corpusDir := *dir
	if corpusDir == "" {
		corpusDir = a.cfg.CorpusDir
	}

	sum, err := pipeline.IngestDir(ctx, corpusDir)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", corpusDir, err)
	}

	fmt.Printf("Ingested %s: %d added, %d skipped, %d failed, %d chunks written\n",
		corpusDir, sum.FilesAdded, sum.FilesSkipped, sum.FilesFailed, sum.ChunksWritten)
	if sum.FilesFailed > 0 {
		return fmt.Errorf("%d document(s) failed to ingest", sum.FilesFailed)
	}
	return nil
}
