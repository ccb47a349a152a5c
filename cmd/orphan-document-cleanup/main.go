package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/sirupsen/logrus"
)

// orphan-document-cleanup removes invoice and purchase headers that were left
// without items by an interrupted, non-atomic write.
//
// Dry-run (default): list only
//   go run ./cmd/orphan-document-cleanup -business-id=...
//
// Execute:
//   go run ./cmd/orphan-document-cleanup -business-id=... -dry-run=false -confirm=DELETE
//
// Only documents last written before -min-age are considered, and the delete
// re-checks that bound, so a document being created or edited is never picked up.
func main() {
	businessID := flag.String("business-id", "", "Required: business id (uuid)")
	minAge := flag.Duration("min-age", 15*time.Minute, "Skip documents created more recently than this")
	dryRun := flag.Bool("dry-run", true, "List only (no writes)")
	confirm := flag.String("confirm", "", "Type DELETE to proceed when dry-run=false")
	flag.Parse()

	if strings.TrimSpace(*businessID) == "" {
		fmt.Fprintln(os.Stderr, "--business-id is required")
		os.Exit(1)
	}
	if !*dryRun && strings.TrimSpace(*confirm) != "DELETE" {
		fmt.Fprintln(os.Stderr, "set --confirm=DELETE to proceed")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := config.GetLogger()
	store := models.NewGormStore(db)
	ctx := utils.SetBusinessIdInContext(context.Background(), strings.TrimSpace(*businessID))

	cutoff := time.Now().UTC().Add(-*minAge)
	docs, err := models.FindOrphanedDocuments(ctx, store, cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Println("no orphaned documents found")
		return
	}
	fmt.Printf("found %d orphaned documents\n", len(docs))
	for _, doc := range docs {
		fmt.Printf("%s id=%s number=%s created_at=%s updated_at=%s\n", doc.Document, doc.Id, doc.Number,
			doc.CreatedAt.Format(time.RFC3339), doc.UpdatedAt.Format(time.RFC3339))
	}
	if *dryRun {
		return
	}

	// One cleanup run per business at a time.
	config.ConnectRedisWithRetry()
	release, err := utils.ObtainBusinessLock(ctx, *businessID, "orphan-cleanup", 5*time.Minute, "orphan-document-cleanup", "main")
	if err != nil {
		fmt.Fprintf(os.Stderr, "lock failed: %v\n", err)
		os.Exit(1)
	}
	defer release()

	deleted, err := models.DeleteOrphanedDocuments(ctx, store, docs, cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleanup failed after %d deletes: %v\n", deleted, err)
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{
		"business_id": *businessID,
		"found":       len(docs),
		"deleted":     deleted,
	}).Info("orphaned documents removed")
}
