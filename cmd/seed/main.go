// Command seed loads a JSON snapshot of transactions and bills for one user
// into Firestore. The snapshot may be a local file or a gs:// object.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/firestore"
	"github.com/aiworkshop/finassist/backend/internal/config"
	"github.com/aiworkshop/finassist/backend/internal/logger"
	"github.com/aiworkshop/finassist/backend/internal/store"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

func main() {
	source := flag.String("source", "", "snapshot path or GCS URI (e.g. gs://bucket/demo.json)")
	userID := flag.String("user", "local-dev-user", "user the snapshot is assigned to")
	credentials := flag.String("credentials", "", "service account key file for GCS and Firestore")
	dryRun := flag.Bool("dry-run", false, "parse and validate the snapshot without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)

	if *source == "" {
		log.Fatal().Msg("Error: --source is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var opts []option.ClientOption
	if *credentials != "" {
		opts = append(opts, option.WithCredentialsFile(*credentials))
	}

	data, err := store.ReadSource(ctx, *source, opts...)
	if err != nil {
		log.Fatal().Err(err).Str("source", *source).Msg("failed to read snapshot")
	}

	snap, err := store.ParseSnapshot(data, *userID, civil.DateOf(time.Now()), logger.Component(log, "snapshot"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse snapshot")
	}

	if *dryRun {
		log.Info().
			Int("transactions", len(snap.Transactions)).
			Int("bills", len(snap.Bills)).
			Msg("dry run: snapshot is valid")
		return
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Firestore client")
	}
	defer client.Close()

	if err := seed(ctx, store.NewFirestoreStore(client, logger.Component(log, "store")), snap, log); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	fmt.Printf("Seeded %d transactions and %d bills for %s.\n", len(snap.Transactions), len(snap.Bills), *userID)
}

// seed writes a parsed snapshot into s.
func seed(ctx context.Context, s store.Store, snap *store.Snapshot, log zerolog.Logger) error {
	if err := s.BatchCreateTransactions(ctx, snap.Transactions); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}
	log.Info().Int("count", len(snap.Transactions)).Msg("transactions written")

	for i := range snap.Bills {
		if err := s.CreateBill(ctx, &snap.Bills[i]); err != nil {
			return fmt.Errorf("write bill %q: %w", snap.Bills[i].Name, err)
		}
	}
	log.Info().Int("count", len(snap.Bills)).Msg("bills written")
	return nil
}
