// Command cardgen mints a batch of recharge cards and prints their codes,
// one per line, for handover to a distributor.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/evgsol/vipgate/internal/logging"
	"github.com/evgsol/vipgate/internal/server/config"
	"github.com/evgsol/vipgate/internal/server/repositories/repomanager"
	"github.com/evgsol/vipgate/internal/server/services"
)

func run(ctx context.Context, out io.Writer, dsn string, adminID int64, count, level, days int, price float64) error {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	admin := services.NewAdminService(db, repos, logger)

	cards, err := admin.GenerateCards(ctx, adminID, count, level, days, price)
	if err != nil {
		return err
	}

	for _, card := range cards {
		fmt.Fprintln(out, card.CardCode)
	}
	return nil
}

func main() {

	defaults := &config.Config{}
	defaults.LoadDefaults()

	dsn := flag.String("d", defaults.DatabaseDSN, "database DSN")
	adminID := flag.Int64("a", 0, "admin id recorded in the audit log")
	count := flag.Int("n", 10, "number of cards to generate")
	level := flag.Int("l", 1, "VIP level granted by each card")
	days := flag.Int("t", 30, "entitlement duration in days")
	price := flag.Float64("p", 0, "face price recorded on each card")
	flag.Parse()

	if err := run(context.Background(), os.Stdout, *dsn, *adminID, *count, *level, *days, *price); err != nil {
		log.Fatalf("%v", err)
	}
}
