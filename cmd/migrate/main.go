package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"gomarkov/adapters/excel"
	"gomarkov/adapters/postgres"
	"gomarkov/internal/migration"
	"gomarkov/internal/testkit"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const usage = `Usage: migrate <database_url> <table> <portfolio> [source...]

Creates the migrations table if needed and loads each source into it.
A source is an .xlsx/.csv file of migrations, or "synthetic[:obligors]"
to simulate the sample portfolio with dated obligor histories.`

func main() {
	if len(os.Args) < 4 {
		log.Fatal(usage)
	}

	databaseURL := os.Args[1]
	table := os.Args[2]
	portfolio := os.Args[3]
	sources := os.Args[4:]

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner(table)
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Schema bootstrap failed: %v", err)
	}
	log.Printf("Table %s ready (schema %s)", table, runner.Version())

	importer, err := postgres.NewMigrationImporter(db, table)
	if err != nil {
		log.Fatalf("Failed to create importer: %v", err)
	}

	imported, skipped := 0, 0
	for _, source := range sources {
		records, err := loadSource(ctx, portfolio, source)
		if err != nil {
			log.Printf("Skipping %s: %v", source, err)
			skipped++
			continue
		}
		n, err := importer.Import(ctx, records)
		if err != nil {
			log.Printf("Failed to import %s: %v", source, err)
			skipped++
			continue
		}
		log.Printf("Imported %d migrations from %s into portfolio %s", n, source, portfolio)
		imported += n
	}

	log.Printf("Done: %d migrations imported, %d sources skipped", imported, skipped)
	if skipped > 0 {
		os.Exit(1)
	}
}

func loadSource(ctx context.Context, portfolio, source string) ([]postgres.MigrationRecord, error) {
	if obligors, ok := syntheticObligors(source); ok {
		config := testkit.DefaultMigrationConfig()
		config.Obligors = obligors
		gen, err := testkit.NewMigrationGenerator(config)
		if err != nil {
			return nil, err
		}
		migrations := gen.Generate()
		records := make([]postgres.MigrationRecord, len(migrations))
		for i, m := range migrations {
			records[i] = postgres.MigrationRecord{
				Portfolio:  portfolio,
				ObligorID:  m.ObligorID,
				From:       m.Origin,
				To:         m.Destination,
				ObservedAt: m.ObservedAt,
			}
		}
		return records, nil
	}

	obs, err := excel.NewDataReader(source).LoadObservations(ctx)
	if err != nil {
		return nil, err
	}
	return postgres.RecordsFromObservations(portfolio, obs, time.Now().UTC()), nil
}

// syntheticObligors parses "synthetic" or "synthetic:N".
func syntheticObligors(source string) (int, bool) {
	const prefix = "synthetic"
	if source == prefix {
		return testkit.DefaultMigrationConfig().Obligors, true
	}
	if len(source) > len(prefix)+1 && source[:len(prefix)+1] == prefix+":" {
		n, err := strconv.Atoi(source[len(prefix)+1:])
		if err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}
