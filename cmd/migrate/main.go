// Package main applies the event journal schema migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/viper"

	"github.com/cory-johannsen/survivor/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	source := flag.String("source", "file://migrations", "migration source URL")
	direction := flag.String("direction", "up", "migration direction: up, down or version")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile(*configPath)
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("reading config: %v", err)
	}
	sub := v.Sub("database")
	if sub == nil {
		log.Fatalf("config %s has no database section", *configPath)
	}

	var dbCfg config.DatabaseConfig
	if err := sub.Unmarshal(&dbCfg); err != nil {
		log.Fatalf("parsing database config: %v", err)
	}
	if pw := os.Getenv("SURVIVOR_DATABASE_PASSWORD"); pw != "" {
		dbCfg.Password = pw
	}

	m, err := migrate.New(*source, dbCfg.DSN())
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	case "version":
	default:
		log.Fatalf("invalid direction %q: must be 'up', 'down' or 'version'", *direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Fatalf("reading schema version: %v", verr)
	}
	elapsed := time.Since(start)

	switch {
	case *direction == "version":
		fmt.Fprintf(os.Stdout, "event journal schema version=%d dirty=%v [%s]\n", version, dirty, elapsed)
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v) [%s]\n", version, dirty, elapsed)
	default:
		fmt.Fprintf(os.Stdout, "migrated %s to version=%d dirty=%v [%s]\n", *direction, version, dirty, elapsed)
	}
}
