package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"autoinvoice/internal/config"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Manage the invoice database schema.

Usage: migrate [-dir path] <command>

Commands:
  up             apply all pending migrations
  down           revert all migrations
  version        print the current schema version
  force VERSION  mark the schema version without running migrations
                 (recovers a dirty state after a failed migration)

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	dir := flag.String("dir", "db/migrations", "migrations directory")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := migrate.New("file://"+*dir, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		if err := m.Up(); errors.Is(err, migrate.ErrNoChange) {
			log.Println("schema already up to date")
		} else if err != nil {
			log.Fatalf("migration up failed: %v", err)
		} else {
			log.Println("migrations applied")
		}

	case "down":
		if err := m.Down(); errors.Is(err, migrate.ErrNoChange) {
			log.Println("nothing to revert")
		} else if err != nil {
			log.Fatalf("migration down failed: %v", err)
		} else {
			log.Println("migrations reverted")
		}

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("no migrations applied yet")
			return
		}
		if err != nil {
			log.Fatalf("failed to read version: %v", err)
		}
		log.Printf("schema version %d (dirty: %v)", version, dirty)

	case "force":
		if flag.NArg() < 2 {
			log.Fatal("force requires a version argument")
		}
		v, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			log.Fatalf("invalid version %q: %v", flag.Arg(1), err)
		}
		if err := m.Force(v); err != nil {
			log.Fatalf("forcing version failed: %v", err)
		}
		log.Printf("schema version forced to %d", v)

	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}
}
