// Command splitimport imports a Splitwise-style ledger export into the
// splitwiser database.
//
// Usage:
//
//	splitimport import -file export.csv [-group Splitwise] [-currency EUR] [-dry-run]
//	splitimport inspect -group-id <id>
//	splitimport groups
//	splitimport categories
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/splitwiser-import/internal/config"
	"github.com/mmynk/splitwiser-import/internal/middleware"
	"github.com/mmynk/splitwiser-import/internal/storage"
	"github.com/mmynk/splitwiser-import/internal/storage/sqlite"
	"github.com/mmynk/splitwiser-import/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "import":
		err = runImport(cfg, args)
	case "inspect":
		err = runInspect(cfg, args)
	case "groups":
		err = runGroups(cfg, args)
	case "categories":
		err = runCategories(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		slog.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Splitwiser ledger import")
	fmt.Println("\nUsage:")
	fmt.Println("  splitimport <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  import       Import a ledger export CSV as a new group")
	fmt.Println("  inspect      Show the expenses and balances of an imported group")
	fmt.Println("  groups       List imported groups")
	fmt.Println("  categories   List known categories")
	fmt.Println("  help         Show this help message")
	fmt.Println("\nRun 'splitimport <command> -h' for more information on a command.")
}

// openStore opens the SQLite database with call logging.
func openStore(dbPath string) (storage.Store, error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Debug("Storage initialized", "database", dbPath)
	return middleware.LoggingStore(store), nil
}

func dbFlag(fs *flag.FlagSet, cfg *config.Config) *string {
	return fs.String("db", cfg.DBPath, "SQLite database path (env SPLITIMPORT_DB_PATH)")
}
