package commands

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/am"
	"github.com/promptlab/promptlab/errors"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the PromptLab database",
	Long: `db — Manage PromptLab database operations

Examples:
  promptlab db stats              # Show prompt library statistics
  promptlab db migrate            # Apply pending schema migrations`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show prompt library statistics",
	Long:  "Display prompt counts, models in use, and database file information",
	RunE:  runDbStats,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

var dbPathFlag string

func init() {
	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.PersistentFlags().StringVar(&dbPathFlag, "db-path", "", "Database file path (defaults to configured path)")
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	dbPath := dbPathFlag
	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}

	database, err := openDatabase(dbPath)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	var totalPrompts, uniqueModels int
	err = database.QueryRow(`
		SELECT
			COUNT(*) as total_prompts,
			COUNT(DISTINCT model) as unique_models
		FROM prompts
	`).Scan(&totalPrompts, &uniqueModels)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "failed to query library stats")
	}

	var lastUpdated sql.NullString
	err = database.QueryRow(`SELECT MAX(updated_at) FROM prompts`).Scan(&lastUpdated)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "failed to query last update time")
	}

	fmt.Printf("Database Statistics\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path: %s\n", dbPath)
	if info, statErr := os.Stat(dbPath); statErr == nil {
		fmt.Printf("File Size:     %.1f KB\n", float64(info.Size())/1024)
	}
	fmt.Printf("Total Prompts: %d\n", totalPrompts)
	fmt.Printf("Unique Models: %d\n", uniqueModels)
	if lastUpdated.Valid {
		fmt.Printf("Last Updated:  %s\n", lastUpdated.String)
	}

	// Per-model breakdown
	rows, err := database.Query(`
		SELECT model, COUNT(*) as count
		FROM prompts
		GROUP BY model
		ORDER BY count DESC, model ASC
	`)
	if err != nil {
		return errors.Wrap(err, "failed to query model breakdown")
	}
	defer rows.Close()

	var printedHeader bool
	for rows.Next() {
		var model sql.NullString
		var count int
		if err := rows.Scan(&model, &count); err != nil {
			return errors.Wrap(err, "failed to scan model row")
		}
		if !printedHeader {
			fmt.Printf("\nPrompts by Model:\n")
			printedHeader = true
		}
		name := model.String
		if !model.Valid || name == "" {
			name = "(default)"
		}
		fmt.Printf("  %-24s %d\n", name, count)
	}

	return rows.Err()
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	dbPath := dbPathFlag
	if dbPath == "" {
		var err error
		dbPath, err = resolveDatabasePath()
		if err != nil {
			return err
		}
	}

	// OpenWithMigrations applies any pending migrations on open
	database, err := openDatabase(dbPath)
	if err != nil {
		return errors.Wrap(err, "migration failed")
	}
	defer database.Close()

	fmt.Printf("Database at %s is up to date\n", dbPath)
	return nil
}
