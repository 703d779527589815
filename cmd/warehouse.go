package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/poverty-mapper/internal/cache"
	"github.com/sells-group/poverty-mapper/internal/db"
	"github.com/sells-group/poverty-mapper/internal/warehouse"
)

var (
	seedCSV        string
	seedHeaderless bool
)

var warehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Manage the development warehouse",
}

var warehouseSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the dataset table in Postgres and load it from a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("seed"); err != nil {
			return err
		}

		path := seedCSV
		hasHeader := !seedHeaderless
		if path == "" {
			path = cfg.Dataset.CachePath()
			hasHeader = cfg.Dataset.HasHeader
		}

		rows, err := cache.NewStore().Read(path, hasHeader)
		if err != nil {
			return err
		}

		pool, err := db.Connect(cmd.Context(), cfg.Warehouse.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := warehouse.Seed(cmd.Context(), pool, cfg.Dataset.Dataset, cfg.Dataset.Table, rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows into %s\n", n, warehouse.TableName(cfg.Dataset, "postgres"))
		return nil
	},
}

func init() {
	warehouseSeedCmd.Flags().StringVar(&seedCSV, "csv", "", "CSV file to load (default: the dataset cache file)")
	warehouseSeedCmd.Flags().BoolVar(&seedHeaderless, "no-header", false, "the CSV file has no header row")
	warehouseCmd.AddCommand(warehouseSeedCmd)
	rootCmd.AddCommand(warehouseCmd)
}
