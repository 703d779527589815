package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/poverty-mapper/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local dataset cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cache file, its size and row count",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := cache.NewStore().Stat(cfg.Dataset.CachePath(), cfg.Dataset.HasHeader)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cache file so the next load refetches from the warehouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Dataset.CachePath()
		if err := cache.NewStore().Remove(path); err != nil {
			return err
		}
		zap.L().Info("cache cleared", zap.String("path", path))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
