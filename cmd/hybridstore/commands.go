package hybridstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/go-hybridstore/pkg/config"
	"github.com/soundprediction/go-hybridstore/pkg/store"
	"github.com/soundprediction/go-hybridstore/pkg/types"
)

var (
	searchCollection  string
	searchLimit       int
	searchWithVectors bool

	pruneYes bool

	initConfigPath string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a similarity search against a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openClient()
		if err != nil {
			return err
		}
		defer client.Close()

		results, err := client.Search(context.Background(), searchCollection, store.SearchOptions{
			QueryText:  args[0],
			Limit:      searchLimit,
			WithVector: searchWithVectors,
		})
		if err != nil {
			return err
		}

		return printJSON(cmd, results)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print collection and graph statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openClient()
		if err != nil {
			return err
		}
		defer client.Close()
		ctx := context.Background()

		rows, err := client.Query(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name NOT LIKE 'graph_%' AND name NOT LIKE 'telemetry_%'")
		if err != nil {
			return err
		}
		collections := make([]string, 0, len(rows))
		for _, row := range rows {
			if name, ok := types.AsString(row["name"]); ok {
				collections = append(collections, name)
			}
		}

		metrics, err := client.GetGraphMetrics(ctx)
		if err != nil {
			return err
		}

		return printJSON(cmd, map[string]any{
			"collections": collections,
			"graph":       metrics,
		})
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop every collection and all graph data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !pruneYes {
			return fmt.Errorf("prune removes all data; re-run with --yes to confirm")
		}

		client, err := openClient()
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.Prune(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "store pruned")
		return nil
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a starter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := initConfigPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".hybridstore.yaml")
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return fmt.Errorf("config path must end in .yaml or .yml: %s", path)
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
		return nil
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "c", "", "collection to search (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", store.DefaultSearchLimit, "maximum results")
	searchCmd.Flags().BoolVar(&searchWithVectors, "with-vectors", false, "include stored vectors in output")
	searchCmd.MarkFlagRequired("collection")

	pruneCmd.Flags().BoolVar(&pruneYes, "yes", false, "confirm destructive prune")

	initConfigCmd.Flags().StringVar(&initConfigPath, "path", "", "where to write the config file (default $HOME/.hybridstore.yaml)")

	rootCmd.AddCommand(searchCmd, statsCmd, pruneCmd, initConfigCmd)
}
