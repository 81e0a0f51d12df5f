package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dshills/termexplain/internal/cache"
	"github.com/dshills/termexplain/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagCacheJSON  bool
	flagCacheLimit int
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the explanation cache",
}

// withCache loads the config and opens the cache for a cache subcommand.
func withCache(fn func(cmd *cobra.Command, args []string, c *cache.Cache) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		c, err := openCache(cfg)
		if err != nil {
			fail(cmd, ExitRuntimeError, "opening cache: %v", err)
			return nil
		}
		return fn(cmd, args, c)
	}
}

var cacheStatsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"show"},
	Short:   "Show cache statistics",
	Args:    cobra.NoArgs,
	RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
		stats := c.Stats()
		out := cmd.OutOrStdout()
		if flagCacheJSON {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Cache file:\t%s\n", stats.File)
		fmt.Fprintf(tw, "Total entries:\t%d\n", stats.TotalEntries)
		fmt.Fprintf(tw, "Valid entries:\t%d\n", stats.ValidEntries)
		fmt.Fprintf(tw, "Expired entries:\t%d\n", stats.ExpiredEntries)
		fmt.Fprintf(tw, "Size:\t%.2f MB (%d bytes)\n", stats.CacheSizeMB, stats.CacheSizeBytes)
		fmt.Fprintf(tw, "Max age:\t%d days\n", c.MaxAgeDays())
		return tw.Flush()
	}),
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached explanations, newest first",
	Args:  cobra.NoArgs,
	RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
		records := c.Records()
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "Cache is empty.")
			return nil
		}
		if flagCacheLimit > 0 && len(records) > flagCacheLimit {
			records = records[:flagCacheLimit]
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIMESTAMP\tHASH\tSTATUS\tERROR")
		for _, rec := range records {
			status := "valid"
			if c.IsExpired(rec) {
				status = "expired"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Timestamp, shortHash(rec.Hash), status, firstLine(rec.ErrorText, 60))
		}
		return tw.Flush()
	}),
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached explanations",
	Args:  cobra.NoArgs,
	RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
		n := c.Len()
		c.ClearAll()
		fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%d entries removed).\n", n)
		return nil
	}),
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired explanations",
	Args:  cobra.NoArgs,
	RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
		n := c.ClearExpired()
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries.\n", n)
		return nil
	}),
}

var cacheExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export the cache to a file",
	Args:  cobra.ExactArgs(1),
	RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
		if !c.Export(args[0]) {
			fail(cmd, ExitRuntimeError, "exporting cache to %s failed", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", c.Len(), args[0])
		return nil
	}),
}

var cacheImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Merge cache entries from a file",
	Args:  cobra.ExactArgs(1),
	RunE: withCache(func(cmd *cobra.Command, args []string, c *cache.Cache) error {
		n, err := c.Import(args[0])
		if err != nil {
			fail(cmd, ExitRuntimeError, "importing cache: %v", err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %s\n", n, args[0])
		return nil
	}),
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// firstLine returns the first line of s, shortened to limit runes.
func firstLine(s string, limit int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " ..."
	}
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	cacheCmd.AddCommand(cacheImportCmd)
	cacheStatsCmd.Flags().BoolVar(&flagCacheJSON, "json", false, "Print statistics as JSON")
	cacheListCmd.Flags().IntVar(&flagCacheLimit, "limit", 0, "Maximum number of entries to list")
}
