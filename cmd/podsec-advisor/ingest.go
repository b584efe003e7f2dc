package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alevsk/podsec-advisor/internal/catalog"
	"github.com/alevsk/podsec-advisor/internal/crawler"
	"github.com/alevsk/podsec-advisor/internal/logger"
	"github.com/alevsk/podsec-advisor/internal/version"
)

var (
	ingestVersions   []string
	ingestMaxPages   int
	ingestReset      bool
	ingestCommonOnly bool
	ingestDocsOnly   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the retrieval knowledge base",
	Long: `Ingest security knowledge into the retrieval store: the built-in field
catalog into the common and per-version collections, and crawled Kubernetes
documentation into the docs collection.

Examples:
  # Full build for every supported version
  podsec-advisor ingest

  # Rebuild two versions from scratch without crawling
  podsec-advisor ingest --reset --versions 1.24,1.29 --common-only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestCommonOnly && ingestDocsOnly {
			return fmt.Errorf("--common-only and --docs-only are mutually exclusive")
		}

		ctx := cmd.Context()
		registry := version.NewRegistry()
		cat := catalog.New()

		versions := ingestVersions
		if len(versions) == 0 {
			versions = registry.Supported()
		}
		for _, v := range versions {
			if !registry.IsSupported(v) {
				return fmt.Errorf("unsupported kubernetes version: %s (supported: %v)", v, registry.Supported())
			}
		}

		store, cleanup := buildStore(ctx, cfg, registry, cat)
		defer cleanup()

		if ingestReset {
			if err := store.Reset(ctx); err != nil {
				return fmt.Errorf("failed to reset store: %w", err)
			}
		}

		if !ingestDocsOnly {
			if err := store.InitializeCommon(ctx); err != nil {
				return fmt.Errorf("failed to build common collection: %w", err)
			}
			for _, v := range versions {
				if err := store.InitializeVersion(ctx, v); err != nil {
					return fmt.Errorf("failed to build collection for %s: %w", v, err)
				}
			}
		}

		if !ingestCommonOnly {
			c := crawler.New(cfg, registry)
			maxPages := ingestMaxPages
			if maxPages == 0 {
				maxPages = cfg.Crawler.MaxPages
			}

			for v, pages := range c.CrawlVersions(ctx, versions, maxPages) {
				if err := store.AddDocPages(ctx, pages); err != nil {
					logger.Error().Err(err).Str("version", v).Msg("failed to store documentation pages")
				}
			}
			stats := c.Statistics()
			fmt.Printf("Crawled %d pages (%d failed, %d skipped)\n",
				stats.PagesCrawled, stats.PagesFailed, stats.PagesSkipped)
		}

		stats, err := store.Statistics(ctx)
		if err != nil {
			return fmt.Errorf("failed to read store statistics: %w", err)
		}
		fmt.Printf("Knowledge base ready: %d chunks in %d collections\n",
			stats.TotalChunks, len(stats.Collections))
		for name, count := range stats.Collections {
			fmt.Printf("  %s: %d\n", name, count)
		}
		return nil
	},
}

func init() {
	flags := ingestCmd.Flags()
	flags.StringSliceVar(&ingestVersions, "versions", nil, "Kubernetes versions to ingest (default: all supported)")
	flags.IntVar(&ingestMaxPages, "max-pages", 0, "maximum documentation pages per version (default: crawler.max_pages)")
	flags.BoolVar(&ingestReset, "reset", false, "delete all collections before ingesting")
	flags.BoolVar(&ingestCommonOnly, "common-only", false, "only build catalog collections, skip the docs crawl")
	flags.BoolVar(&ingestDocsOnly, "docs-only", false, "only crawl documentation, skip catalog collections")
}
