package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alevsk/podsec-advisor/internal/api"
	"github.com/alevsk/podsec-advisor/internal/checklist"
)

var (
	// Server flags
	serverHost    string
	serverPort    int
	serverTimeout string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Pod Security Advisor API server",
	PreRun: func(cmd *cobra.Command, args []string) {
		// Override config values with flags if provided
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}
		if cmd.Flags().Changed("timeout") {
			if duration, err := time.ParseDuration(serverTimeout); err == nil {
				cfg.Server.Timeout = duration
			}
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		system, store, registry, cleanup := buildSystem(cmd.Context(), cfg)
		defer cleanup()

		classifier := checklist.NewClassifier(classifierLLM())
		server := api.NewServer(system, store, registry, classifier, cfg.Server.Timeout)

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		return server.Start(addr)
	},
}

// classifierLLM adapts the configured LLM for checklist classification
func classifierLLM() checklist.Generator {
	llm := buildLLM(cfg)
	if llm == nil {
		return nil
	}
	return llm
}

func init() {
	serveCmd.Flags().StringVarP(&serverHost, "host", "H", "", "Server host (default: 0.0.0.0)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default: 8080)")
	serveCmd.Flags().StringVarP(&serverTimeout, "timeout", "t", "", "Server timeout (e.g., 30s, 1m)")
}
