package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alevsk/podsec-advisor/internal/formatter"
	"github.com/alevsk/podsec-advisor/internal/ingestor"
)

var (
	analyzeK8sVersion  string
	analyzePolicyLevel string
	analyzeOutput      string
	analyzeUseLLM      bool
	analyzeVerbose     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [source]",
	Short: "Analyze a Pod manifest for security misconfigurations",
	Long: `Analyze a Pod manifest from a local YAML file, a remote URL or stdin.

Examples:
  # Analyze a local manifest
  podsec-advisor analyze pod.yaml

  # Analyze a remote manifest for a specific version
  podsec-advisor analyze https://example.com/pod.yaml --k8s-version 1.24

  # Analyze from stdin against the Restricted profile
  kubectl get pod web -o yaml | podsec-advisor analyze - --policy-level restricted`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetLevel, err := parsePolicyLevel(analyzePolicyLevel)
		if err != nil {
			return err
		}
		outputType, err := formatter.ParseType(analyzeOutput)
		if err != nil {
			return err
		}

		yamlText, _, err := ingestor.ReadManifest(cmd.Context(), args[0], &ingestor.Options{})
		if err != nil {
			return fmt.Errorf("failed to read manifest: %w", err)
		}

		system, _, _, cleanup := buildSystem(cmd.Context(), cfg)
		defer cleanup()

		resp := system.AnalyzePod(cmd.Context(), yamlText, analyzeK8sVersion, targetLevel, analyzeUseLLM)

		f, err := formatter.New(outputType, &formatter.Options{Verbose: analyzeVerbose})
		if err != nil {
			return err
		}
		out, err := f.Format(resp)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	flags := analyzeCmd.Flags()
	flags.StringVar(&analyzeK8sVersion, "k8s-version", "1.29", "target Kubernetes version")
	flags.StringVar(&analyzePolicyLevel, "policy-level", "baseline", "target policy level (baseline, restricted, privileged)")
	flags.StringVarP(&analyzeOutput, "output", "o", "table", "output format (table, json, yaml, markdown)")
	flags.BoolVar(&analyzeUseLLM, "use-llm", false, "generate an LLM narrative and fixed manifest (requires an OpenAI API key)")
	flags.BoolVarP(&analyzeVerbose, "verbose", "v", false, "include retrieved references in the output")
}
