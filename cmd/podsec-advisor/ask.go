package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askK8sVersion  string
	askPolicyLevel string
	askUseLLM      bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a Kubernetes Pod security question",
	Long: `Ask a free-form Pod security question answered from the ingested
documentation.

Examples:
  podsec-advisor ask "how do I drop all capabilities"
  podsec-advisor ask "what does runAsNonRoot do" --k8s-version 1.24 --use-llm`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := parsePolicyLevel(askPolicyLevel)
		if err != nil {
			return err
		}
		if askPolicyLevel == "" {
			level = ""
		}

		system, _, _, cleanup := buildSystem(cmd.Context(), cfg)
		defer cleanup()

		resp := system.AnswerQuestion(cmd.Context(), strings.Join(args, " "), askK8sVersion, level, askUseLLM)

		if resp.Narrative != "" {
			fmt.Println(resp.Narrative)
		} else {
			fmt.Println(resp.Answer)
		}
		if resp.NarrativeError != "" {
			fmt.Printf("\nNote: %s\n", resp.NarrativeError)
		}
		return nil
	},
}

func init() {
	flags := askCmd.Flags()
	flags.StringVar(&askK8sVersion, "k8s-version", "", "scope the answer to a Kubernetes version")
	flags.StringVar(&askPolicyLevel, "policy-level", "", "filter guidance by policy level (baseline, restricted, privileged)")
	flags.BoolVar(&askUseLLM, "use-llm", false, "generate an LLM answer (requires an OpenAI API key)")
}
