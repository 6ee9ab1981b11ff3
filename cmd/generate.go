package cmd

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"

	"textops/sources"
)

var generateKubeContext string
var generateOutput string
var generateContexts []string
var generateTransforms []string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Combine transformed source documents into one file",
	Long: `Reads the configuration file, selects contexts and a kubectl context if needed, applies
the --transform chain to every document of the matching sources and writes them to a
single file, each preceded by a comment naming its source.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Sources) == 0 {
			return fmt.Errorf("no sources found in %s", configPath)
		}

		// Select contexts for filtering sources
		selectedContexts := generateContexts
		if len(selectedContexts) == 0 && len(cfg.Contexts) > 0 {
			prompt := &survey.MultiSelect{
				Message: "Select contexts (press Enter for none, Space to select):",
				Options: cfg.Contexts,
			}
			if err := survey.AskOne(prompt, &selectedContexts); err != nil {
				return fmt.Errorf("context selection failed: %w", err)
			}
		}

		filtered := sources.Filter(cfg.Sources, selectedContexts)
		if len(filtered) == 0 {
			return fmt.Errorf("no sources match the selected contexts")
		}

		var clientset kubernetes.Interface
		if sources.AnyNeedsKubernetes(filtered) {
			clients := newKubeClients()
			selectedKubeContext := generateKubeContext
			if selectedKubeContext == "" {
				contextNames, err := clients.contextNames()
				if err != nil {
					return err
				}
				prompt := promptui.Select{
					Label: "Select kubectl context",
					Items: contextNames,
				}
				if _, selectedKubeContext, err = prompt.Run(); err != nil {
					return fmt.Errorf("kubectl context selection failed: %w", err)
				}
			}
			var err error
			if clientset, err = clients.get(selectedKubeContext); err != nil {
				return err
			}
		}

		docs, err := sources.DefaultFetchers(cmd.InOrStdin()).Collect(cmd.Context(), clientset, filtered)
		if err != nil {
			return err
		}

		d := newDispatcher(cfg)
		var sb strings.Builder
		for i, doc := range docs {
			text := doc.Text
			if len(generateTransforms) > 0 {
				if text, err = applyChain(cmd.Context(), d, generateTransforms, doc.Text); err != nil {
					return fmt.Errorf("document %q: %w", doc.Name, err)
				}
			}
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "# %s\n", documentLabel(doc))
			sb.WriteString(text)
			if text != "" && !strings.HasSuffix(text, "\n") {
				sb.WriteString("\n")
			}
		}

		if err := writeOutput(cmd.OutOrStdout(), generateOutput, sb.String()); err != nil {
			return err
		}
		if generateOutput != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d documents to %s\n", len(docs), generateOutput)
		}
		return nil
	},
}

func documentLabel(doc sources.Document) string {
	if doc.Namespace != "" {
		return fmt.Sprintf("%s %s/%s", doc.SourceType, doc.Namespace, doc.Name)
	}
	return fmt.Sprintf("%s %s", doc.SourceType, doc.Name)
}

func init() {
	generateCmd.Flags().StringVar(&generateKubeContext, "kube-context", "", "kubectl context to use (prompts if needed and not provided)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "generated/documents.txt", "output file path (empty for stdout)")
	generateCmd.Flags().StringArrayVarP(&generateContexts, "context", "c", []string{}, "context for filtering sources (can be repeated, prompts if not provided and contexts are defined)")
	generateCmd.Flags().StringArrayVarP(&generateTransforms, "transform", "t", []string{}, "transformation to apply to every document (can be repeated)")
	rootCmd.AddCommand(generateCmd)
}
