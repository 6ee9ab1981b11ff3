package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"textops/dispatcher"
	"textops/transformations"
)

var (
	applyFile    string
	applyText    string
	applyOutput  string
	applyInPlace bool
	applyThen    []string
)

var applyCmd = &cobra.Command{
	Use:   "apply [ID]",
	Short: "Apply a transformation to a document",
	Long: `Applies the transformation ID to the document read from --file, --text or stdin and
writes the result to --output, back to the file with --in-place, or to stdout.
Further transformations given with --then run on the result, in order; if any of them
fails nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if applyInPlace && applyFile == "" {
			return errors.New("--in-place requires --file")
		}
		if applyInPlace && applyOutput != "" {
			return errors.New("--in-place and --output are mutually exclusive")
		}
		if applyFile != "" && cmd.Flags().Changed("text") {
			return errors.New("--file and --text are mutually exclusive")
		}

		var id string
		if len(args) == 1 {
			id = args[0]
		} else {
			selected, err := selectTransformation()
			if err != nil {
				return err
			}
			id = selected
		}

		input, err := readInput(cmd)
		if err != nil {
			return err
		}

		d := newDispatcher(cfg)
		out, err := applyChain(cmd.Context(), d, append([]string{id}, applyThen...), input)
		if err != nil {
			return err
		}

		target := applyOutput
		if applyInPlace {
			target = applyFile
		}
		return writeOutput(cmd.OutOrStdout(), target, out)
	},
}

func applyChain(ctx context.Context, d *dispatcher.Dispatcher, ids []string, input string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(ids) == 1 {
		return d.Apply(ctx, ids[0], input)
	}
	return d.ApplyChain(ctx, ids, input)
}

func selectTransformation() (string, error) {
	entries := transformations.Entries()
	prompt := promptui.Select{
		Label: "Select transformation",
		Items: entries,
		Size:  10,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ .ID | cyan }} ({{ .Description }})",
			Inactive: "  {{ .ID }}",
			Selected: "{{ .ID }}",
		},
		Searcher: func(input string, index int) bool {
			return strings.Contains(entries[index].ID, strings.ToLower(strings.TrimSpace(input)))
		},
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("transformation selection failed: %w", err)
	}
	return entries[i].ID, nil
}

func readInput(cmd *cobra.Command) (string, error) {
	switch {
	case applyFile != "":
		content, err := os.ReadFile(applyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", applyFile, err)
		}
		return string(content), nil
	case cmd.Flags().Changed("text"):
		return applyText, nil
	default:
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	}
}

// writeOutput writes text to path, or to w when path is empty. Files are replaced
// through a temporary file in the same directory so a failed write never truncates them.
func writeOutput(w io.Writer, path, text string) error {
	if path == "" {
		_, err := io.WriteString(w, text)
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "file to read the document from (stdin if neither --file nor --text is given)")
	applyCmd.Flags().StringVar(&applyText, "text", "", "document text")
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "file to write the result to (stdout if not given)")
	applyCmd.Flags().BoolVar(&applyInPlace, "in-place", false, "replace --file with the result")
	applyCmd.Flags().StringArrayVar(&applyThen, "then", []string{}, "transformation to apply to the result (can be repeated)")
	rootCmd.AddCommand(applyCmd)
}
