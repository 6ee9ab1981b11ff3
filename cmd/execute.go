package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"

	"textops/config"
	"textops/dispatcher"
	"textops/gitutil"
	"textops/logging"
	"textops/sources"
)

type executionResult struct {
	name      string
	directory string
	written   []string
	err       error
}

var executeNames []string
var executeAll bool
var executeSkipGitignore bool

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute predefined transformation tasks",
	Long: `Reads the configuration file and runs the executions defined in the executions field.
Each execution gathers documents from the sources matching its contexts, applies its
transformations to every document and writes the results to its output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Executions) == 0 {
			return fmt.Errorf("no executions found in %s", configPath)
		}
		if len(cfg.Sources) == 0 {
			return fmt.Errorf("no sources found in %s", configPath)
		}

		selected, err := selectExecutions(cfg)
		if err != nil {
			return err
		}

		d := newDispatcher(cfg)
		clients := newKubeClients()
		results := runExecutions(cmd.Context(), d, cfg.Sources, selected, clients.get, cmd.InOrStdin(), cmd.OutOrStdout())

		var failures []string
		var directories []string
		for _, result := range results {
			if result.err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", result.name, result.err))
				continue
			}
			if len(result.written) > 0 && !slices.Contains(directories, result.directory) {
				directories = append(directories, result.directory)
			}
		}

		// Prompts run after all executions so they never interleave with progress output
		if !executeSkipGitignore {
			for _, dir := range directories {
				if err := gitutil.EnsureGitignored(cmd.Context(), dir, gitutil.SurveyPrompter{}); err != nil {
					return err
				}
			}
		}

		if len(failures) > 0 {
			return fmt.Errorf("execution errors:\n  %s", strings.Join(failures, "\n  "))
		}
		return nil
	},
}

func selectExecutions(c config.Config) ([]config.Execution, error) {
	if executeAll {
		return c.Executions, nil
	}

	names := executeNames
	if len(names) == 0 {
		prompt := &survey.MultiSelect{
			Message: "Select executions to run:",
			Options: c.ExecutionNames(),
		}
		if err := survey.AskOne(prompt, &names); err != nil {
			return nil, fmt.Errorf("execution selection failed: %w", err)
		}
		if len(names) == 0 {
			return nil, errors.New("no executions selected")
		}
	}

	selected := make([]config.Execution, 0, len(names))
	for _, name := range names {
		exec, ok := c.Execution(name)
		if !ok {
			return nil, fmt.Errorf("execution %q not found in %s", name, configPath)
		}
		selected = append(selected, exec)
	}
	return selected, nil
}

type clientFunc func(kubeContext string) (kubernetes.Interface, error)

// stdinOnce reads r at most once, however many executions use a Stdin source.
func stdinOnce(r io.Reader) func() ([]byte, error) {
	return sync.OnceValues(func() ([]byte, error) {
		if r == nil {
			return nil, nil
		}
		return io.ReadAll(r)
	})
}

// runExecutions runs every execution concurrently and returns their results in input order.
// Executions reading a Stdin source all receive the full content of stdin.
func runExecutions(ctx context.Context, d *dispatcher.Dispatcher, configSources []sources.Source, executions []config.Execution, clients clientFunc, stdin io.Reader, out io.Writer) []executionResult {
	readStdin := stdinOnce(stdin)
	// Mutex for synchronized console output
	var outputMu sync.Mutex
	printf := func(format string, args ...any) {
		outputMu.Lock()
		defer outputMu.Unlock()
		fmt.Fprintf(out, format, args...)
	}

	results := make([]executionResult, len(executions))
	var wg sync.WaitGroup
	for i, execution := range executions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			printf("Executing: %s\n", execution.Name)

			written, err := runExecution(ctx, d, execution, configSources, clients, readStdin)
			results[i] = executionResult{
				name:      execution.Name,
				directory: execution.Output.Directory,
				written:   written,
				err:       err,
			}
			if err != nil {
				logging.L().Error("execution failed", "execution", execution.Name, "err", err)
				return
			}
			printf("  [%s] Wrote %d documents to %s\n", execution.Name, len(written), execution.Output.Directory)
		}()
	}
	wg.Wait()
	return results
}

// runExecution transforms every document of the execution. Nothing is written unless
// every document transforms successfully.
func runExecution(ctx context.Context, d *dispatcher.Dispatcher, execution config.Execution, configSources []sources.Source, clients clientFunc, readStdin func() ([]byte, error)) ([]string, error) {
	selected := sources.Filter(configSources, execution.Contexts)
	if len(selected) == 0 {
		return nil, errors.New("no sources match the execution contexts")
	}

	var clientset kubernetes.Interface
	if sources.AnyNeedsKubernetes(selected) {
		if execution.KubeContext == "" {
			return nil, fmt.Errorf("execution %q requires Kubernetes sources but no kube-context is specified", execution.Name)
		}
		var err error
		clientset, err = clients(execution.KubeContext)
		if err != nil {
			return nil, err
		}
	}

	var stdin io.Reader
	if usesStdin(selected) {
		content, err := readStdin()
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		stdin = bytes.NewReader(content)
	}

	docs, err := sources.DefaultFetchers(stdin).Collect(ctx, clientset, selected)
	if err != nil {
		return nil, err
	}

	type output struct {
		path string
		text string
	}
	outputs := make([]output, 0, len(docs))
	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		name, text, err := d.ApplyTransformations(ctx, doc.Name, doc.Text, execution.Transformations)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", doc.Name, err)
		}

		fileName, err := outputFileName(name, execution.Output.Suffix)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", doc.Name, err)
		}
		if other, ok := seen[fileName]; ok {
			return nil, fmt.Errorf("documents %q and %q both write %s", other, doc.Name, fileName)
		}
		seen[fileName] = doc.Name
		outputs = append(outputs, output{path: filepath.Join(execution.Output.Directory, fileName), text: text})
	}

	if err := os.MkdirAll(execution.Output.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	written := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if err := writeOutput(nil, o.path, o.text); err != nil {
			return written, err
		}
		written = append(written, o.path)
	}
	return written, nil
}

// outputFileName rejects names that would escape the output directory.
func outputFileName(name, suffix string) (string, error) {
	fileName := name + suffix
	if fileName == "" || fileName == "." || fileName == ".." || strings.ContainsAny(fileName, `/\`) {
		return "", fmt.Errorf("invalid output file name %q", fileName)
	}
	return fileName, nil
}

func usesStdin(srcs []sources.Source) bool {
	for _, source := range srcs {
		if source.Type == sources.TypeStdin {
			return true
		}
	}
	return false
}

func init() {
	executeCmd.Flags().StringArrayVar(&executeNames, "name", []string{}, "execution name to run (can be repeated)")
	executeCmd.Flags().BoolVar(&executeAll, "all", false, "run all executions")
	executeCmd.Flags().BoolVar(&executeSkipGitignore, "skip-gitignore", false, "do not offer to add output directories to .gitignore")
	rootCmd.AddCommand(executeCmd)
}
