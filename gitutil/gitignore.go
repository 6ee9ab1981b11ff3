package gitutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// Prompter asks the user to pick one of options.
type Prompter interface {
	Select(message string, options []string) (string, error)
}

// SurveyPrompter prompts on the terminal.
type SurveyPrompter struct{}

func (SurveyPrompter) Select(message string, options []string) (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// IsIgnored checks if a path is covered by .gitignore
func IsIgnored(ctx context.Context, path string) bool {
	return exec.CommandContext(ctx, "git", "check-ignore", "-q", path).Run() == nil
}

// IsGitRepo checks if the current directory is inside a git repository
func IsGitRepo(ctx context.Context) bool {
	return exec.CommandContext(ctx, "git", "rev-parse", "--git-dir").Run() == nil
}

// EnsureGitignored checks if path is gitignored, and if not, asks whether to add it
// (or its directory) to the .gitignore at the repository root.
func EnsureGitignored(ctx context.Context, path string, prompter Prompter) error {
	// Skip if not in a git repo
	if !IsGitRepo(ctx) {
		return nil
	}

	// Skip if already ignored
	if IsIgnored(ctx, path) {
		return nil
	}

	entries := candidateEntries(path)
	options := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		options = append(options, e.option)
	}
	options = append(options, "Skip")

	choice, err := prompter.Select(fmt.Sprintf("%q is not in .gitignore. Add to .gitignore?", path), options)
	if err != nil {
		return fmt.Errorf("gitignore prompt failed: %w", err)
	}

	var entryToAdd string
	for _, e := range entries {
		if e.option == choice {
			entryToAdd = e.entry
		}
	}
	if entryToAdd == "" {
		// User chose to skip
		return nil
	}

	gitRoot, err := getGitRoot(ctx)
	if err != nil {
		return fmt.Errorf("failed to find git root: %w", err)
	}
	if err := AppendEntry(filepath.Join(gitRoot, ".gitignore"), entryToAdd); err != nil {
		return err
	}

	fmt.Printf("Added %q to .gitignore\n", entryToAdd)
	return nil
}

type candidate struct {
	option string
	entry  string
}

// candidateEntries offers the path itself and, for files, the directory holding it.
func candidateEntries(path string) []candidate {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		dir := strings.TrimSuffix(filepath.ToSlash(path), "/") + "/"
		return []candidate{{fmt.Sprintf("Add directory (%s)", dir), dir}}
	}
	dir := filepath.ToSlash(filepath.Dir(path)) + "/"
	file := filepath.ToSlash(path)
	return []candidate{
		{fmt.Sprintf("Add file (%s)", file), file},
		{fmt.Sprintf("Add directory (%s)", dir), dir},
	}
}

// AppendEntry adds entry on its own line to the gitignore file at gitignorePath.
func AppendEntry(gitignorePath, entry string) error {
	content, err := os.ReadFile(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .gitignore: %w", err)
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open .gitignore: %w", err)
	}
	defer f.Close()

	// Make sure we start on a new line
	prefix := ""
	if len(content) > 0 && content[len(content)-1] != '\n' {
		prefix = "\n"
	}
	if _, err := f.WriteString(prefix + entry + "\n"); err != nil {
		return fmt.Errorf("failed to write to .gitignore: %w", err)
	}
	return nil
}

func getGitRoot(ctx context.Context) (string, error) {
	output, err := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(output), "\r\n"), nil
}
