package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
)

// FileFetcher reads a whole file from disk as one document.
type FileFetcher struct{}

func (f *FileFetcher) Fetch(_ context.Context, _ kubernetes.Interface, source Source) ([]Document, error) {
	if source.Path == "" {
		return nil, fmt.Errorf("path is required for File source %q", source.Name)
	}

	content, err := os.ReadFile(source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", source.Path, err)
	}

	name := source.Name
	if name == "" {
		name = filepath.Base(source.Path)
	}
	return []Document{{
		Name:       name,
		Text:       string(content),
		SourceType: TypeFile,
	}}, nil
}
