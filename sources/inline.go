package sources

import (
	"context"
	"fmt"
	"io"

	"k8s.io/client-go/kubernetes"
)

// InlineFetcher turns the text written in the configuration into a document.
type InlineFetcher struct{}

func (f *InlineFetcher) Fetch(_ context.Context, _ kubernetes.Interface, source Source) ([]Document, error) {
	if source.Name == "" {
		return nil, fmt.Errorf("name is required for Inline source")
	}
	return []Document{{
		Name:       source.Name,
		Text:       source.Text,
		SourceType: TypeInline,
	}}, nil
}

// StdinFetcher reads all of its reader as one document named after the source.
type StdinFetcher struct {
	Reader io.Reader
}

func (f *StdinFetcher) Fetch(_ context.Context, _ kubernetes.Interface, source Source) ([]Document, error) {
	if f.Reader == nil {
		return nil, fmt.Errorf("stdin source %q has no input", source.Name)
	}
	content, err := io.ReadAll(f.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	name := source.Name
	if name == "" {
		name = "stdin"
	}
	return []Document{{
		Name:       name,
		Text:       string(content),
		SourceType: TypeStdin,
	}}, nil
}
