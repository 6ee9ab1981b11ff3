package sources

import (
	"context"
	"fmt"
	"io"

	"k8s.io/client-go/kubernetes"
)

// Fetchers maps a source type to the fetcher that reads it.
type Fetchers map[string]Fetcher

// DefaultFetchers returns a fetcher for every source type. stdin backs Stdin sources.
func DefaultFetchers(stdin io.Reader) Fetchers {
	return Fetchers{
		TypeFile:      &FileFetcher{},
		TypeInline:    &InlineFetcher{},
		TypeStdin:     &StdinFetcher{Reader: stdin},
		TypeConfigMap: &ConfigMapFetcher{},
		TypeSecret:    &SecretFetcher{},

		TypeDeployment:  &DeploymentFetcher{},
		TypeStatefulSet: &StatefulSetFetcher{},
		TypeDaemonSet:   &DaemonSetFetcher{},
	}
}

// Filter returns the sources selected by contexts, in order.
func Filter(all []Source, contexts []string) []Source {
	var selected []Source
	for _, source := range all {
		if source.ShouldInclude(contexts) {
			selected = append(selected, source)
		}
	}
	return selected
}

// AnyNeedsKubernetes reports whether one of srcs reads from a cluster.
func AnyNeedsKubernetes(srcs []Source) bool {
	for _, source := range srcs {
		if NeedsKubernetes(source.Type) {
			return true
		}
	}
	return false
}

// Collect fetches the documents of every source in order.
func (f Fetchers) Collect(ctx context.Context, clientset kubernetes.Interface, srcs []Source) ([]Document, error) {
	var docs []Document
	for _, source := range srcs {
		if source.Type == "" {
			return nil, fmt.Errorf("type is required for source %q", source.Name)
		}

		fetcher, ok := f[source.Type]
		if !ok {
			return nil, fmt.Errorf("unknown source type %q for %s", source.Type, source.Name)
		}

		fetched, err := fetcher.Fetch(ctx, clientset, source)
		if err != nil {
			return nil, err
		}
		docs = append(docs, fetched...)
	}
	return docs, nil
}
