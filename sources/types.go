package sources

import (
	"context"
	"slices"

	"k8s.io/client-go/kubernetes"
)

// Source types.
const (
	TypeFile      = "File"
	TypeInline    = "Inline"
	TypeStdin     = "Stdin"
	TypeConfigMap = "ConfigMap"
	TypeSecret    = "Secret"

	TypeDeployment  = "Deployment"
	TypeStatefulSet = "StatefulSet"
	TypeDaemonSet   = "DaemonSet"
)

// Document is one text buffer to transform, with where it came from
type Document struct {
	Name       string
	Text       string
	SourceType string
	Namespace  string
}

// SourceContexts defines context-based filtering for a source
type SourceContexts struct {
	Include []string `koanf:"include"`
	Exclude []string `koanf:"exclude"`
}

// Source represents a source configuration from .textops.yaml
type Source struct {
	Name      string         `koanf:"name"`
	Type      string         `koanf:"type"`
	Path      string         `koanf:"path"`
	Text      string         `koanf:"text"`
	Namespace string         `koanf:"namespace"`
	Key       string         `koanf:"key"`
	Contexts  SourceContexts `koanf:"contexts"`

	// Containers limits workload sources to the named containers.
	Containers []string `koanf:"containers"`
}

// GetNamespace returns the namespace, defaulting to "default"
func (s *Source) GetNamespace() string {
	if s.Namespace == "" {
		return "default"
	}
	return s.Namespace
}

// ShouldInclude returns true if the source should be included for the given contexts
func (s *Source) ShouldInclude(contexts []string) bool {
	// If no contexts provided, include the source
	if len(contexts) == 0 {
		return true
	}

	// If include list is specified, at least one context must be in it
	if len(s.Contexts.Include) > 0 && !slices.ContainsFunc(contexts, func(c string) bool {
		return slices.Contains(s.Contexts.Include, c)
	}) {
		return false
	}

	// If exclude list is specified, none of the contexts can be in it
	return !slices.ContainsFunc(contexts, func(c string) bool {
		return slices.Contains(s.Contexts.Exclude, c)
	})
}

// Fetcher is the interface that all source types must implement. clientset is nil
// unless the source type needs Kubernetes.
type Fetcher interface {
	Fetch(ctx context.Context, clientset kubernetes.Interface, source Source) ([]Document, error)
}

// IsKnownType reports whether t names a source type.
func IsKnownType(t string) bool {
	switch t {
	case TypeFile, TypeInline, TypeStdin, TypeConfigMap, TypeSecret,
		TypeDeployment, TypeStatefulSet, TypeDaemonSet:
		return true
	}
	return false
}

// NeedsKubernetes reports whether sources of type t read from a cluster.
func NeedsKubernetes(t string) bool {
	switch t {
	case TypeConfigMap, TypeSecret, TypeDeployment, TypeStatefulSet, TypeDaemonSet:
		return true
	}
	return false
}
