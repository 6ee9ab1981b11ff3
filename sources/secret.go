package sources

import (
	"context"
	"fmt"
	"maps"
	"slices"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// SecretFetcher yields one document per data key, or only Key when set.
type SecretFetcher struct{}

func (f *SecretFetcher) Fetch(ctx context.Context, clientset kubernetes.Interface, source Source) ([]Document, error) {
	if clientset == nil {
		return nil, fmt.Errorf("secret source %q needs a kubernetes client", source.Name)
	}
	namespace := source.GetNamespace()
	secret, err := clientset.CoreV1().Secrets(namespace).Get(ctx, source.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s/%s: %w", namespace, source.Name, err)
	}

	data := secret.Data
	if source.Key != "" {
		value, ok := secret.Data[source.Key]
		if !ok {
			return nil, fmt.Errorf("secret %s/%s has no key %q", namespace, source.Name, source.Key)
		}
		data = map[string][]byte{source.Key: value}
	}

	var docs []Document
	for _, key := range slices.Sorted(maps.Keys(data)) {
		docs = append(docs, Document{
			Name:       key,
			Text:       string(data[key]),
			SourceType: TypeSecret,
			Namespace:  namespace,
		})
	}
	return docs, nil
}
