package sources

import (
	"context"
	"fmt"
	"maps"
	"slices"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// ConfigMapFetcher yields one document per data key, or only Key when set.
type ConfigMapFetcher struct{}

func (f *ConfigMapFetcher) Fetch(ctx context.Context, clientset kubernetes.Interface, source Source) ([]Document, error) {
	if clientset == nil {
		return nil, fmt.Errorf("configmap source %q needs a kubernetes client", source.Name)
	}
	namespace := source.GetNamespace()
	cm, err := clientset.CoreV1().ConfigMaps(namespace).Get(ctx, source.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get configmap %s/%s: %w", namespace, source.Name, err)
	}

	data := cm.Data
	if source.Key != "" {
		value, ok := cm.Data[source.Key]
		if !ok {
			return nil, fmt.Errorf("configmap %s/%s has no key %q", namespace, source.Name, source.Key)
		}
		data = map[string]string{source.Key: value}
	}

	var docs []Document
	for _, key := range slices.Sorted(maps.Keys(data)) {
		docs = append(docs, Document{
			Name:       key,
			Text:       data[key],
			SourceType: TypeConfigMap,
			Namespace:  namespace,
		})
	}
	return docs, nil
}
