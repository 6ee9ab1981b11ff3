package cmd

import (
	"fmt"
	"slices"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// kubeClients caches one clientset per kube context for the lifetime of a command.
type kubeClients struct {
	loadingRules *clientcmd.ClientConfigLoadingRules
	mu           sync.Mutex
	clients      map[string]kubernetes.Interface
}

func newKubeClients() *kubeClients {
	// Default loading rules respect the KUBECONFIG env var
	return &kubeClients{
		loadingRules: clientcmd.NewDefaultClientConfigLoadingRules(),
		clients:      make(map[string]kubernetes.Interface),
	}
}

func (k *kubeClients) get(kubeContext string) (kubernetes.Interface, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if clientset, ok := k.clients[kubeContext]; ok {
		return clientset, nil
	}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		k.loadingRules,
		&clientcmd.ConfigOverrides{CurrentContext: kubeContext},
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	k.clients[kubeContext] = clientset
	return clientset, nil
}

// contextNames lists the contexts of the merged kubeconfig, sorted.
func (k *kubeClients) contextNames() ([]string, error) {
	kubeConfig, err := k.loadingRules.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	var names []string
	for name := range kubeConfig.Contexts {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no kubectl contexts found in kubeconfig")
	}
	slices.Sort(names)
	return names, nil
}
