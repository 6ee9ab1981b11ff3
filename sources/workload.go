package sources

import (
	"context"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// WorkloadProcessor turns the containers of a pod template into documents:
// one properties document per container holding its resolved environment, and one
// document per file the container mounts from a ConfigMap or Secret volume.
type WorkloadProcessor struct{}

func (p *WorkloadProcessor) ProcessPodSpec(ctx context.Context, clientset kubernetes.Interface, podSpec corev1.PodSpec, source Source, workloadType, namespace string) ([]Document, error) {
	var docs []Document
	for _, container := range podSpec.Containers {
		if len(source.Containers) > 0 && !slices.Contains(source.Containers, container.Name) {
			continue
		}

		env, err := p.resolveEnv(ctx, clientset, namespace, container)
		if err != nil {
			return nil, fmt.Errorf("%s %s/%s container %s: %w", workloadType, namespace, source.Name, container.Name, err)
		}
		if env != "" {
			docs = append(docs, Document{
				Name:       fmt.Sprintf("%s.%s.env", source.Name, container.Name),
				Text:       env,
				SourceType: workloadType,
				Namespace:  namespace,
			})
		}

		for _, mount := range container.VolumeMounts {
			files, err := p.mountedFiles(ctx, clientset, namespace, mount, podSpec.Volumes)
			if err != nil {
				return nil, fmt.Errorf("%s %s/%s container %s: %w", workloadType, namespace, source.Name, container.Name, err)
			}
			for _, f := range files {
				docs = append(docs, Document{
					Name:       fmt.Sprintf("%s.%s.%s", source.Name, container.Name, f.name),
					Text:       f.text,
					SourceType: workloadType,
					Namespace:  namespace,
				})
			}
		}
	}
	return docs, nil
}

// resolveEnv renders the container environment as KEY=value lines. envFrom entries come
// first and env entries override them, as in the kubelet.
func (p *WorkloadProcessor) resolveEnv(ctx context.Context, clientset kubernetes.Interface, namespace string, container corev1.Container) (string, error) {
	var keys []string
	values := make(map[string]string)
	set := func(key, value string) {
		if _, ok := values[key]; !ok {
			keys = append(keys, key)
		}
		values[key] = value
	}

	for _, envFrom := range container.EnvFrom {
		switch {
		case envFrom.ConfigMapRef != nil:
			data, err := configMapData(ctx, clientset, namespace, envFrom.ConfigMapRef.Name)
			if err != nil {
				if isOptional(envFrom.ConfigMapRef.Optional) {
					continue
				}
				return "", err
			}
			for _, key := range slices.Sorted(maps.Keys(data)) {
				set(envFrom.Prefix+key, data[key])
			}
		case envFrom.SecretRef != nil:
			data, err := secretData(ctx, clientset, namespace, envFrom.SecretRef.Name)
			if err != nil {
				if isOptional(envFrom.SecretRef.Optional) {
					continue
				}
				return "", err
			}
			for _, key := range slices.Sorted(maps.Keys(data)) {
				set(envFrom.Prefix+key, data[key])
			}
		}
	}

	for _, envVar := range container.Env {
		value := envVar.Value
		if envVar.ValueFrom != nil {
			resolved, ok, err := p.resolveValueFrom(ctx, clientset, namespace, envVar.ValueFrom)
			if err != nil {
				return "", fmt.Errorf("failed to resolve env var %s: %w", envVar.Name, err)
			}
			if !ok {
				continue
			}
			value = resolved
		}
		set(envVar.Name, value)
	}

	var sb strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&sb, "%s=%s\n", key, values[key])
	}
	return sb.String(), nil
}

// resolveValueFrom reports ok=false for references that need a running pod
// (field and resource references) and for missing optional references.
func (p *WorkloadProcessor) resolveValueFrom(ctx context.Context, clientset kubernetes.Interface, namespace string, valueFrom *corev1.EnvVarSource) (string, bool, error) {
	switch {
	case valueFrom.ConfigMapKeyRef != nil:
		ref := valueFrom.ConfigMapKeyRef
		data, err := configMapData(ctx, clientset, namespace, ref.Name)
		if err != nil {
			if isOptional(ref.Optional) {
				return "", false, nil
			}
			return "", false, err
		}
		value, ok := data[ref.Key]
		if !ok && !isOptional(ref.Optional) {
			return "", false, fmt.Errorf("configmap %s/%s has no key %q", namespace, ref.Name, ref.Key)
		}
		return value, ok, nil
	case valueFrom.SecretKeyRef != nil:
		ref := valueFrom.SecretKeyRef
		data, err := secretData(ctx, clientset, namespace, ref.Name)
		if err != nil {
			if isOptional(ref.Optional) {
				return "", false, nil
			}
			return "", false, err
		}
		value, ok := data[ref.Key]
		if !ok && !isOptional(ref.Optional) {
			return "", false, fmt.Errorf("secret %s/%s has no key %q", namespace, ref.Name, ref.Key)
		}
		return strings.TrimRight(value, "\n\r"), ok, nil
	}
	return "", false, nil
}

type mountedFile struct {
	name string
	text string
}

// mountedFiles lists the files a ConfigMap or Secret volume places under mount.
// Other volume types are ignored.
func (p *WorkloadProcessor) mountedFiles(ctx context.Context, clientset kubernetes.Interface, namespace string, mount corev1.VolumeMount, volumes []corev1.Volume) ([]mountedFile, error) {
	var volume *corev1.Volume
	for i := range volumes {
		if volumes[i].Name == mount.Name {
			volume = &volumes[i]
			break
		}
	}
	if volume == nil {
		return nil, nil
	}

	var (
		data     map[string]string
		items    []corev1.KeyToPath
		optional *bool
		err      error
	)
	switch {
	case volume.ConfigMap != nil:
		optional, items = volume.ConfigMap.Optional, volume.ConfigMap.Items
		data, err = configMapData(ctx, clientset, namespace, volume.ConfigMap.Name)
	case volume.Secret != nil:
		optional, items = volume.Secret.Optional, volume.Secret.Items
		data, err = secretData(ctx, clientset, namespace, volume.Secret.SecretName)
	default:
		return nil, nil
	}
	if err != nil {
		if isOptional(optional) {
			return nil, nil
		}
		return nil, err
	}

	if len(items) == 0 {
		for _, key := range slices.Sorted(maps.Keys(data)) {
			items = append(items, corev1.KeyToPath{Key: key, Path: key})
		}
	}

	var files []mountedFile
	for _, item := range items {
		value, ok := data[item.Key]
		if !ok {
			continue
		}
		// A subPath mount exposes a single file of the volume
		if mount.SubPath != "" && mount.SubPath != item.Path {
			continue
		}
		files = append(files, mountedFile{name: path.Base(item.Path), text: value})
	}
	return files, nil
}

func configMapData(ctx context.Context, clientset kubernetes.Interface, namespace, name string) (map[string]string, error) {
	cm, err := clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get configmap %s/%s: %w", namespace, name, err)
	}
	return cm.Data, nil
}

func secretData(ctx context.Context, clientset kubernetes.Interface, namespace, name string) (map[string]string, error) {
	secret, err := clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s/%s: %w", namespace, name, err)
	}
	data := make(map[string]string, len(secret.Data)+len(secret.StringData))
	for key, value := range secret.Data {
		data[key] = string(value)
	}
	for key, value := range secret.StringData {
		data[key] = value
	}
	return data, nil
}

func isOptional(optional *bool) bool {
	return optional != nil && *optional
}
