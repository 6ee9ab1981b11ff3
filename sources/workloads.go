package sources

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

type DeploymentFetcher struct {
	processor WorkloadProcessor
}

func (f *DeploymentFetcher) Fetch(ctx context.Context, clientset kubernetes.Interface, source Source) ([]Document, error) {
	return fetchWorkload(ctx, clientset, source, TypeDeployment, func(namespace string) (corev1.PodSpec, error) {
		deployment, err := clientset.AppsV1().Deployments(namespace).Get(ctx, source.Name, metav1.GetOptions{})
		if err != nil {
			return corev1.PodSpec{}, err
		}
		return deployment.Spec.Template.Spec, nil
	}, &f.processor)
}

type StatefulSetFetcher struct {
	processor WorkloadProcessor
}

func (f *StatefulSetFetcher) Fetch(ctx context.Context, clientset kubernetes.Interface, source Source) ([]Document, error) {
	return fetchWorkload(ctx, clientset, source, TypeStatefulSet, func(namespace string) (corev1.PodSpec, error) {
		statefulSet, err := clientset.AppsV1().StatefulSets(namespace).Get(ctx, source.Name, metav1.GetOptions{})
		if err != nil {
			return corev1.PodSpec{}, err
		}
		return statefulSet.Spec.Template.Spec, nil
	}, &f.processor)
}

type DaemonSetFetcher struct {
	processor WorkloadProcessor
}

func (f *DaemonSetFetcher) Fetch(ctx context.Context, clientset kubernetes.Interface, source Source) ([]Document, error) {
	return fetchWorkload(ctx, clientset, source, TypeDaemonSet, func(namespace string) (corev1.PodSpec, error) {
		daemonSet, err := clientset.AppsV1().DaemonSets(namespace).Get(ctx, source.Name, metav1.GetOptions{})
		if err != nil {
			return corev1.PodSpec{}, err
		}
		return daemonSet.Spec.Template.Spec, nil
	}, &f.processor)
}

func fetchWorkload(ctx context.Context, clientset kubernetes.Interface, source Source, workloadType string, podSpec func(namespace string) (corev1.PodSpec, error), processor *WorkloadProcessor) ([]Document, error) {
	if clientset == nil {
		return nil, fmt.Errorf("%s source %q needs a kubernetes client", workloadType, source.Name)
	}
	namespace := source.GetNamespace()
	spec, err := podSpec(namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s/%s: %w", workloadType, namespace, source.Name, err)
	}
	return processor.ProcessPodSpec(ctx, clientset, spec, source, workloadType, namespace)
}
