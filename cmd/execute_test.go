package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"

	"textops/config"
	"textops/dispatcher"
	"textops/sources"
	"textops/transformations"
)

func noClients(string) (kubernetes.Interface, error) {
	return nil, errors.New("no cluster in tests")
}

func noStdin() ([]byte, error) {
	return nil, errors.New("stdin is not available in tests")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestRunExecution(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"name":"app","port":8080}`), 0644))

	execution := config.Execution{
		Name:   "yaml",
		Output: config.ExecutionOutput{Directory: filepath.Join(dir, "out"), Suffix: ".yaml"},
		Transformations: []transformations.Config{
			{Type: "json-to-yaml"},
			{Type: "suffix", Target: "key", Value: "-converted"},
		},
	}
	srcs := []sources.Source{
		{Name: "settings", Type: sources.TypeFile, Path: input},
		{Name: "skipped", Type: sources.TypeInline, Text: "x", Contexts: sources.SourceContexts{Include: []string{"prod"}}},
	}
	execution.Contexts = []string{"dev"}

	written, err := runExecution(context.Background(), dispatcher.New(), execution, srcs, noClients, noStdin)
	require.NoError(t, err)

	want := filepath.Join(dir, "out", "settings-converted.yaml")
	require.Equal(t, []string{want}, written)
	assert.Equal(t, "name: app\nport: 8080\n", readFile(t, want))
}

func TestRunExecutionFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	execution := config.Execution{
		Name:            "compact",
		Output:          config.ExecutionOutput{Directory: filepath.Join(dir, "out")},
		Transformations: []transformations.Config{{Type: "json-compact"}},
	}
	srcs := []sources.Source{
		{Name: "good", Type: sources.TypeInline, Text: `{ "a": 1 }`},
		{Name: "bad", Type: sources.TypeInline, Text: `{ "a": `},
	}

	_, err := runExecution(context.Background(), dispatcher.New(), execution, srcs, noClients, noStdin)
	require.Error(t, err)
	assert.True(t, transformations.IsFormatError(err))
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestRunExecutionKubernetes(t *testing.T) {
	clientset := fake.NewSimpleClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "app", Namespace: "default"},
		Data:       map[string]string{"greeting": "hello"},
	})
	dir := t.TempDir()
	execution := config.Execution{
		Name:            "cluster",
		Output:          config.ExecutionOutput{Directory: dir, Suffix: ".txt"},
		Transformations: []transformations.Config{{Type: "case-upper"}},
	}
	srcs := []sources.Source{{Name: "app", Type: sources.TypeConfigMap}}

	_, err := runExecution(context.Background(), dispatcher.New(), execution, srcs, noClients, noStdin)
	require.ErrorContains(t, err, "no kube-context is specified")

	execution.KubeContext = "kind-test"
	var requested string
	written, err := runExecution(context.Background(), dispatcher.New(), execution, srcs, func(kubeContext string) (kubernetes.Interface, error) {
		requested = kubeContext
		return clientset, nil
	}, noStdin)
	require.NoError(t, err)
	assert.Equal(t, "kind-test", requested)
	require.Len(t, written, 1)
	assert.Equal(t, "HELLO", readFile(t, written[0]))
}

func TestRunExecutionRejectsEscapingNames(t *testing.T) {
	execution := config.Execution{
		Name:            "escape",
		Output:          config.ExecutionOutput{Directory: t.TempDir()},
		Transformations: []transformations.Config{{Type: "prefix", Target: "key", Value: "../"}},
	}
	srcs := []sources.Source{{Name: "doc", Type: sources.TypeInline, Text: "x"}}

	_, err := runExecution(context.Background(), dispatcher.New(), execution, srcs, noClients, noStdin)
	require.ErrorContains(t, err, "invalid output file name")
}

func TestRunExecutionsConcurrently(t *testing.T) {
	dir := t.TempDir()
	srcs := []sources.Source{{Name: "doc", Type: sources.TypeInline, Text: "b\na\nb\n"}}
	executions := []config.Execution{
		{Name: "sorted", Output: config.ExecutionOutput{Directory: filepath.Join(dir, "sorted")}, Transformations: []transformations.Config{{Type: "lines-sort"}}},
		{Name: "unique", Output: config.ExecutionOutput{Directory: filepath.Join(dir, "unique")}, Transformations: []transformations.Config{{Type: "lines-deduplicate"}}},
		{Name: "broken", Output: config.ExecutionOutput{Directory: filepath.Join(dir, "broken")}, Transformations: []transformations.Config{{Type: "yaml-to-properties"}}},
	}

	var out bytes.Buffer
	results := runExecutions(context.Background(), dispatcher.New(), srcs, executions, noClients, nil, &out)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].err)
	assert.Equal(t, "a\nb\nb\n", readFile(t, filepath.Join(dir, "sorted", "doc")))
	assert.NoError(t, results[1].err)
	assert.Equal(t, "b\na\n", readFile(t, filepath.Join(dir, "unique", "doc")))
	assert.Error(t, results[2].err)
	assert.Contains(t, out.String(), "Executing: sorted")
	assert.Contains(t, out.String(), "[unique] Wrote 1 documents to")
}

func TestRunExecutionsShareStdin(t *testing.T) {
	dir := t.TempDir()
	srcs := []sources.Source{{Name: "piped", Type: sources.TypeStdin}}
	executions := []config.Execution{
		{Name: "upper", Output: config.ExecutionOutput{Directory: filepath.Join(dir, "upper")}, Transformations: []transformations.Config{{Type: "case-upper"}}},
		{Name: "lower", Output: config.ExecutionOutput{Directory: filepath.Join(dir, "lower")}, Transformations: []transformations.Config{{Type: "case-lower"}}},
	}

	var out bytes.Buffer
	results := runExecutions(context.Background(), dispatcher.New(), srcs, executions, noClients, strings.NewReader("Piped Text"), &out)
	require.Len(t, results, 2)
	require.NoError(t, results[0].err)
	require.NoError(t, results[1].err)
	assert.Equal(t, "PIPED TEXT", readFile(t, filepath.Join(dir, "upper", "piped")))
	assert.Equal(t, "piped text", readFile(t, filepath.Join(dir, "lower", "piped")))
}

func TestOutputFileName(t *testing.T) {
	name, err := outputFileName("app", ".env")
	require.NoError(t, err)
	assert.Equal(t, "app.env", name)

	for _, bad := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := outputFileName(bad, "")
		assert.Error(t, err, bad)
	}
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, "", "to stdout"))
	assert.Equal(t, "to stdout", buf.String())

	path := filepath.Join(t.TempDir(), "nested", "out.txt")
	require.NoError(t, writeOutput(nil, path, "first"))
	require.NoError(t, writeOutput(nil, path, "second"))
	assert.Equal(t, "second", readFile(t, path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestApplyChain(t *testing.T) {
	d := dispatcher.New()

	out, err := applyChain(context.Background(), d, []string{"case-upper"}, "abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", out)

	out, err = applyChain(context.Background(), d, []string{"base64-encode", "base64-decode", "case-title"}, "hello world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", out)

	_, err = applyChain(context.Background(), d, []string{"case-upper", "json-compact"}, "abc")
	require.ErrorContains(t, err, "step 2 of 2")
}

func TestDocumentLabel(t *testing.T) {
	assert.Equal(t, "ConfigMap web/app", documentLabel(sources.Document{Name: "app", SourceType: sources.TypeConfigMap, Namespace: "web"}))
	assert.Equal(t, "Inline note", documentLabel(sources.Document{Name: "note", SourceType: sources.TypeInline}))
}
