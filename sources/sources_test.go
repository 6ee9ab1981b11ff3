package sources

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestShouldInclude(t *testing.T) {
	source := Source{Contexts: SourceContexts{Include: []string{"dev", "test"}, Exclude: []string{"ci"}}}

	tests := []struct {
		name     string
		contexts []string
		want     bool
	}{
		{"no contexts", nil, true},
		{"included", []string{"dev"}, true},
		{"not included", []string{"prod"}, false},
		{"excluded wins", []string{"dev", "ci"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, source.ShouldInclude(tt.contexts))
		})
	}

	excludeOnly := Source{Contexts: SourceContexts{Exclude: []string{"ci"}}}
	assert.True(t, excludeOnly.ShouldInclude([]string{"dev"}))
	assert.False(t, excludeOnly.ShouldInclude([]string{"ci"}))
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.properties")
	require.NoError(t, os.WriteFile(path, []byte("a.b=1\n"), 0o644))

	docs, err := (&FileFetcher{}).Fetch(context.Background(), nil, Source{Type: TypeFile, Path: path})
	require.NoError(t, err)
	require.Equal(t, []Document{{Name: "app.properties", Text: "a.b=1\n", SourceType: TypeFile}}, docs)

	_, err = (&FileFetcher{}).Fetch(context.Background(), nil, Source{Type: TypeFile, Name: "x"})
	require.ErrorContains(t, err, "path is required")

	_, err = (&FileFetcher{}).Fetch(context.Background(), nil, Source{Type: TypeFile, Path: filepath.Join(dir, "missing")})
	require.ErrorContains(t, err, "failed to read file")
}

func TestInlineAndStdin(t *testing.T) {
	docs, err := (&InlineFetcher{}).Fetch(context.Background(), nil, Source{Name: "greeting", Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, "hello", docs[0].Text)

	docs, err = (&StdinFetcher{Reader: strings.NewReader("piped")}).Fetch(context.Background(), nil, Source{})
	require.NoError(t, err)
	require.Equal(t, Document{Name: "stdin", Text: "piped", SourceType: TypeStdin}, docs[0])
}

func TestConfigMapFetcher(t *testing.T) {
	clientset := fake.NewSimpleClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "app", Namespace: "web"},
		Data: map[string]string{
			"b.json": `{"b":1}`,
			"a.yaml": "a: 1\n",
		},
	})

	docs, err := (&ConfigMapFetcher{}).Fetch(context.Background(), clientset, Source{Name: "app", Namespace: "web"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.yaml", docs[0].Name)
	assert.Equal(t, "b.json", docs[1].Name)
	assert.Equal(t, "web", docs[1].Namespace)

	docs, err = (&ConfigMapFetcher{}).Fetch(context.Background(), clientset, Source{Name: "app", Namespace: "web", Key: "b.json"})
	require.NoError(t, err)
	require.Equal(t, []Document{{Name: "b.json", Text: `{"b":1}`, SourceType: TypeConfigMap, Namespace: "web"}}, docs)

	_, err = (&ConfigMapFetcher{}).Fetch(context.Background(), clientset, Source{Name: "app", Namespace: "web", Key: "nope"})
	require.ErrorContains(t, err, `no key "nope"`)

	_, err = (&ConfigMapFetcher{}).Fetch(context.Background(), clientset, Source{Name: "missing"})
	require.ErrorContains(t, err, "failed to get configmap default/missing")

	_, err = (&ConfigMapFetcher{}).Fetch(context.Background(), nil, Source{Name: "app"})
	require.ErrorContains(t, err, "needs a kubernetes client")
}

func TestSecretFetcher(t *testing.T) {
	clientset := fake.NewSimpleClientset(&corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "creds", Namespace: "default"},
		Data:       map[string][]byte{"token": []byte("s3cr3t")},
	})

	docs, err := (&SecretFetcher{}).Fetch(context.Background(), clientset, Source{Name: "creds"})
	require.NoError(t, err)
	require.Equal(t, []Document{{Name: "token", Text: "s3cr3t", SourceType: TypeSecret, Namespace: "default"}}, docs)
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("b\na"), 0o644))

	all := []Source{
		{Name: "notes", Type: TypeFile, Path: path},
		{Name: "dev-only", Type: TypeInline, Text: "x", Contexts: SourceContexts{Include: []string{"dev"}}},
		{Name: "cm", Type: TypeConfigMap, Contexts: SourceContexts{Include: []string{"cluster"}}},
	}

	selected := Filter(all, []string{"dev"})
	require.Len(t, selected, 2)
	require.False(t, AnyNeedsKubernetes(selected))
	require.True(t, AnyNeedsKubernetes(all))

	docs, err := DefaultFetchers(nil).Collect(context.Background(), nil, selected)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "notes", docs[0].Name)
	assert.Equal(t, "dev-only", docs[1].Name)

	_, err = DefaultFetchers(nil).Collect(context.Background(), nil, []Source{{Name: "x", Type: "Container"}})
	require.ErrorContains(t, err, `unknown source type "Container"`)
}

func TestTypes(t *testing.T) {
	for _, typ := range []string{TypeFile, TypeInline, TypeStdin, TypeConfigMap, TypeSecret, TypeDeployment, TypeStatefulSet, TypeDaemonSet} {
		assert.True(t, IsKnownType(typ), typ)
	}
	assert.False(t, IsKnownType("EnvFile"))
	assert.True(t, NeedsKubernetes(TypeSecret))
	assert.True(t, NeedsKubernetes(TypeDaemonSet))
	assert.False(t, NeedsKubernetes(TypeFile))
}
