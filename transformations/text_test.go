package transformations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCase(t *testing.T) {
	tests := []struct {
		id    string
		input string
		want  string
	}{
		{IDCaseUpper, "Hello, wörld", "HELLO, WÖRLD"},
		{IDCaseUpper, "straße", "STRASSE"},
		{IDCaseLower, "Hello, WÖRLD", "hello, wörld"},
		{IDCaseTitle, "hELLO wORLD", "Hello World"},
		{IDCaseTitle, "  two  spaces\tand\ttabs\n", "  Two  Spaces\tAnd\tTabs\n"},
		{IDCaseTitle, "foo-bar élan", "Foo-bar Élan"},
		{IDCaseTitle, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustApply(t, tt.id, tt.input))
		})
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		input string
		want  string
	}{
		{"sort", IDLinesSort, "banana\napple\ncherry", "apple\nbanana\ncherry"},
		{"sort keeps trailing newline", IDLinesSort, "b\na\n", "a\nb\n"},
		{"sort crlf", IDLinesSort, "b\r\nc\r\na", "a\r\nb\r\nc"},
		{"sort code points", IDLinesSort, "b\nB\né\na", "B\na\nb\né"},
		{"dedupe", IDLinesDeduplicate, "a\nb\na\nc\nb", "a\nb\nc"},
		{"dedupe blank lines", IDLinesDeduplicate, "a\n\n\nb\n", "a\n\nb\n"},
		{"reverse", IDLinesReverse, "1\n2\n3\n", "3\n2\n1\n"},
		{"reverse single", IDLinesReverse, "only", "only"},
		{"empty", IDLinesSort, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustApply(t, tt.id, tt.input))
		})
	}
}

func TestLinesIdempotent(t *testing.T) {
	in := "pear\napple\npear\n\nfig\napple"
	for _, id := range []string{IDLinesSort, IDLinesDeduplicate} {
		once := mustApply(t, id, in)
		require.Equal(t, once, mustApply(t, id, once), id)
	}
}

func TestHashes(t *testing.T) {
	tests := []struct {
		id    string
		input string
		want  string
	}{
		{IDHashMD5, "hello", "5d41402abc4b2a76b9719d911017c592"},
		{IDHashSHA1, "hello", "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		{IDHashSHA256, "hello", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{IDHashMD5, "", "d41d8cd98f00b204e9800998ecf8427e"},
		{IDHashSHA256, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, mustApply(t, tt.id, tt.input))
		})
	}
}

func TestHashHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SHA256.Transform(ctx, "hello")
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmptyInput(t *testing.T) {
	mustFail := map[string]string{
		IDJSONPrettify: "JSON",
		IDJSONCompact:  "JSON",
		IDJSONToYAML:   "JSON",
		IDXMLPrettify:  "XML",
		IDXMLCompact:   "XML",
	}
	for _, id := range IDs() {
		out, err := apply(t, id, "")
		if format, ok := mustFail[id]; ok {
			requireFormatError(t, err, id, format)
			continue
		}
		require.NoError(t, err, id)
		switch id {
		case IDHashMD5, IDHashSHA1, IDHashSHA256:
			require.NotEmpty(t, out)
		case IDYAMLToJSON:
			require.Equal(t, "null", out)
		case IDPropertiesToYAML:
			require.Equal(t, "{}\n", out)
		default:
			require.Equal(t, "", out, id)
		}
	}
}

func TestCatalogIsComplete(t *testing.T) {
	want := []string{
		"base64-encode", "base64-decode", "json-prettify", "json-compact", "url-encode",
		"url-decode", "case-upper", "case-lower", "case-title", "xml-prettify", "xml-compact",
		"lines-sort", "lines-deduplicate", "lines-reverse", "html-encode", "html-decode",
		"hash-md5", "hash-sha1", "hash-sha256", "unicode-escape", "unicode-unescape",
		"json-to-yaml", "yaml-to-json", "properties-to-yaml", "yaml-to-properties",
	}
	require.ElementsMatch(t, want, IDs())

	for _, e := range Entries() {
		require.NotEmpty(t, e.Description, e.ID)
		require.NotEmpty(t, e.Family, e.ID)
		got, ok := Describe(e.ID)
		require.True(t, ok)
		require.Equal(t, e.ID, got.ID)
	}

	_, ok := Lookup("no-such-thing")
	require.False(t, ok)
}

func TestEntriesReturnsCopy(t *testing.T) {
	entries := Entries()
	entries[0].ID = "changed"
	require.Equal(t, IDBase64Encode, IDs()[0])
}

func TestParametric(t *testing.T) {
	p, ok := Parametric(Config{Type: "prefix", Value: ">> "})
	require.True(t, ok)
	out, err := p.Transform(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, ">> x", out)

	s, ok := Parametric(Config{Type: "suffix", Value: ".yaml"})
	require.True(t, ok)
	out, err = s.Transform(context.Background(), "config")
	require.NoError(t, err)
	require.Equal(t, "config.yaml", out)

	_, ok = Parametric(Config{Type: IDCaseUpper})
	require.False(t, ok)

	require.Equal(t, TargetKey, Config{Target: "key"}.TargetOf())
	require.Equal(t, TargetValue, Config{}.TargetOf())
}
