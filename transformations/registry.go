package transformations

// Catalog identifiers.
const (
	IDBase64Encode     = "base64-encode"
	IDBase64Decode     = "base64-decode"
	IDJSONPrettify     = "json-prettify"
	IDJSONCompact      = "json-compact"
	IDURLEncode        = "url-encode"
	IDURLDecode        = "url-decode"
	IDCaseUpper        = "case-upper"
	IDCaseLower        = "case-lower"
	IDCaseTitle        = "case-title"
	IDXMLPrettify      = "xml-prettify"
	IDXMLCompact       = "xml-compact"
	IDLinesSort        = "lines-sort"
	IDLinesDeduplicate = "lines-deduplicate"
	IDLinesReverse     = "lines-reverse"
	IDHTMLEncode       = "html-encode"
	IDHTMLDecode       = "html-decode"
	IDHashMD5          = "hash-md5"
	IDHashSHA1         = "hash-sha1"
	IDHashSHA256       = "hash-sha256"
	IDUnicodeEscape    = "unicode-escape"
	IDUnicodeUnescape  = "unicode-unescape"
	IDJSONToYAML       = "json-to-yaml"
	IDYAMLToJSON       = "yaml-to-json"
	IDPropertiesToYAML = "properties-to-yaml"
	IDYAMLToProperties = "yaml-to-properties"
)

// Family groups related catalog entries.
type Family string

const (
	FamilyEncoding Family = "encoding"
	FamilyFormat   Family = "format"
	FamilyConvert  Family = "convert"
	FamilyCase     Family = "case"
	FamilyLines    Family = "lines"
	FamilyHash     Family = "hash"
)

// Entry is one row of the catalog.
type Entry struct {
	ID             string
	Family         Family
	Description    string
	Transformation Transformation
}

// catalogEntries is the complete, ordered catalog. It is never modified after init.
var catalogEntries = []Entry{
	{IDBase64Encode, FamilyEncoding, "Encode text as standard Base64", &Base64Encode{}},
	{IDBase64Decode, FamilyEncoding, "Decode standard Base64 to text", &Base64Decode{}},
	{IDURLEncode, FamilyEncoding, "Percent-encode reserved and non-ASCII characters", &URLEncode{}},
	{IDURLDecode, FamilyEncoding, "Decode percent-encoded sequences", &URLDecode{}},
	{IDHTMLEncode, FamilyEncoding, "Escape & < > \" ' as HTML entities", &HTMLEncode{}},
	{IDHTMLDecode, FamilyEncoding, "Replace HTML entities with the characters they name", &HTMLDecode{}},
	{IDUnicodeEscape, FamilyEncoding, `Escape non-ASCII characters as \uXXXX`, &UnicodeEscape{}},
	{IDUnicodeUnescape, FamilyEncoding, `Turn \uXXXX escapes back into characters`, &UnicodeUnescape{}},
	{IDJSONPrettify, FamilyFormat, "Indent JSON with two spaces", &JSONPrettify{}},
	{IDJSONCompact, FamilyFormat, "Remove insignificant whitespace from JSON", &JSONCompact{}},
	{IDXMLPrettify, FamilyFormat, "Indent XML with one element per line", &XMLPrettify{}},
	{IDXMLCompact, FamilyFormat, "Remove whitespace between XML tags", &XMLCompact{}},
	{IDJSONToYAML, FamilyConvert, "Convert JSON to YAML", &JSONToYAML{}},
	{IDYAMLToJSON, FamilyConvert, "Convert YAML to JSON", &YAMLToJSON{}},
	{IDPropertiesToYAML, FamilyConvert, "Convert a properties file to nested YAML", &PropertiesToYAML{}},
	{IDYAMLToProperties, FamilyConvert, "Flatten YAML into a properties file", &YAMLToProperties{}},
	{IDCaseUpper, FamilyCase, "Convert to upper case", Pure(upperCase)},
	{IDCaseLower, FamilyCase, "Convert to lower case", Pure(lowerCase)},
	{IDCaseTitle, FamilyCase, "Capitalize the first letter of every word", Pure(titleCase)},
	{IDLinesSort, FamilyLines, "Sort lines in ascending order", Pure(sortLines)},
	{IDLinesDeduplicate, FamilyLines, "Remove repeated lines, keeping the first", Pure(deduplicateLines)},
	{IDLinesReverse, FamilyLines, "Reverse the order of lines", Pure(reverseLines)},
	{IDHashMD5, FamilyHash, "MD5 digest as lowercase hex", MD5},
	{IDHashSHA1, FamilyHash, "SHA-1 digest as lowercase hex", SHA1},
	{IDHashSHA256, FamilyHash, "SHA-256 digest as lowercase hex", SHA256},
}

var catalogIndex = func() map[string]Entry {
	index := make(map[string]Entry, len(catalogEntries))
	for _, e := range catalogEntries {
		index[e.ID] = e
	}
	return index
}()

// Lookup returns the transformation registered under id.
func Lookup(id string) (Transformation, bool) {
	e, ok := catalogIndex[id]
	if !ok {
		return nil, false
	}
	return e.Transformation, true
}

// Describe returns the catalog entry for id.
func Describe(id string) (Entry, bool) {
	e, ok := catalogIndex[id]
	return e, ok
}

// Entries returns a copy of the catalog in display order.
func Entries() []Entry {
	out := make([]Entry, len(catalogEntries))
	copy(out, catalogEntries)
	return out
}

// IDs returns every catalog identifier in display order.
func IDs() []string {
	ids := make([]string, len(catalogEntries))
	for i, e := range catalogEntries {
		ids[i] = e.ID
	}
	return ids
}

// Config represents a transformation step from configuration
type Config struct {
	Type   string `koanf:"type"`
	Target string `koanf:"target"`
	Value  string `koanf:"value"`
}

// TargetOf returns where the step applies; anything but "key" targets the value.
func (c Config) TargetOf() Target {
	if Target(c.Target) == TargetKey {
		return TargetKey
	}
	return TargetValue
}

// Parametric builds the transformations that take a value from configuration.
// These live outside the catalog because they are not fixed functions of the text.
func Parametric(cfg Config) (Transformation, bool) {
	switch cfg.Type {
	case "prefix":
		return &Prefix{Value: cfg.Value}, true
	case "suffix":
		return &Suffix{Value: cfg.Value}, true
	}
	return nil, false
}
