package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Supported document formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// codec converts between a document and a DeploymentConfig. decode reports
// syntax failures as *SerializationError and shape mismatches as ValidationErrors.
type codec struct {
	format string
	decode func(data []byte, cfg *DeploymentConfig) error
	encode func(cfg *DeploymentConfig) ([]byte, error)
}

var codecs = map[string]codec{
	FormatYAML: {format: FormatYAML, decode: decodeYAML, encode: encodeYAML},
	FormatJSON: {format: FormatJSON, decode: decodeJSON, encode: encodeJSON},
	FormatTOML: {format: FormatTOML, decode: decodeTOML, encode: encodeTOML},
}

var extensions = map[string]string{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".json": FormatJSON,
	".toml": FormatTOML,
}

// FormatForPath returns the document format implied by the file extension.
// Unknown extensions are treated as YAML.
func FormatForPath(path string) string {
	if format, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return format
	}
	return FormatYAML
}

func codecFor(format string) (codec, error) {
	c, ok := codecs[strings.ToLower(format)]
	if !ok {
		return codec{}, fmt.Errorf("unsupported config format: %s", format)
	}
	return c, nil
}

// Marshal renders cfg in the given format without touching the file system.
func Marshal(cfg *DeploymentConfig, format string) ([]byte, error) {
	c, err := codecFor(format)
	if err != nil {
		return nil, err
	}
	return c.encode(cfg)
}

// Unmarshal decodes and validates a document held in memory.
func Unmarshal(data []byte, format string) (*DeploymentConfig, error) {
	c, err := codecFor(format)
	if err != nil {
		return nil, err
	}

	var cfg DeploymentConfig
	if err := c.decode(data, &cfg); err != nil {
		return nil, err
	}
	if err := defaultValidator.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeYAML parses the document into a node tree first so that decoder
// complaints, which only carry a line number, can be traced back to a field.
func decodeYAML(data []byte, cfg *DeploymentConfig) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &SerializationError{Format: "YAML", Cause: err}
	}

	err := doc.Decode(cfg)
	if err == nil {
		return nil
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		index := indexDocument(&doc)
		errs := make(ValidationErrors, 0, len(typeErr.Errors))
		for _, msg := range typeErr.Errors {
			errs = append(errs, index.shapeError(msg))
		}
		return errs
	}
	return &SerializationError{Format: "YAML", Cause: err}
}

func encodeYAML(cfg *DeploymentConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var yamlTypeErrorPattern = regexp.MustCompile("^line (\\d+): cannot unmarshal (!!\\w+)(?: `(.*)`)? into (.+)$")

// Fields whose children are user-chosen keys rather than schema fields.
var keyedFields = map[string]bool{
	"environment":  true,
	"dependencies": true,
	"extra":        true,
}

type documentEntry struct {
	path string
	node *yaml.Node
}

// documentIndex lists, per source line, the values that start on it in
// document order.
type documentIndex map[int][]documentEntry

func indexDocument(doc *yaml.Node) documentIndex {
	index := documentIndex{}

	var walk func(n *yaml.Node, path string)
	walk = func(n *yaml.Node, path string) {
		switch n.Kind {
		case yaml.DocumentNode:
			for _, child := range n.Content {
				walk(child, path)
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				child := childPath(path, n.Content[i].Value)
				value := n.Content[i+1]
				index[value.Line] = append(index[value.Line], documentEntry{path: child, node: value})
				walk(value, child)
			}
		case yaml.SequenceNode:
			for i, item := range n.Content {
				child := fmt.Sprintf("%s[%d]", path, i)
				index[item.Line] = append(index[item.Line], documentEntry{path: child, node: item})
				walk(item, child)
			}
		}
	}
	walk(doc, "")

	return index
}

func childPath(parent, key string) string {
	switch {
	case parent == "":
		return key
	case keyedFields[parent[strings.LastIndex(parent, ".")+1:]]:
		return parent + "[" + key + "]"
	default:
		return parent + "." + key
	}
}

// field returns the path of the last value on line with the given tag whose
// text matches the snippet quoted by the decoder, or "" when none does.
func (idx documentIndex) field(line int, tag, snippet string) string {
	entries := idx[line]
	for i := len(entries) - 1; i >= 0; i-- {
		node := entries[i].node
		if node.ShortTag() != tag {
			continue
		}
		if snippet == "" || node.Value == snippet ||
			strings.HasSuffix(snippet, "...") && strings.HasPrefix(node.Value, strings.TrimSuffix(snippet, "...")) {
			return entries[i].path
		}
	}
	return ""
}

// shapeError turns one decoder message into a ValidationError naming the
// offending field. Messages that cannot be traced keep their line number.
func (idx documentIndex) shapeError(msg string) *ValidationError {
	m := yamlTypeErrorPattern.FindStringSubmatch(msg)
	if m == nil {
		return &ValidationError{Reason: msg}
	}

	line, _ := strconv.Atoi(m[1])
	field := idx.field(line, m[2], m[3])
	if field == "" {
		return &ValidationError{Reason: msg}
	}

	value := m[3]
	if value == "" {
		value = strings.TrimPrefix(m[2], "!!")
	}
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: "must be " + describeType(m[4]),
	}
}

func decodeJSON(data []byte, cfg *DeploymentConfig) error {
	err := json.Unmarshal(data, cfg)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return ValidationErrors{{
			Field:  typeErr.Field,
			Value:  typeErr.Value,
			Reason: fmt.Sprintf("must be %s", describeType(typeErr.Type.String())),
		}}
	}
	return &SerializationError{Format: "JSON", Cause: err}
}

func encodeJSON(cfg *DeploymentConfig) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decodeTOML parses the document generically and hands it to the JSON decoder,
// so TOML shares field names and shape checks with the other formats.
func decodeTOML(data []byte, cfg *DeploymentConfig) error {
	var tree map[string]interface{}
	if err := toml.Unmarshal(data, &tree); err != nil {
		return &SerializationError{Format: "TOML", Cause: err}
	}

	// Going through Value keeps whole floats distinct from integers.
	doc, err := ValueOf(tree)
	if err != nil {
		return &SerializationError{Format: "TOML", Cause: err}
	}
	bridged, err := json.Marshal(doc)
	if err != nil {
		return &SerializationError{Format: "TOML", Cause: err}
	}
	return decodeJSON(bridged, cfg)
}

func encodeTOML(cfg *DeploymentConfig) ([]byte, error) {
	bridged, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	var tree Value
	if err := json.Unmarshal(bridged, &tree); err != nil {
		return nil, err
	}
	// TOML has no null
	return toml.Marshal(dropNulls(tree).Interface())
}

func dropNulls(v Value) Value {
	switch v.kind {
	case KindMap:
		m := make(map[string]Value, len(v.m))
		for key, item := range v.m {
			if !item.IsNull() {
				m[key] = dropNulls(item)
			}
		}
		return Map(m)
	case KindList:
		items := make([]Value, 0, len(v.list))
		for _, item := range v.list {
			if !item.IsNull() {
				items = append(items, dropNulls(item))
			}
		}
		return List(items...)
	default:
		return v
	}
}

func describeType(goType string) string {
	switch {
	case strings.HasPrefix(goType, "map["), strings.HasPrefix(goType, "config."):
		return "a mapping"
	case strings.HasPrefix(goType, "[]"):
		return "a sequence"
	case strings.HasPrefix(goType, "int"), goType == "*int":
		return "an integer"
	case goType == "string":
		return "a string"
	default:
		return goType
	}
}
