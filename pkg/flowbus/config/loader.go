package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// FromFile reads a settings file, choosing the format by extension
// (.yaml, .yml or .json). ${VAR} and $VAR references are expanded from the
// environment before parsing, so paths such as bus.journal_path can point
// at a per-deployment directory.
func FromFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Values{}, fmt.Errorf("read config file: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Values{}, fmt.Errorf("config %s: unsupported extension %q", filepath.Base(path), ext)
	}
}

// FromYAML parses a YAML document whose top level is a mapping. An empty
// document yields empty Values.
func FromYAML(data []byte) (Values, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Values{}, fmt.Errorf("parse yaml: %w", err)
	}
	switch m := doc.(type) {
	case nil:
		return New(nil), nil
	case map[string]any:
		return New(m), nil
	default:
		return Values{}, fmt.Errorf("parse yaml: top level must be a mapping of sections, got %T", doc)
	}
}

// FromJSON parses a JSON document whose top level is an object.
func FromJSON(data []byte) (Values, error) {
	if !gjson.ValidBytes(data) {
		return Values{}, fmt.Errorf("parse json: invalid document")
	}
	if top := gjson.ParseBytes(data); !top.IsObject() {
		kind := strings.ToLower(top.Type.String())
		if top.IsArray() {
			kind = "array"
		}
		return Values{}, fmt.Errorf("parse json: top level must be an object of sections, got %s", kind)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Values{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}
