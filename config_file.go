// config_file.go: skin configuration files
//
// A skin file holds one section per measure. Sections whose Measure option
// is Plugin are hosted by a PluginMeasure. The file format is detected from
// the extension: YAML is parsed with gopkg.in/yaml.v3 to keep section order,
// INI, JSON, TOML, HCL and properties files go through argus.
//
// Option values reach plugins as the text the user wrote. argus types
// scalars while parsing, so for line-oriented formats the source text of
// each key is kept and preferred over the typed value: 0012 stays 0012 and
// 1.10 stays 1.10.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

const (
	// OptionMeasure is the section key naming the measure type.
	OptionMeasure = "Measure"
	// MeasureTypePlugin is the Measure value selecting a plugin measure.
	MeasureTypePlugin = "Plugin"
)

// SkinConfig is a parsed skin file.
type SkinConfig struct {
	path     string
	sections []*MapSection
	byName   map[string]*MapSection
}

// LoadSkinConfig reads and parses the skin file at path.
func LoadSkinConfig(path string) (*SkinConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return nil, NewConfigNotFoundError(path, err)
	}
	return ParseSkinConfig(path, data)
}

// ParseSkinConfig parses skin file content. path selects the format and is
// recorded as the skin path handed to plugins.
func ParseSkinConfig(path string, data []byte) (*SkinConfig, error) {
	cfg := &SkinConfig{path: path, byName: make(map[string]*MapSection)}

	format := argus.DetectFormat(path)
	if format == argus.FormatYAML {
		if err := cfg.parseYAML(data); err != nil {
			return nil, NewConfigParseError(path, err)
		}
		return cfg, nil
	}

	parsed, err := argus.ParseConfig(data, format)
	if err != nil {
		return nil, NewConfigParseError(path, err)
	}
	src := scanSource(data)
	if format == argus.FormatJSON || format == argus.FormatTOML {
		// Typed formats: a quoted value already is the literal text.
		src.values = nil
	}
	cfg.bindParsed(parsed, src)
	return cfg, nil
}

// Path returns the file the configuration was read from.
func (c *SkinConfig) Path() string { return c.path }

// Sections returns every section in file order.
func (c *SkinConfig) Sections() []*MapSection {
	out := make([]*MapSection, len(c.sections))
	copy(out, c.sections)
	return out
}

// Section looks up a section by case-insensitive name.
func (c *SkinConfig) Section(name string) (*MapSection, bool) {
	s, ok := c.byName[strings.ToLower(name)]
	return s, ok
}

// PluginSections returns the sections configuring plugin measures, in file order.
func (c *SkinConfig) PluginSections() []*MapSection {
	var out []*MapSection
	for _, s := range c.sections {
		if strings.EqualFold(s.ReadString(OptionMeasure, ""), MeasureTypePlugin) {
			out = append(out, s)
		}
	}
	return out
}

func (c *SkinConfig) section(name string) *MapSection {
	if s, ok := c.byName[strings.ToLower(name)]; ok {
		return s
	}
	s := NewMapSection(name, nil)
	c.sections = append(c.sections, s)
	c.byName[strings.ToLower(name)] = s
	return s
}

func (c *SkinConfig) parseYAML(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("top level must be a mapping of sections, got %s", kindName(root.Kind))
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, root.Content[i+1]
		if body.Kind != yaml.MappingNode {
			continue
		}
		s := c.section(name)
		for j := 0; j+1 < len(body.Content); j += 2 {
			key, value := body.Content[j], body.Content[j+1]
			if value.Kind != yaml.ScalarNode {
				continue
			}
			s.Set(key.Value, expandValue(value.Value))
		}
	}
	return nil
}

// bindParsed turns an argus result into sections. Nested maps become
// sections; flattened "section.key" entries are split on the first dot.
// src supplies the section order and, when known, the source text of each
// value.
func (c *SkinConfig) bindParsed(parsed map[string]interface{}, src sourceText) {
	type entry struct{ section, key, value string }
	var entries []entry

	add := func(section, key string, v interface{}) {
		value, ok := src.lookup(section, key)
		if !ok {
			value = stringify(v)
		}
		entries = append(entries, entry{section, key, value})
	}
	for k, v := range parsed {
		switch val := v.(type) {
		case map[string]interface{}:
			for kk, vv := range val {
				add(k, kk, vv)
			}
		default:
			if i := strings.IndexByte(k, '.'); i > 0 {
				add(k[:i], k[i+1:], v)
			}
		}
	}

	rank := make(map[string]int, len(src.order))
	for i, name := range src.order {
		if _, seen := rank[strings.ToLower(name)]; !seen {
			rank[strings.ToLower(name)] = i
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, iok := rank[strings.ToLower(entries[i].section)]
		rj, jok := rank[strings.ToLower(entries[j].section)]
		switch {
		case iok && jok && ri != rj:
			return ri < rj
		case iok != jok:
			return iok
		case !strings.EqualFold(entries[i].section, entries[j].section):
			return entries[i].section < entries[j].section
		default:
			return entries[i].key < entries[j].key
		}
	})

	for _, e := range entries {
		c.section(e.section).Set(e.key, expandValue(e.value))
	}
}

// sourceText is what a line-oriented skin file says before argus types it.
type sourceText struct {
	// order lists [section] headers in source order.
	order []string
	// values maps lower-cased section and key names to the value text.
	// Keys outside any section live under "".
	values map[string]map[string]string
}

// scanSource reads [section] headers and key=value lines. Comment lines
// start with ; or #. A value wrapped in matching quotes loses the quotes.
func scanSource(data []byte) sourceText {
	src := sourceText{values: make(map[string]map[string]string)}
	current := ""
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		if line[0] == '[' {
			if len(line) > 2 && line[len(line)-1] == ']' {
				current = strings.TrimSpace(line[1 : len(line)-1])
				src.order = append(src.order, current)
			}
			continue
		}

		i := strings.IndexByte(line, '=')
		if i < 0 {
			i = strings.IndexByte(line, ':')
		}
		if i <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:i]))
		section := strings.ToLower(current)
		if src.values[section] == nil {
			src.values[section] = make(map[string]string)
		}
		src.values[section][key] = unquote(strings.TrimSpace(line[i+1:]))
	}
	return src
}

// lookup returns the source text of section.key, also trying the flattened
// "section.key" form used by files without headers.
func (s sourceText) lookup(section, key string) (string, bool) {
	if s.values == nil {
		return "", false
	}
	if v, ok := s.values[strings.ToLower(section)][strings.ToLower(key)]; ok {
		return v, true
	}
	v, ok := s.values[""][strings.ToLower(section+"."+key)]
	return v, ok
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
