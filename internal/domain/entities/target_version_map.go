package entities

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// TargetEntry pairs a runtime version key with the release recorded for it
type TargetEntry struct {
	Runtime string
	Release ReleaseVersion
}

// TargetVersionMap maps runtime versions to the last compatible release found.
// Keys keep the order of their first insertion; Set on an existing key
// overwrites the value in place.
type TargetVersionMap struct {
	keys   []string
	values map[string]ReleaseVersion
}

// NewTargetVersionMap creates an empty map
func NewTargetVersionMap() *TargetVersionMap {
	return &TargetVersionMap{values: make(map[string]ReleaseVersion)}
}

// Set records release for runtime, replacing any earlier value
func (m *TargetVersionMap) Set(runtime string, release ReleaseVersion) {
	if m.values == nil {
		m.values = make(map[string]ReleaseVersion)
	}
	if _, exists := m.values[runtime]; !exists {
		m.keys = append(m.keys, runtime)
	}
	m.values[runtime] = release
}

// Get returns the release recorded for runtime
func (m *TargetVersionMap) Get(runtime string) (ReleaseVersion, bool) {
	release, ok := m.values[runtime]
	return release, ok
}

// Len returns the number of runtime versions recorded
func (m *TargetVersionMap) Len() int {
	return len(m.keys)
}

// Keys returns the runtime versions in insertion order
func (m *TargetVersionMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns the map contents in insertion order
func (m *TargetVersionMap) Entries() []TargetEntry {
	entries := make([]TargetEntry, 0, len(m.keys))
	for _, k := range m.keys {
		entries = append(entries, TargetEntry{Runtime: k, Release: m.values[k]})
	}
	return entries
}

// MarshalJSON encodes the map as a JSON object in insertion order
func (m *TargetVersionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the map as a YAML mapping in insertion order
func (m *TargetVersionMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.values[k]},
		)
	}
	return node, nil
}
