/*
Copyright © 2021 the odg authors.
This file is part of odg.

odg is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

odg is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with odg.  If not, see <http://www.gnu.org/licenses/>.
*/

package catalog

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

const sourcesKey = "sources"

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Encode writes entries to w as a catalog document, keeping their
// order.
func Encode(w io.Writer, entries []*Entry) error {
	sources := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		v := new(yaml.Node)
		if err := v.Encode(e); err != nil {
			return fmt.Errorf("catalog: encoding entry %s: %w", e.ID, err)
		}
		sources.Content = append(sources.Content, strNode(e.ID), v)
	}
	doc := &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{strNode(sourcesKey), sources},
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("catalog: writing document: %w", err)
	}
	return enc.Close()
}

// Decode reads the entries of a catalog document in document order.
// An empty document has no entries.
func Decode(r io.Reader) ([]*Entry, error) {
	var doc struct {
		Sources yaml.Node `yaml:"sources"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return []*Entry{}, nil
		}
		return nil, fmt.Errorf("catalog: reading document: %w", err)
	}
	src := &doc.Sources
	switch {
	case src.Kind == 0:
		return []*Entry{}, nil
	case src.Kind == yaml.ScalarNode && src.Tag == "!!null":
		return []*Entry{}, nil
	case src.Kind != yaml.MappingNode:
		return nil, fmt.Errorf("catalog: line %d: %q must be a mapping", src.Line, sourcesKey)
	}
	entries := make([]*Entry, 0, len(src.Content)/2)
	for i := 0; i+1 < len(src.Content); i += 2 {
		k, v := src.Content[i], src.Content[i+1]
		e := new(Entry)
		if err := v.Decode(e); err != nil {
			return nil, fmt.Errorf("catalog: entry %s: %w", k.Value, err)
		}
		e.ID = k.Value
		if e.Metadata != nil && len(e.Metadata.Extra) == 0 {
			e.Metadata.Extra = nil
		}
		entries = append(entries, e)
	}
	return entries, nil
}
