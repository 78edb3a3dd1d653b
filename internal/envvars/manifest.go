package envvars

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Encode writes names as a YAML mapping whose values are all null, rendered
// as empty scalars. The same names always produce the same bytes.
func Encode(w io.Writer, names []string) error {
	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range names {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""},
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return enc.Close()
}

// WriteManifest writes the manifest for names to path, replacing any existing file
func WriteManifest(path string, names []string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, names); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Extract scans root and writes the manifest to output. It returns the names written.
func Extract(scanner *Scanner, root, output string) ([]string, error) {
	names, err := scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	if err := WriteManifest(output, names); err != nil {
		return nil, err
	}
	return names, nil
}
