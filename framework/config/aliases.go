package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-yii/framework/alias"
)

// LoadAliases reads alias definitions from a YAML file, keeping file order so
// later entries may refer to earlier ones:
//
//	aliases:
//	  "@yii": /yii/framework
//	  "@gii": "@yii/extensions/gii"
//
// A missing file yields no definitions.
func LoadAliases(path string) ([]alias.Definition, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading aliases: %w", err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes the document format described on LoadAliases.
func ParseAliases(data []byte) ([]alias.Definition, error) {
	var doc struct {
		Aliases yaml.Node `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing aliases: %w", err)
	}

	node := doc.Aliases
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config: aliases at line %d: expected a mapping", node.Line)
	}

	defs := make([]alias.Definition, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("config: alias %q at line %d: path must be a string", k.Value, v.Line)
		}
		defs = append(defs, alias.Definition{Alias: k.Value, Path: v.Value})
	}
	return defs, nil
}
