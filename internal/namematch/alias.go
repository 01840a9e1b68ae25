// Package namematch maps user-typed plant names to canonical names using an
// ordered alias table and edit-distance similarity.
package namematch

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/plantcare/internal/model"
)

// Alias is a canonical plant name with its known variant spellings.
type Alias struct {
	Canonical string
	Variants  []string
}

// AliasTable is scanned in declaration order; the first match wins.
type AliasTable []Alias

// DefaultAliases returns the built-in alias table.
func DefaultAliases() AliasTable {
	return AliasTable{
		{"rose", []string{"roses", "roze", "roos", "rosa", "rozes", "rosses"}},
		{"sunflower", []string{"sun flower", "sunflowers", "sunflover", "sunflwr", "sun flowers"}},
		{"tulsi", []string{"holy basil", "tulasi", "tulsee", "thulasi", "tulshi", "sacred basil"}},
		{"money plant", []string{"pothos", "devil's ivy", "money tree", "pothos plant", "epipremnum", "golden pothos"}},
		{"snake plant", []string{"sansevieria", "mother in law's tongue", "mother in law tongue", "viper's bowstring hemp", "snakeplant"}},
		{"aloe vera", []string{"aloe", "aloe barbadensis", "aloe plant", "alovera", "aloevera"}},
		{"lavender", []string{"lavendar", "lavander", "lavendula", "english lavender"}},
		{"jasmine", []string{"jasmin", "jessamine", "jasminum", "common jasmine"}},
		{"tomato", []string{"tomatoes", "tamatar", "tomato plant", "tomatos"}},
		{"mint", []string{"mint plant", "pudina", "mentha", "spearmint", "peppermint"}},
		{"spider plant", []string{"chlorophytum", "airplane plant", "ribbon plant", "spider ivy"}},
		{"peace lily", []string{"spathiphyllum", "white sails", "spathe flower", "peace-lily"}},
		{"orchid", []string{"orchids", "orchidaceae", "phalaenopsis"}},
		{"cactus", []string{"cacti", "cactuses", "cactaceae"}},
		{"basil", []string{"sweet basil", "basil plant", "ocimum"}},
		{"fern", []string{"ferns", "boston fern", "maidenhair fern"}},
		{"bamboo", []string{"bamboo plant", "lucky bamboo", "bambusa"}},
	}
}

// LoadAliases reads an alias table from a YAML file.
func LoadAliases(path string) (AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "namematch: read aliases %s", path)
	}
	return ParseAliases(data)
}

// ParseAliases decodes a YAML mapping of canonical name to variant list,
// keeping the declaration order of the keys:
//
//	aliases:
//	  snake plant: [sansevieria, snakeplant]
//	  money plant: [pothos, devil's ivy]
//
// The top-level "aliases" key is optional.
func ParseAliases(data []byte) (AliasTable, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "namematch: parse aliases")
	}
	if len(doc.Content) == 0 {
		return nil, eris.New("namematch: empty alias document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, eris.New("namematch: aliases must be a mapping")
	}
	if len(root.Content) == 2 && root.Content[0].Value == "aliases" {
		root = root.Content[1]
		if root.Kind != yaml.MappingNode {
			return nil, eris.New("namematch: aliases must be a mapping")
		}
	}

	table := make(AliasTable, 0, len(root.Content)/2)
	seen := make(map[string]bool, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		canonical := model.Fold(root.Content[i].Value)
		if canonical == "" {
			return nil, eris.Errorf("namematch: empty canonical name at line %d", root.Content[i].Line)
		}
		if seen[canonical] {
			return nil, eris.Errorf("namematch: duplicate canonical name %q", canonical)
		}
		seen[canonical] = true

		var variants []string
		if err := root.Content[i+1].Decode(&variants); err != nil {
			return nil, eris.Wrapf(err, "namematch: variants for %q", canonical)
		}
		for j := range variants {
			variants[j] = model.Fold(variants[j])
		}
		table = append(table, Alias{Canonical: canonical, Variants: variants})
	}
	return table, nil
}
