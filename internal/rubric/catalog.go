package rubric

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var defaultCriteria = []string{
	"Conhecimento Técnico",
	"Cumprimento de Prazos",
	"Habilidades Organizacionais",
	"Habilidades Comunicacionais",
	"Espírito de Colaboração",
	"Trabalho em Grupo",
	"Interação com Colegas",
	"Qualidade no Trabalho",
	"Pontualidade",
	"Assiduidade",
	"Atitude Positiva / Empatia",
	"Resolução de Problemas",
	"Qualidade no Atendimento a Moradores, Visitantes e Colegas",
}

// Option carries the display metadata of a rating.
type Option struct {
	Rating Rating `json:"-"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

var defaultOptions = []Option{
	{Rating: Otimo, Label: Otimo.String(), Color: "#16a34a"},
	{Rating: Bom, Label: Bom.String(), Color: "#3b82f6"},
	{Rating: Regular, Label: Regular.String(), Color: "#eab308"},
	{Rating: Ruim, Label: Ruim.String(), Color: "#dc2626"},
}

// Catalog is the ordered list of competencies and the rating scale. It is
// built once at startup and never mutated.
type Catalog struct {
	criteria []string
	index    map[string]int
	options  []Option
}

type catalogFile struct {
	Criteria []string `yaml:"criteria"`
}

// Default returns the reference thirteen-criteria catalog.
func Default() *Catalog {
	c, err := New(defaultCriteria)
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog from an ordered criterion list.
func New(criteria []string) (*Catalog, error) {
	if len(criteria) == 0 {
		return nil, fmt.Errorf("rubric: criteria list is empty")
	}
	c := &Catalog{
		criteria: make([]string, 0, len(criteria)),
		index:    make(map[string]int, len(criteria)),
		options:  append([]Option(nil), defaultOptions...),
	}
	for _, name := range criteria {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("rubric: blank criterion at position %d", len(c.criteria)+1)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("rubric: duplicate criterion %q", name)
		}
		c.index[name] = len(c.criteria)
		c.criteria = append(c.criteria, name)
	}
	return c, nil
}

// Load reads a YAML file with a top-level `criteria` list. An empty path
// yields the default catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rubric: read %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("rubric: parse %s: %w", path, err)
	}
	return New(file.Criteria)
}

func (c *Catalog) Criteria() []string {
	return append([]string(nil), c.criteria...)
}

func (c *Catalog) Has(criterion string) bool {
	_, ok := c.index[criterion]
	return ok
}

func (c *Catalog) Options() []Option {
	return append([]Option(nil), c.options...)
}

// Option returns the display metadata for r.
func (c *Catalog) Option(r Rating) (Option, bool) {
	for _, opt := range c.options {
		if opt.Rating == r {
			return opt, true
		}
	}
	return Option{}, false
}
