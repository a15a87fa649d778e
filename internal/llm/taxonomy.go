package llm

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryConfig is one category of the taxonomy injected into the
// classification prompt.
type CategoryConfig struct {
	Name          string   `yaml:"name"`
	Subcategories []string `yaml:"subcategories"`
}

// Taxonomy is the category list loaded from categories.yaml.
type Taxonomy struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// defaultTaxonomy covers the common ledger categories when no file is
// available.
var defaultTaxonomy = Taxonomy{Categories: []CategoryConfig{
	{Name: "Alimentação", Subcategories: []string{"Mercado", "Restaurante", "Delivery"}},
	{Name: "Transporte", Subcategories: []string{"Combustível", "Aplicativo", "Transporte público"}},
	{Name: "Moradia", Subcategories: []string{"Aluguel", "Condomínio", "Energia", "Internet"}},
	{Name: "Saúde", Subcategories: []string{"Farmácia", "Consulta", "Plano de saúde"}},
	{Name: "Lazer", Subcategories: nil},
	{Name: "Educação", Subcategories: nil},
	{Name: "Salário", Subcategories: nil},
	{Name: "Outros", Subcategories: nil},
}}

// LoadTaxonomy reads the category taxonomy from a YAML file. A missing
// file falls back to the built-in default rather than failing.
func LoadTaxonomy(path string) (Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultTaxonomy, nil
		}
		return Taxonomy{}, fmt.Errorf("reading taxonomy file: %w", err)
	}
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("parsing taxonomy file: %w", err)
	}
	if len(t.Categories) == 0 {
		return defaultTaxonomy, nil
	}
	return t, nil
}

// PromptSection renders the taxonomy as the category block of a prompt.
func (t Taxonomy) PromptSection() string {
	var b strings.Builder
	b.WriteString("Use SOMENTE as categorias e subcategorias abaixo:\n\n")
	for _, c := range t.Categories {
		b.WriteString(c.Name + ":\n")
		if len(c.Subcategories) == 0 {
			b.WriteString("  (sem subcategorias - use string vazia \"\")\n")
			continue
		}
		for _, s := range c.Subcategories {
			b.WriteString("  - " + s + "\n")
		}
	}
	return b.String()
}
