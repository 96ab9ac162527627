package services

import (
	"fmt"
	"os"

	"projectdrive/models"

	"gopkg.in/yaml.v3"
)

// Built-in folder structure templates. The whole set can be replaced at
// startup by pointing TEMPLATES_FILE at a YAML document of the same shape.
var builtinTemplates = []models.TemplateDefinition{
	{
		ID:   "long",
		Name: "Full project structure",
		Subfolders: []string{
			"01_Contract",
			"02_Quotes",
			"03_Correspondence",
			"04_Design",
			"05_Calculations",
			"06_Drawings",
			"07_Site",
			"08_Invoices",
			"09_Reports",
			"10_Archive",
		},
	},
	{
		ID:   "short",
		Name: "Reduced project structure",
		Subfolders: []string{
			"01_Contract",
			"02_Correspondence",
			"03_Deliverables",
			"04_Invoices",
		},
	},
}

// TemplateRegistry resolves template identifiers to their subfolder sets.
// Definitions are immutable after construction.
type TemplateRegistry struct {
	templates map[string]models.TemplateDefinition
	order     []string
}

// NewTemplateRegistry creates a registry holding the built-in templates.
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]models.TemplateDefinition),
	}
	for _, template := range builtinTemplates {
		registry.add(template)
	}
	return registry
}

// NewTemplateRegistryFromFile loads template definitions from a YAML file,
// replacing the built-in set entirely.
func NewTemplateRegistryFromFile(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %v", err)
	}

	var doc struct {
		Templates []models.TemplateDefinition `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse templates file: %v", err)
	}
	if len(doc.Templates) == 0 {
		return nil, fmt.Errorf("templates file %s defines no templates", path)
	}

	registry := &TemplateRegistry{
		templates: make(map[string]models.TemplateDefinition),
	}
	for _, template := range doc.Templates {
		if template.ID == "" {
			return nil, fmt.Errorf("templates file %s contains a template without an id", path)
		}
		if len(template.Subfolders) == 0 {
			return nil, fmt.Errorf("template %q defines no subfolders", template.ID)
		}
		registry.add(template)
	}
	return registry, nil
}

// Get returns the template for the given identifier.
func (tr *TemplateRegistry) Get(id string) (*models.TemplateDefinition, error) {
	template, exists := tr.templates[id]
	if !exists {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("template %q is not defined", id))
	}
	return &template, nil
}

// Has reports whether a template with the given identifier exists.
func (tr *TemplateRegistry) Has(id string) bool {
	_, exists := tr.templates[id]
	return exists
}

// IDs returns the known template identifiers in declaration order.
func (tr *TemplateRegistry) IDs() []string {
	ids := make([]string, len(tr.order))
	copy(ids, tr.order)
	return ids
}

// All returns every template definition in declaration order.
func (tr *TemplateRegistry) All() []models.TemplateDefinition {
	templates := make([]models.TemplateDefinition, 0, len(tr.order))
	for _, id := range tr.order {
		templates = append(templates, tr.templates[id])
	}
	return templates
}

func (tr *TemplateRegistry) add(template models.TemplateDefinition) {
	if _, exists := tr.templates[template.ID]; !exists {
		tr.order = append(tr.order, template.ID)
	}
	tr.templates[template.ID] = template
}
