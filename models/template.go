package models

type TemplateDefinition struct {
	ID         string   `json:"id" yaml:"id" validate:"required"`
	Name       string   `json:"name" yaml:"name"`
	Subfolders []string `json:"subfolders" yaml:"subfolders"`
}
