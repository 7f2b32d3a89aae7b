package normalize

import (
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var knowledgeYAML []byte

type categoryKnowledge struct {
	Description string   `yaml:"description"`
	Services    []string `yaml:"services"`
}

type knowledgeFile struct {
	Categories map[string]categoryKnowledge `yaml:"categories"`
}

var knowledge = loadKnowledge()

func loadKnowledge() map[string]categoryKnowledge {
	var kf knowledgeFile
	if err := yaml.Unmarshal(knowledgeYAML, &kf); err != nil {
		// The file is embedded at build time; a parse failure is a programming
		// error, but the pipeline can still run on the fallback template.
		zap.L().Error("normalize: parse embedded knowledge", zap.Error(err))
		return map[string]categoryKnowledge{}
	}
	return kf.Categories
}

// DeriveDescription synthesizes a company description when the export has
// none, keyed by the free-text category.
func DeriveDescription(name, category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	if k, ok := knowledge[key]; ok && k.Description != "" {
		return fmt.Sprintf("%s - %s", name, k.Description)
	}
	return fmt.Sprintf("%s - شركة %s متخصصة في %s", name, name, category)
}

// DeriveServices returns the stock services list for a known category.
// Unknown categories yield nil.
func DeriveServices(category string) []string {
	key := strings.ToLower(strings.TrimSpace(category))
	if k, ok := knowledge[key]; ok {
		return append([]string(nil), k.Services...)
	}
	return nil
}
