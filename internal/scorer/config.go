// Package scorer converts raw evidence text into engagement tiers and
// confidence scores through configurable keyword rule tables. The scoring
// policies are deliberately kept as separate, named functions: each one is
// independently reviewable business logic, and the oracle's self-reported
// confidence is never what gets persisted.
package scorer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// TierRule maps one engagement tier to its trigger phrases. Rules are
// evaluated in table order.
type TierRule struct {
	Tier    model.EngagementTier `yaml:"tier"`
	Phrases []string             `yaml:"phrases"`
}

// Config holds the keyword rule tables and confidence floors.
type Config struct {
	// TierRules drive ComputeTier. Exploratory never appears here: it is
	// reserved for fallback signals.
	TierRules []TierRule `yaml:"tier_rules"`

	// ServiceKeywords drive ComputeConfidence.
	ServiceKeywords []string `yaml:"service_keywords"`

	// TransformationKeywords and SeniorTitleIndicators drive
	// ComputeJobConfidence.
	TransformationKeywords []string `yaml:"transformation_keywords"`
	SeniorTitleIndicators  []string `yaml:"senior_title_indicators"`

	// InstitutionConfidenceFloor gates institution-specific leads;
	// SignalConfidenceFloor gates fallback signals. Kept as independent
	// knobs rather than derived from each other.
	InstitutionConfidenceFloor float64 `yaml:"institution_confidence_floor"`
	SignalConfidenceFloor      float64 `yaml:"signal_confidence_floor"`
}

// DefaultConfig returns the keyword tables reviewed with Dynamic Campus.
func DefaultConfig() Config {
	return Config{
		TierRules: []TierRule{
			{
				Tier: model.TierSmall,
				Phrases: []string{
					"consultation", "assessment", "pilot program",
					"advisory review", "workshop",
				},
			},
			{
				Tier: model.TierMedium,
				Phrases: []string{
					"implementation", "migration", "upgrade", "rollout",
					"multi-phase", "system selection",
				},
			},
			{
				Tier: model.TierRecurring,
				Phrases: []string{
					"managed services", "ongoing advisory", "retainer",
					"long-term partnership", "support services",
				},
			},
			{
				Tier: model.TierFullOutsourcing,
				Phrases: []string{
					"outsourcing", "comprehensive transformation",
					"restructuring", "it overhaul", "strategic plan",
				},
			},
		},
		ServiceKeywords: []string{
			"ERP", "enterprise resource planning", "student information system",
			"SIS", "financial system",
			"CIO", "CTO", "chief information officer", "chief technology officer",
			"IT director", "technology leadership",
			"cybersecurity", "data breach", "security incident", "ransomware",
			"cyber attack",
			"artificial intelligence", "AI governance", "data analytics",
			"machine learning", "predictive analytics",
			"learning management system", "LMS", "CRM",
			"student success platform",
			"institutional research", "business intelligence",
			"analytics platform", "data visualization",
			"cloud migration",
		},
		TransformationKeywords: []string{
			"digital transformation", "modernization", "strategic",
			"enterprise", "governance", "cybersecurity", "cloud",
			"analytics", "ERP",
		},
		SeniorTitleIndicators: []string{
			"chief", "director", "vice president", "vp", "senior",
		},
		InstitutionConfidenceFloor: 0.6,
		SignalConfidenceFloor:      0.4,
	}
}

// LoadConfig reads keyword tables from a YAML file, falling back to defaults
// for any section left empty.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "scorer: read config %s", path)
	}

	cfg := DefaultConfig()
	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Config{}, eris.Wrapf(err, "scorer: parse config %s", path)
	}

	if len(loaded.TierRules) > 0 {
		cfg.TierRules = loaded.TierRules
	}
	if len(loaded.ServiceKeywords) > 0 {
		cfg.ServiceKeywords = loaded.ServiceKeywords
	}
	if len(loaded.TransformationKeywords) > 0 {
		cfg.TransformationKeywords = loaded.TransformationKeywords
	}
	if len(loaded.SeniorTitleIndicators) > 0 {
		cfg.SeniorTitleIndicators = loaded.SeniorTitleIndicators
	}
	if loaded.InstitutionConfidenceFloor > 0 {
		cfg.InstitutionConfidenceFloor = loaded.InstitutionConfidenceFloor
	}
	if loaded.SignalConfidenceFloor > 0 {
		cfg.SignalConfidenceFloor = loaded.SignalConfidenceFloor
	}

	return cfg, nil
}

// Validate checks that a Config is usable.
func (c Config) Validate() error {
	if len(c.TierRules) == 0 {
		return eris.New("scorer: no tier rules configured")
	}
	for _, rule := range c.TierRules {
		if rule.Tier == model.TierExploratory {
			return eris.New("scorer: Exploratory cannot appear in tier rules")
		}
		if len(rule.Phrases) == 0 {
			return eris.Errorf("scorer: tier %s has no trigger phrases", rule.Tier)
		}
	}
	if len(c.ServiceKeywords) == 0 {
		return eris.New("scorer: no service keywords configured")
	}
	if c.SignalConfidenceFloor > c.InstitutionConfidenceFloor {
		return eris.Errorf("scorer: signal floor %.2f above institution floor %.2f",
			c.SignalConfidenceFloor, c.InstitutionConfidenceFloor)
	}
	return nil
}
