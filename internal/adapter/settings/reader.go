package settings

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// Compile-time checks: both readers implement domain.SettingsReader.
var (
	_ domain.SettingsReader = (*FileReader)(nil)
	_ domain.SettingsReader = Static{}
)

// document mirrors the YAML layout:
//
//	maxBasicAssignments: 3
//	leadDistribution:
//	  moving:
//	    basic: {leadsPerWeek: 3}
//	    exclusive: {leadsPerWeek: 5}
type document struct {
	MaxBasicAssignments int                                   `yaml:"maxBasicAssignments"`
	LeadDistribution    map[string]map[string]distributionRule `yaml:"leadDistribution"`
}

type distributionRule struct {
	LeadsPerWeek int `yaml:"leadsPerWeek"`
}

// FileReader reads admin settings from a YAML file on every call, so edits
// take effect without a restart.
type FileReader struct {
	path string
}

// NewFileReader returns a reader for the YAML file at path.
func NewFileReader(path string) *FileReader {
	return &FileReader{path: path}
}

// AdminSettings loads and parses the settings file.
func (r *FileReader) AdminSettings(_ context.Context) (domain.AdminSettings, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return domain.AdminSettings{}, fmt.Errorf("reading settings file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML settings document.
func Parse(data []byte) (domain.AdminSettings, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.AdminSettings{}, fmt.Errorf("parsing settings: %w", err)
	}

	out := domain.AdminSettings{MaxBasicAssignments: doc.MaxBasicAssignments}
	if len(doc.LeadDistribution) > 0 {
		out.LeadDistribution = make(map[domain.ServiceType]map[domain.PartnerType]domain.DistributionRule, len(doc.LeadDistribution))
	}
	for service, tiers := range doc.LeadDistribution {
		byTier := make(map[domain.PartnerType]domain.DistributionRule, len(tiers))
		for tier, rule := range tiers {
			pt := domain.PartnerType(tier)
			if !pt.Valid() {
				return domain.AdminSettings{}, fmt.Errorf("parsing settings: unknown partner type %q under %q", tier, service)
			}
			byTier[pt] = domain.DistributionRule{LeadsPerWeek: rule.LeadsPerWeek}
		}
		out.LeadDistribution[domain.ServiceType(service)] = byTier
	}
	return out, nil
}

// Static serves fixed settings. Its zero value means "use the fallbacks".
type Static struct {
	Settings domain.AdminSettings
}

// AdminSettings returns the fixed settings.
func (s Static) AdminSettings(context.Context) (domain.AdminSettings, error) {
	return s.Settings, nil
}
