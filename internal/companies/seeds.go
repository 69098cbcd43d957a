package companies

import (
	_ "embed"

	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed seeds.yaml
var defaultSeeds []byte

type seedFile struct {
	Companies []struct {
		Name    string   `yaml:"name"`
		English string   `yaml:"english"`
		Aliases []string `yaml:"aliases"`
		Domains []string `yaml:"domains"`
	} `yaml:"companies"`
}

// DefaultSeeds returns the built-in identities of well known IT companies.
func DefaultSeeds() []entities.CompanyIdentity {
	seeds, err := ParseSeeds(defaultSeeds)
	if err != nil {
		panic(err)
	}
	return seeds
}

func ParseSeeds(data []byte) ([]entities.CompanyIdentity, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse company seeds")
	}

	seeds := make([]entities.CompanyIdentity, 0, len(file.Companies))
	for i, company := range file.Companies {
		if company.Name == "" {
			return nil, errors.Errorf("company seed #%d has no name", i)
		}

		identity := entities.CompanyIdentity{
			ID:          CompanyID(company.Name),
			Name:        company.Name,
			EnglishName: company.English,
		}
		identity.AddAlias(company.Name)
		if company.English != "" {
			identity.AddAlias(company.English)
		}
		for _, alias := range company.Aliases {
			identity.AddAlias(alias)
		}
		for _, domain := range company.Domains {
			identity.AddDomain(NormalizeDomain(domain))
		}
		seeds = append(seeds, identity)
	}
	return seeds, nil
}
