package config

import (
	"context"
	"fmt"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/services/formula"
	"gopkg.in/ini.v1"
)

// ProfileRegistry serves named calc-column sets from an ini file. Every section is a
// profile; its keys, in file order, are column names and its values are formulas:
//
//	[amazon]
//	CPS = Spend / Sales
//	Margin = Sales - Spend
//
// Text after # or ; is a comment. A formula that starts with a backtick must be wrapped
// in triple double quotes.
type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (domain.FormulaProfile, error)
}

type profileRegistry struct {
	cfg *ini.File
}

func NewProfileRegistry(path string) (ProfileRegistry, error) {
	return loadProfiles(path)
}

// ParseProfiles reads profiles from ini source held in memory.
func ParseProfiles(data []byte) (ProfileRegistry, error) {
	return loadProfiles(data)
}

func loadProfiles(source interface{}) (*profileRegistry, error) {
	cfg, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load formula profiles: %w", err)
	}
	return &profileRegistry{cfg: cfg}, nil
}

func (pr *profileRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range pr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (pr *profileRegistry) GetProfile(_ context.Context, name string) (domain.FormulaProfile, error) {
	section, err := pr.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return domain.FormulaProfile{}, fmt.Errorf("profile %s not found", name)
	}

	profile := domain.FormulaProfile{Name: section.Name()}
	for _, key := range section.Keys() {
		col := domain.CalcColumn{Name: key.Name(), Formula: key.String()}
		if err := formula.ValidateCalcColumn(col); err != nil {
			return domain.FormulaProfile{}, fmt.Errorf("profile %s: %w", name, err)
		}
		profile.Columns = append(profile.Columns, col)
	}
	return profile, nil
}
