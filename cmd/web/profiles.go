package main

import (
	"context"
	"fmt"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/services/config"
	"github.com/rs/zerolog"
)

// startupCalcColumns returns the configured profile's columns followed by the inline ones.
func startupCalcColumns(ctx context.Context, cfg *config.Config) ([]domain.CalcColumn, error) {
	logger := zerolog.Ctx(ctx)
	var calc []domain.CalcColumn

	if cfg.Dashboard.ProfilesPath != "" {
		registry, err := config.NewProfileRegistry(cfg.Dashboard.ProfilesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load formula profiles: %w", err)
		}

		logger.Info().Msgf("Formula profiles found at `%s` successfully loaded.", cfg.Dashboard.ProfilesPath)
		profiles, err := registry.GetProfiles(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to list formula profiles")
		}
		for _, name := range profiles {
			logger.Info().Msgf("Profile: `%s`", name)
		}

		if cfg.Dashboard.Profile != "" {
			profile, err := registry.GetProfile(ctx, cfg.Dashboard.Profile)
			if err != nil {
				return nil, fmt.Errorf("failed to load profile %q: %w", cfg.Dashboard.Profile, err)
			}
			logger.Info().Msgf("Using profile %s", profile)
			calc = append(calc, profile.Columns...)
		}
	}

	return append(calc, cfg.Dashboard.CalcColumns...), nil
}
