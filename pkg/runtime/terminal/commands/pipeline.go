package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/services/config"
	"github.com/de-tools/metric-atlas/pkg/services/dashboard"
	"github.com/de-tools/metric-atlas/pkg/services/decoder"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Pipeline holds the flags shared by every analysis command and turns a spreadsheet
// into a dashboard view.
type Pipeline struct {
	decoders decoder.Registry

	configPath   string
	profilesPath string
	profile      string
	mode         string
	accounts     []string
	years        []string
	periods      []string
	calc         []string
	metric       string
	watched      []string
	search       string
}

func NewPipeline(decoders decoder.Registry) *Pipeline {
	if decoders == nil {
		decoders = decoder.NewDefaultRegistry()
	}
	return &Pipeline{decoders: decoders}
}

// BindFlags registers the shared flags as persistent flags of cmd.
func (p *Pipeline) BindFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVar(&p.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&p.profilesPath, "profiles", "", "Path to an ini file of formula profiles")
	fs.StringVar(&p.profile, "profile", "", "Formula profile to apply")
	fs.StringVar(&p.mode, "mode", "", "Period mode: week or month")
	fs.StringSliceVar(&p.accounts, "accounts", nil, "Accounts to keep (comma separated)")
	fs.StringSliceVar(&p.years, "years", nil, "Years to keep (comma separated)")
	fs.StringSliceVar(&p.periods, "periods", nil, "Weeks or months to keep (comma separated)")
	fs.StringArrayVar(&p.calc, "calc", nil, "Calculated column as name=formula (repeatable)")
	fs.StringVar(&p.metric, "metric", "", "Metric to chart and summarize")
	fs.StringSliceVar(&p.watched, "watched", nil, "Metrics to compare (default: all numeric columns)")
	fs.StringVar(&p.search, "search", "", "Only show table rows containing this text")
}

// Run decodes path and derives the view described by the flags of cmd.
func (p *Pipeline) Run(cmd *cobra.Command, path string) (dashboard.View, error) {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	cfg, err := config.LoadConfig(p.configPath)
	if err != nil {
		return dashboard.View{}, err
	}

	calc, err := p.calcColumns(cmd, cfg)
	if err != nil {
		return dashboard.View{}, err
	}

	opts := dashboard.Options{
		Mode:        cfg.Dashboard.PeriodMode(),
		Metric:      cfg.Dashboard.Metric,
		Watched:     cfg.Dashboard.Watched,
		CalcColumns: calc,
	}
	if p.mode != "" {
		mode, err := domain.ParsePeriodMode(p.mode)
		if err != nil {
			return dashboard.View{}, err
		}
		opts.Mode = mode
	}
	if p.metric != "" {
		opts.Metric = p.metric
	}
	if cmd.Flags().Changed("watched") {
		opts.Watched = p.watched
	}

	session, err := dashboard.NewSession(opts)
	if err != nil {
		return dashboard.View{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return dashboard.View{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := decoder.Decode(ctx, p.decoders, path, f)
	if err != nil {
		return dashboard.View{}, err
	}
	session.Load(ds)
	session.Select(dashboard.Selection{Accounts: p.accounts, Years: p.years, Periods: p.periods})
	session.SetSearch(p.search)

	logger.Debug().
		Str("file", path).
		Int("rows", len(ds.Rows)).
		Int("calc_columns", len(calc)).
		Msg("running pipeline")

	return session.View(ctx)
}

func (p *Pipeline) calcColumns(cmd *cobra.Command, cfg *config.Config) ([]domain.CalcColumn, error) {
	var out []domain.CalcColumn

	profilesPath := cfg.Dashboard.ProfilesPath
	if p.profilesPath != "" {
		profilesPath = p.profilesPath
	}
	profile := cfg.Dashboard.Profile
	if p.profile != "" {
		profile = p.profile
	}
	if profile != "" {
		if profilesPath == "" {
			return nil, fmt.Errorf("profile %q requires --profiles", profile)
		}
		reg, err := config.NewProfileRegistry(profilesPath)
		if err != nil {
			return nil, err
		}
		fp, err := reg.GetProfile(cmd.Context(), profile)
		if err != nil {
			return nil, err
		}
		out = append(out, fp.Columns...)
	}

	out = append(out, cfg.Dashboard.CalcColumns...)

	for _, spec := range p.calc {
		col, err := ParseCalcFlag(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// ParseCalcFlag splits "name=formula" at the first equals sign.
func ParseCalcFlag(s string) (domain.CalcColumn, error) {
	name, formula, ok := strings.Cut(s, "=")
	if !ok {
		return domain.CalcColumn{}, fmt.Errorf("calc column %q must be name=formula", s)
	}
	return domain.CalcColumn{Name: strings.TrimSpace(name), Formula: strings.TrimSpace(formula)}, nil
}
