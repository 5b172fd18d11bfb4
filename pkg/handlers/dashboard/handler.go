package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/de-tools/metric-atlas/pkg/models/api"
	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/services/dashboard"
	"github.com/de-tools/metric-atlas/pkg/services/decoder"
	"github.com/de-tools/metric-atlas/pkg/services/export"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	defaultMaxUploadBytes = 32 << 20
	uploadField           = "file"
)

// Session is the dashboard state the handlers read and mutate.
type Session interface {
	Load(ds domain.Dataset) string
	SetMode(mode domain.PeriodMode) error
	Select(sel dashboard.Selection)
	AddCalcColumn(c domain.CalcColumn) error
	RemoveCalcColumn(name string) bool
	SetMetric(metric string)
	SetWatched(metrics []string)
	SetSearch(query string)
	View(ctx context.Context) (dashboard.View, error)
}

// Metrics records upload outcomes.
type Metrics interface {
	ObserveUpload(format string, rows int, err error)
}

type Handler struct {
	session        Session
	decoders       decoder.Registry
	metrics        Metrics
	validate       *validator.Validate
	maxUploadBytes int64
}

type Config struct {
	Session        Session
	Decoders       decoder.Registry
	Metrics        Metrics
	MaxUploadBytes int64
}

func NewHandler(cfg Config) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if cfg.Decoders == nil {
		cfg.Decoders = decoder.NewDefaultRegistry()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	return &Handler{
		session:        cfg.Session,
		decoders:       cfg.Decoders,
		metrics:        cfg.Metrics,
		validate:       v,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

// UploadDataset decodes a multipart upload and makes it the current dataset.
// A document that fails to decode leaves the session untouched.
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.error(w, r, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		h.error(w, r, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		h.error(w, r, http.StatusBadRequest, fmt.Sprintf("missing %q form file", uploadField))
		return
	}
	defer file.Close()

	format := strings.ToLower(filepath.Ext(header.Filename))
	ds, err := decoder.Decode(ctx, h.decoders, header.Filename, file)
	if h.metrics != nil {
		h.metrics.ObserveUpload(format, len(ds.Rows), err)
	}
	if err != nil {
		logger.Warn().Err(err).Str("file", header.Filename).Msg("failed to decode upload")
		h.error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id := h.session.Load(ds)
	logger.Info().
		Str("dataset", id).
		Str("file", header.Filename).
		Int("rows", len(ds.Rows)).
		Msg("dataset loaded")

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, api.Dataset{
		ID:      id,
		Name:    ds.Name,
		Rows:    len(ds.Rows),
		Columns: ds.Columns,
	})
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, toView(view))
}

func (h *Handler) PutSelection(w http.ResponseWriter, r *http.Request) {
	var req api.SelectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.session.Select(dashboard.Selection{
		Accounts: req.Accounts,
		Years:    req.Years,
		Periods:  req.Periods,
	})
	if req.Metric != nil {
		h.session.SetMetric(*req.Metric)
	}
	if req.Watched != nil {
		h.session.SetWatched(*req.Watched)
	}
	if req.Search != nil {
		h.session.SetSearch(*req.Search)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PutMode(w http.ResponseWriter, r *http.Request) {
	var req api.ModeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.session.SetMode(domain.PeriodMode(req.Mode)); err != nil {
		h.error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddCalcColumn(w http.ResponseWriter, r *http.Request) {
	var req api.CalcColumn
	if !h.decode(w, r, &req) {
		return
	}

	col := domain.CalcColumn{Name: req.Name, Formula: req.Formula}
	if err := h.session.AddCalcColumn(col); err != nil {
		h.error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, req)
}

func (h *Handler) RemoveCalcColumn(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.session.RemoveCalcColumn(name) {
		h.error(w, r, http.StatusNotFound, fmt.Sprintf("calc column %q not found", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export streams the rows currently shown in the table.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view, ok := h.view(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	if err := export.Encode(w, format, view.Columns, view.Rows); err != nil {
		logger.Error().
			Err(err).
			Str("format", string(format)).
			Msg("failed to export rows")
	}
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) (dashboard.View, bool) {
	view, err := h.session.View(r.Context())
	if errors.Is(err, dashboard.ErrNoDataset) {
		h.error(w, r, http.StatusNotFound, err.Error())
		return dashboard.View{}, false
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to compute view")
		h.error(w, r, http.StatusInternalServerError, "failed to compute view")
		return dashboard.View{}, false
	}
	return view, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.error(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}

	err := h.validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		h.error(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
	}
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, api.Error{Error: "validation failed", Details: details})
	return false
}

func (h *Handler) error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, api.Error{Error: msg})
}

func toView(v dashboard.View) api.View {
	calc := make([]api.CalcColumn, len(v.CalcColumns))
	for i, c := range v.CalcColumns {
		calc[i] = api.CalcColumn{Name: c.Name, Formula: c.Formula}
	}

	return api.View{
		Dataset: api.Dataset{
			ID:      v.DatasetID,
			Name:    v.DatasetName,
			Rows:    v.TotalRows,
			Columns: v.Columns,
		},
		Mode: string(v.Mode),
		Selection: api.Selection{
			Accounts: nonNil(v.Selection.Accounts),
			Years:    nonNil(v.Selection.Years),
			Periods:  nonNil(v.Selection.Periods),
		},
		CalcColumns: calc,
		Options: api.Options{
			Accounts:       v.Accounts,
			Years:          v.Years,
			Periods:        v.Periods,
			NumericColumns: nonNil(v.NumericColumns),
		},
		Chart: api.Chart{
			Metric: v.Metric,
			Labels: nonNil(v.Series.Labels),
			Values: nonNilFloats(v.Series.Values),
			Total:  v.Total,
		},
		Watched:  nonNil(v.Watched),
		Verdicts: v.Verdicts,
		Table: api.Table{
			Columns:  v.Columns,
			Rows:     v.Rows,
			Matched:  len(v.Rows),
			Filtered: len(v.Filtered),
			Search:   v.Search,
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilFloats(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}
