package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/de-tools/metric-atlas/pkg/models/api"
	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/services/dashboard"
	"github.com/de-tools/metric-atlas/pkg/services/decoder"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adsCSV = `Accounts,Year,Month,Week,Spend,Sales,ACOS
A,2024,January,WK 1,10,100,10
A,2024,February,WK 5,20,150,20
B,2024,January,WK 2,5,50,8
`

func newTestServer(t *testing.T) (*httptest.Server, *Metrics) {
	t.Helper()
	metrics := NewMetrics()
	session, err := dashboard.NewSession(dashboard.Options{Observer: metrics})
	require.NoError(t, err)

	router := ConfigureRouter(Config{
		MaxUploadBytes: 1 << 20,
		Dependencies: Dependencies{
			Session:  session,
			Decoders: decoder.NewDefaultRegistry(),
			Metrics:  metrics,
			Logger:   zerolog.New(zerolog.NewTestWriter(t)),
		},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, metrics
}

func upload(t *testing.T, url, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/api/v1/dataset", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func send(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestWebAPI_ViewBeforeUpload(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/view")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, dashboard.ErrNoDataset.Error(), decodeBody[api.Error](t, resp).Error)
}

func TestWebAPI_DashboardFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := upload(t, srv.URL, "ads.csv", adsCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ds := decodeBody[api.Dataset](t, resp)
	assert.NotEmpty(t, ds.ID)
	assert.Equal(t, "ads.csv", ds.Name)
	assert.Equal(t, 3, ds.Rows)

	steps := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"mode", http.MethodPut, "/api/v1/mode", `{"mode":"month"}`, http.StatusNoContent},
		{"bad mode", http.MethodPut, "/api/v1/mode", `{"mode":"year"}`, http.StatusBadRequest},
		{"selection", http.MethodPut, "/api/v1/selection",
			`{"accounts":["A"],"periods":["January","February"],"metric":"ROI","watched":["ACOS","Sales"]}`,
			http.StatusNoContent},
		{"calc column", http.MethodPost, "/api/v1/calc-columns", `{"name":"ROI","formula":"Sales / Spend"}`, http.StatusCreated},
		{"bad formula", http.MethodPost, "/api/v1/calc-columns", `{"name":"X","formula":"Sales /"}`, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/api/v1/calc-columns", `{"formula":"1"}`, http.StatusBadRequest},
		{"bad json", http.MethodPut, "/api/v1/selection", `{`, http.StatusBadRequest},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			resp := send(t, step.method, srv.URL+step.path, step.body)
			defer resp.Body.Close()
			assert.Equal(t, step.status, resp.StatusCode)
		})
	}

	resp, err := http.Get(srv.URL + "/api/v1/view")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decodeBody[api.View](t, resp)

	assert.Equal(t, "month", view.Mode)
	assert.Equal(t, []string{"A", "B"}, view.Options.Accounts)
	assert.Equal(t, []string{"January", "February"}, view.Options.Periods)
	assert.Equal(t, api.Chart{
		Metric: "ROI",
		Labels: []string{"January", "February"},
		Values: []float64{10, 7.5},
		Total:  17.5,
	}, view.Chart)
	assert.Equal(t, domain.VerdictWorse, view.Verdicts["A"]["February"]["ACOS"])
	assert.Equal(t, domain.VerdictBetter, view.Verdicts["A"]["February"]["Sales"])
	assert.Equal(t, 2, view.Table.Matched)
	assert.Equal(t, "ROI", view.Table.Columns[len(view.Table.Columns)-1])
	assert.Equal(t, []api.CalcColumn{{Name: "ROI", Formula: "Sales / Spend"}}, view.CalcColumns)
}

func TestWebAPI_FailedUploadKeepsDataset(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := upload(t, srv.URL, "ads.csv", adsCSV)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = upload(t, srv.URL, "notes.pdf", "%PDF")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody[api.Error](t, resp).Error, "unsupported file format")

	resp = upload(t, srv.URL, "empty.csv", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/api/v1/view")
	require.NoError(t, err)
	view := decodeBody[api.View](t, resp)
	assert.Equal(t, "ads.csv", view.Dataset.Name)
	assert.Equal(t, 3, view.Dataset.Rows)
}

func TestWebAPI_UploadWithoutFile(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/dataset", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebAPI_Export(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := upload(t, srv.URL, "ads.csv", adsCSV)
	resp.Body.Close()

	resp = send(t, http.MethodPut, srv.URL+"/api/v1/selection", `{"accounts":["B"]}`)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/export")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "export.csv")
	assert.Equal(t,
		"Accounts,Year,Month,Week,Spend,Sales,ACOS\nB,2024,January,WK 2,5,50,8\n",
		readBody(t, resp),
	)

	resp, err = http.Get(srv.URL + "/api/v1/export?format=xlsx")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "PK"))

	resp, err = http.Get(srv.URL + "/api/v1/export?format=pdf")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebAPI_RemoveCalcColumn(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := send(t, http.MethodPost, srv.URL+"/api/v1/calc-columns", `{"name":"Double","formula":"Spend * 2"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = send(t, http.MethodDelete, srv.URL+"/api/v1/calc-columns/Double", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = send(t, http.MethodDelete, srv.URL+"/api/v1/calc-columns/Double", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebAPI_HealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := upload(t, srv.URL, "ads.csv", adsCSV)
	resp.Body.Close()
	resp = send(t, http.MethodPost, srv.URL+"/api/v1/calc-columns", `{"name":"Bad","formula":"Spend / 0"}`)
	resp.Body.Close()
	resp, err := http.Get(srv.URL + "/api/v1/view")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "ok"}, decodeBody[map[string]string](t, resp))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `metric_atlas_uploads_total{format=".csv",result="ok"} 1`)
	assert.Contains(t, body, "metric_atlas_formula_failures_total 3")
	assert.Contains(t, body, `metric_atlas_http_requests_total{method="GET",route="/api/v1/view",status="200"} 1`)
}
