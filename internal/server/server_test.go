package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariner-tools/certtrack/constants"
	"github.com/mariner-tools/certtrack/internal/catalog"
	"github.com/mariner-tools/certtrack/internal/entity"
	"github.com/mariner-tools/certtrack/internal/export"
	"github.com/mariner-tools/certtrack/internal/status"
)

const testPassword = "open-sesame"

var serverToday = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

type memAnnotations struct {
	m map[uuid.UUID]entity.Annotation
}

func (r *memAnnotations) Get(_ context.Context, id uuid.UUID) (entity.Annotation, error) {
	if a, ok := r.m[id]; ok {
		return a, nil
	}
	return entity.Annotation{CertificateID: id}, nil
}

func (r *memAnnotations) Upsert(_ context.Context, a entity.Annotation) error {
	r.m[a.CertificateID] = a
	return nil
}

func (r *memAnnotations) All(_ context.Context) (map[uuid.UUID]entity.Annotation, error) {
	return r.m, nil
}

func strptr(s string) *string { return &s }

func newTestServer(t *testing.T) (*httptest.Server, uuid.UUID) {
	t.Helper()

	expiredID := uuid.New()
	cat := &catalog.Catalog{Certificates: []entity.Certificate{
		{
			ID:         expiredID,
			Name:       "Medical Certificate",
			Issuer:     "Seafarers Clinic",
			Category:   constants.General,
			Holder:     "P. Filippakis",
			ExpiryDate: strptr(serverToday.AddDate(0, 0, -1).Format("2006-01-02")),
		},
		{
			ID:       uuid.New(),
			Name:     "Basic Safety Training",
			Issuer:   "Maritime Academy",
			Category: constants.STCW,
			Holder:   "P. Filippakis",
		},
	}}

	engine := status.NewEngine(status.DefaultConfig())
	annotations := &memAnnotations{m: map[uuid.UUID]entity.Annotation{}}
	srv := httptest.NewServer(NewHandler(Deps{
		Catalog:     cat,
		Engine:      engine,
		Annotations: annotations,
		Export:      export.NewService(engine, annotations, nil),
		Password:    testPassword,
		Now:         func() time.Time { return serverToday },
	}))
	t.Cleanup(srv.Close)
	return srv, expiredID
}

func doReq(t *testing.T, method, url string, body []byte, password string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if password != "" {
		req.Header.Set(accessHeader, password)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthz_NoAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAccessAuth_Rejected(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/certificates", nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2 := doReq(t, http.MethodGet, srv.URL+"/certificates", nil, "wrong")
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestListCertificates(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/certificates", nil, testPassword)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var views []CertificateView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 2)
	assert.Equal(t, constants.StatusExpired, views[0].Status)
	assert.Equal(t, constants.StatusValid, views[1].Status)
}

func TestListCertificates_CategoryFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/certificates?category=STCW", nil, testPassword)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var views []CertificateView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "Basic Safety Training", views[0].Name)
}

func TestListCertificates_CategorySynonym(t *testing.T) {
	srv, _ := newTestServer(t)

	// Synonyms and casing canonicalize to the display category.
	resp := doReq(t, http.MethodGet, srv.URL+"/certificates?category=stcw95", nil, testPassword)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var views []CertificateView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, constants.STCW, views[0].Category)
}

func TestListCertificates_UnknownCategory(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/certificates?category=medical", nil, testPassword)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "invalid_request_error", envelope.Error.Type)
	assert.Contains(t, envelope.Error.Message, "STCW")
}

func TestGetCertificate_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/certificates/"+uuid.NewString(), nil, testPassword)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPatchAnnotation(t *testing.T) {
	srv, id := newTestServer(t)

	body := []byte(`{"checked":true,"note":"renewal booked"}`)
	resp := doReq(t, http.MethodPatch, srv.URL+"/certificates/"+id.String()+"/annotation", body, testPassword)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	get := doReq(t, http.MethodGet, srv.URL+"/certificates/"+id.String(), nil, testPassword)
	defer get.Body.Close()
	var view CertificateView
	require.NoError(t, json.NewDecoder(get.Body).Decode(&view))
	assert.True(t, view.Checked)
	assert.False(t, view.Flagged)
	assert.Equal(t, "renewal booked", view.Note)
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/stats", nil, testPassword)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var s status.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Expired)
}

func TestExportCSV(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doReq(t, http.MethodGet, srv.URL+"/export.csv", nil, testPassword)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "certificates.csv")
}
