package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/models"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/reports"
)

// In-memory report sources. The computed endpoints never touch the
// database handle directly, so the handler is built with a nil db.

type stubClients struct {
	clients []models.Client
	err     error
}

func (s *stubClients) ListByUser(_ context.Context, _ string) ([]models.Client, error) {
	return s.clients, s.err
}

type stubCalendars struct {
	calendar models.TaxCalendar
	calErr   error
	dates    map[int][]models.TaxDate

	// years requested through GetByYear, in call order
	years []int
}

func (s *stubCalendars) GetByYear(_ context.Context, year int) (models.TaxCalendar, error) {
	s.years = append(s.years, year)
	return s.calendar, s.calErr
}

func (s *stubCalendars) DatesByDigit(_ context.Context, _ string, digit int) ([]models.TaxDate, error) {
	return s.dates[digit], nil
}

type stubReports struct {
	total     int
	thisMonth int
}

func (s *stubReports) CountByUser(_ context.Context, _ string) (int, error) {
	return s.total, nil
}

func (s *stubReports) CountCreatedBetween(_ context.Context, _ string, _, _ time.Time) (int, error) {
	return s.thisMonth, nil
}

func reportRouter(h *ReportHandler) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/reports/dashboard/{user_id}", h.Dashboard)
	r.Get("/api/reports/user/{user_id}/tax-dates", h.TaxDates)
	r.Get("/api/reports/user/{user_id}/overdue", h.Overdue)
	return r
}

func newTestHandler(c reports.ClientSource, cal reports.CalendarSource, rs reports.ReportSource) *ReportHandler {
	now := func() time.Time {
		return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
	return NewReportHandler(nil, reports.NewWithClock(c, cal, rs, now))
}

func doGet(t *testing.T, router chi.Router, url string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func nitPtr(s string) *string { return &s }

func TestTaxDatesEndpointNoClients(t *testing.T) {
	h := newTestHandler(&stubClients{}, &stubCalendars{}, &stubReports{})

	rec, body := doGet(t, reportRouter(h), "/api/reports/user/u1/tax-dates?year=2025")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No hay clientes registrados", body["message"])
	assert.Empty(t, body["reports"])
}

func TestTaxDatesEndpointNoCalendar(t *testing.T) {
	clients := &stubClients{clients: []models.Client{
		{ID: "c1", Nombre: "Acme SAS", NIT: nitPtr("900123457")},
	}}
	h := newTestHandler(clients, &stubCalendars{calErr: reports.ErrNotFound}, &stubReports{})

	rec, body := doGet(t, reportRouter(h), "/api/reports/user/u1/tax-dates?year=2025")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body["error"], "2025")
}

func TestTaxDatesEndpointResponseShape(t *testing.T) {
	clients := &stubClients{clients: []models.Client{
		{ID: "c1", Nombre: "Acme SAS", NIT: nitPtr("900123457")},
	}}
	calendars := &stubCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		dates: map[int][]models.TaxDate{
			7: {{
				TaxCalendarID:    "cal-1",
				TipoObligacion:   "IVA",
				FechaVencimiento: "2025-06-20",
			}},
		},
	}
	h := newTestHandler(clients, calendars, &stubReports{})

	rec, body := doGet(t, reportRouter(h), "/api/reports/user/u1/tax-dates?year=2025&days=10")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2025, body["year"])
	assert.EqualValues(t, 10, body["days_ahead"])
	assert.EqualValues(t, 1, body["total_clients"])

	reportList, ok := body["reports"].([]interface{})
	require.True(t, ok)
	require.Len(t, reportList, 1)
	first := reportList[0].(map[string]interface{})
	assert.Equal(t, "Acme SAS", first["client_name"])
	assert.EqualValues(t, 7, first["ultimo_digito"])
}

func TestOverdueEndpointResponseShape(t *testing.T) {
	clients := &stubClients{clients: []models.Client{
		{ID: "c1", Nombre: "Acme SAS", NIT: nitPtr("900123457")},
	}}
	calendars := &stubCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		dates: map[int][]models.TaxDate{
			7: {
				{TipoObligacion: "Renta", FechaVencimiento: "2025-05-01"},
				{TipoObligacion: "IVA", FechaVencimiento: "2025-06-10"},
			},
		},
	}
	h := newTestHandler(clients, calendars, &stubReports{})

	rec, body := doGet(t, reportRouter(h), "/api/reports/user/u1/overdue?year=2025")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2025, body["year"])
	assert.EqualValues(t, 2, body["total_overdue"])

	items, ok := body["overdue_items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 2)

	// Most overdue first.
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Renta", first["tipo_obligacion"])
	assert.EqualValues(t, 45, first["days_overdue"])
}

func TestOverdueEndpointNoClients(t *testing.T) {
	h := newTestHandler(&stubClients{}, &stubCalendars{}, &stubReports{})

	rec, body := doGet(t, reportRouter(h), "/api/reports/user/u1/overdue?year=2025")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No hay clientes registrados", body["message"])
	assert.Empty(t, body["overdue_items"])
}

func TestDashboardEndpoint(t *testing.T) {
	clients := &stubClients{clients: []models.Client{
		{ID: "c1", Nombre: "Acme SAS", NIT: nitPtr("900123457")},
		{ID: "c2", Nombre: "Sin NIT"},
	}}
	calendars := &stubCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		dates: map[int][]models.TaxDate{
			7: {
				{TipoObligacion: "IVA", FechaVencimiento: "2025-06-20"},
				{TipoObligacion: "Renta", FechaVencimiento: "2025-06-01"},
			},
		},
	}
	h := newTestHandler(clients, calendars, &stubReports{total: 8, thisMonth: 2})

	rec, body := doGet(t, reportRouter(h), "/api/reports/dashboard/u1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["total_clients"])
	assert.EqualValues(t, 8, body["total_reports"])
	assert.EqualValues(t, 2, body["reports_this_month"])
	assert.EqualValues(t, 1, body["upcoming_deadlines"])
	assert.EqualValues(t, 1, body["overdue_deadlines"])

	// The year comes from the service clock, not the wall clock.
	assert.Equal(t, []int{2025}, calendars.years)
}
