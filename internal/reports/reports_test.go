package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/models"
)

// ── Fakes ───────────────────────────────────────────────────────

type fakeClients struct {
	clients []models.Client
	err     error
}

func (f *fakeClients) ListByUser(_ context.Context, _ string) ([]models.Client, error) {
	return f.clients, f.err
}

type fakeCalendars struct {
	calendar models.TaxCalendar
	calErr   error

	dates    map[int][]models.TaxDate
	datesErr error

	// digits requested through DatesByDigit, in call order
	requested []int
}

func (f *fakeCalendars) GetByYear(_ context.Context, _ int) (models.TaxCalendar, error) {
	return f.calendar, f.calErr
}

func (f *fakeCalendars) DatesByDigit(_ context.Context, _ string, digit int) ([]models.TaxDate, error) {
	f.requested = append(f.requested, digit)
	if f.datesErr != nil {
		return nil, f.datesErr
	}
	return f.dates[digit], nil
}

type fakeReports struct {
	total     int
	thisMonth int
	err       error
}

func (f *fakeReports) CountByUser(_ context.Context, _ string) (int, error) {
	return f.total, f.err
}

func (f *fakeReports) CountCreatedBetween(_ context.Context, _ string, _, _ time.Time) (int, error) {
	return f.thisMonth, f.err
}

// ── Helpers ─────────────────────────────────────────────────────

func strPtr(s string) *string { return &s }

func client(id, name, nit string) models.Client {
	c := models.Client{ID: id, UserID: "u1", Nombre: name}
	if nit != "" {
		c.NIT = &nit
	}
	return c
}

func taxDate(tipo, due string) models.TaxDate {
	return models.TaxDate{
		TaxCalendarID:    "cal-1",
		TipoObligacion:   tipo,
		FechaVencimiento: due,
		Descripcion:      strPtr("desc " + tipo),
	}
}

// fixedNow is the injected clock for every test: 2025-06-15 at noon.
func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func newService(c ClientSource, cal CalendarSource, r ReportSource) *Service {
	return NewWithClock(c, cal, r, fixedNow)
}

// ── Dashboard ───────────────────────────────────────────────────

func TestDashboardCounts(t *testing.T) {
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),   // digit 7
		client("c2", "Sin NIT", ""),             // skipped
		client("c3", "Letras", "sin-numero"),    // skipped, no digits
	}}
	calendars := &fakeCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		dates: map[int][]models.TaxDate{
			7: {
				taxDate("IVA", "2025-06-20"),     // 5 days ahead: upcoming
				taxDate("Renta", "2025-06-01"),   // 14 days ago: overdue
				taxDate("ICA", "2025-08-01"),     // beyond window: ignored
				taxDate("Retefuente", "no-date"), // unparsable, skipped
			},
		},
	}
	reportCounts := &fakeReports{total: 12, thisMonth: 3}

	svc := newService(clients, calendars, reportCounts)
	stats, err := svc.Dashboard(context.Background(), "u1", 2025)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalClients)
	assert.Equal(t, 12, stats.TotalReports)
	assert.Equal(t, 3, stats.ReportsThisMonth)
	assert.Equal(t, 1, stats.UpcomingDeadlines)
	assert.Equal(t, 1, stats.OverdueDeadlines)

	// Only the client with a usable NIT triggers a date lookup.
	assert.Equal(t, []int{7}, calendars.requested)
}

func TestDashboardMissingCalendarZeroCounts(t *testing.T) {
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),
	}}
	calendars := &fakeCalendars{calErr: ErrNotFound}

	svc := newService(clients, calendars, &fakeReports{total: 4, thisMonth: 1})
	stats, err := svc.Dashboard(context.Background(), "u1", 2025)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalClients)
	assert.Equal(t, 4, stats.TotalReports)
	assert.Equal(t, 0, stats.UpcomingDeadlines)
	assert.Equal(t, 0, stats.OverdueDeadlines)
	assert.Empty(t, calendars.requested)
}

func TestDashboardDatastoreErrorAborts(t *testing.T) {
	boom := errors.New("connection reset")
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),
	}}
	calendars := &fakeCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		datesErr: boom,
	}

	svc := newService(clients, calendars, &fakeReports{})
	_, err := svc.Dashboard(context.Background(), "u1", 2025)

	assert.ErrorIs(t, err, boom)
}

// ── Tax dates report ────────────────────────────────────────────

func TestTaxDatesNoClients(t *testing.T) {
	svc := newService(&fakeClients{}, &fakeCalendars{}, &fakeReports{})
	result, err := svc.TaxDates(context.Background(), "u1", 2025, 30)

	require.NoError(t, err)
	assert.True(t, result.NoClients)
	assert.Empty(t, result.Reports)
}

func TestTaxDatesMissingCalendar(t *testing.T) {
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),
	}}
	svc := newService(clients, &fakeCalendars{calErr: ErrNotFound}, &fakeReports{})

	_, err := svc.TaxDates(context.Background(), "u1", 2025, 30)
	assert.ErrorIs(t, err, ErrNoCalendar)
}

func TestTaxDatesItemization(t *testing.T) {
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),  // digit 7: one of each bucket
		client("c2", "Far Out SA", "800100203"), // digit 3: only ignored dates
		client("c3", "Sin NIT", ""),            // skipped entirely
	}}
	calendars := &fakeCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		dates: map[int][]models.TaxDate{
			7: {
				taxDate("IVA", "2025-06-30"),   // 15 days ahead
				taxDate("Renta", "2025-06-10"), // 5 days overdue
			},
			3: {
				taxDate("ICA", "2025-12-01"), // far beyond the window
			},
		},
	}

	svc := newService(clients, calendars, &fakeReports{})
	result, err := svc.TaxDates(context.Background(), "u1", 2025, 30)

	require.NoError(t, err)
	assert.False(t, result.NoClients)
	assert.Equal(t, 2025, result.Year)
	assert.Equal(t, 30, result.DaysAhead)

	// c2 had no date in either bucket and is omitted; c3 was skipped.
	require.Len(t, result.Reports, 1)
	rep := result.Reports[0]
	assert.Equal(t, "c1", rep.ClientID)
	assert.Equal(t, "Acme SAS", rep.ClientName)
	assert.Equal(t, "900123457", rep.NIT)
	assert.Equal(t, 7, rep.UltimoDigito)

	require.Len(t, rep.UpcomingDates, 1)
	assert.Equal(t, "IVA", rep.UpcomingDates[0].TipoObligacion)
	assert.Equal(t, 15, rep.UpcomingDates[0].DaysUntilDue)

	require.Len(t, rep.OverdueDates, 1)
	assert.Equal(t, "Renta", rep.OverdueDates[0].TipoObligacion)
	assert.Equal(t, 5, rep.OverdueDates[0].DaysOverdue)
}

func TestTaxDatesDueTodayIsUpcoming(t *testing.T) {
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),
	}}
	calendars := &fakeCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		dates: map[int][]models.TaxDate{
			7: {taxDate("IVA", "2025-06-15")}, // due on the fixed clock's day
		},
	}

	svc := newService(clients, calendars, &fakeReports{})
	result, err := svc.TaxDates(context.Background(), "u1", 2025, 30)

	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	require.Len(t, result.Reports[0].UpcomingDates, 1)
	assert.Equal(t, 0, result.Reports[0].UpcomingDates[0].DaysUntilDue)
	assert.Empty(t, result.Reports[0].OverdueDates)
}

func TestTaxDatesLocalZoneClockKeepsDateOnlyWindow(t *testing.T) {
	// Clock fixed to noon in UTC-5 while due dates parse as UTC; the
	// window boundary must not shift by a day.
	bogota := time.FixedZone("COT", -5*60*60)
	localNoon := func() time.Time {
		return time.Date(2025, time.June, 15, 12, 0, 0, 0, bogota)
	}

	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),
	}}
	calendars := &fakeCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		dates: map[int][]models.TaxDate{
			7: {
				taxDate("IVA", "2025-07-15"), // exactly 30 days out
				taxDate("ICA", "2025-07-16"), // 31 days out, ignored
			},
		},
	}

	svc := NewWithClock(clients, calendars, &fakeReports{}, localNoon)
	result, err := svc.TaxDates(context.Background(), "u1", 2025, 30)

	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	require.Len(t, result.Reports[0].UpcomingDates, 1)
	assert.Equal(t, "IVA", result.Reports[0].UpcomingDates[0].TipoObligacion)
	assert.Equal(t, 30, result.Reports[0].UpcomingDates[0].DaysUntilDue)
}

// ── Overdue report ──────────────────────────────────────────────

func TestOverdueNoClients(t *testing.T) {
	svc := newService(&fakeClients{}, &fakeCalendars{}, &fakeReports{})
	result, err := svc.Overdue(context.Background(), "u1", 2025)

	require.NoError(t, err)
	assert.True(t, result.NoClients)
	assert.Empty(t, result.Items)
}

func TestOverdueMissingCalendar(t *testing.T) {
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),
	}}
	svc := newService(clients, &fakeCalendars{calErr: ErrNotFound}, &fakeReports{})

	_, err := svc.Overdue(context.Background(), "u1", 2025)
	assert.ErrorIs(t, err, ErrNoCalendar)
}

func TestOverdueSortedMostOverdueFirst(t *testing.T) {
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),  // digit 7
		client("c2", "Bravo Ltda", "800100203"), // digit 3
	}}
	calendars := &fakeCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		dates: map[int][]models.TaxDate{
			7: {
				taxDate("IVA", "2025-06-10"),   // 5 days overdue
				taxDate("Renta", "2025-05-01"), // 45 days overdue
				taxDate("ICA", "2025-07-01"),   // not overdue, excluded
			},
			3: {
				taxDate("Retefuente", "2025-05-31"), // 15 days overdue
			},
		},
	}

	svc := newService(clients, calendars, &fakeReports{})
	result, err := svc.Overdue(context.Background(), "u1", 2025)

	require.NoError(t, err)
	assert.False(t, result.NoClients)
	require.Len(t, result.Items, 3)

	assert.Equal(t, []int{45, 15, 5}, []int{
		result.Items[0].DaysOverdue,
		result.Items[1].DaysOverdue,
		result.Items[2].DaysOverdue,
	})
	assert.Equal(t, "Renta", result.Items[0].TipoObligacion)
	assert.Equal(t, "c1", result.Items[0].ClientID)
	assert.Equal(t, "Retefuente", result.Items[1].TipoObligacion)
	assert.Equal(t, "c2", result.Items[1].ClientID)
}

func TestOverdueTiesKeepClientOrder(t *testing.T) {
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Primero", "900123457"),
		client("c2", "Segundo", "800100203"),
	}}
	calendars := &fakeCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
		dates: map[int][]models.TaxDate{
			7: {taxDate("IVA", "2025-06-05")},
			3: {taxDate("ICA", "2025-06-05")}, // same days overdue
		},
	}

	svc := newService(clients, calendars, &fakeReports{})
	result, err := svc.Overdue(context.Background(), "u1", 2025)

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "c1", result.Items[0].ClientID)
	assert.Equal(t, "c2", result.Items[1].ClientID)
}

func TestOverdueOnlyLooksUpClientDigits(t *testing.T) {
	clients := &fakeClients{clients: []models.Client{
		client("c1", "Acme SAS", "900123457"),
		client("c2", "Sin NIT", ""),
	}}
	calendars := &fakeCalendars{
		calendar: models.TaxCalendar{ID: "cal-1", Year: 2025},
	}

	svc := newService(clients, calendars, &fakeReports{})
	_, err := svc.Overdue(context.Background(), "u1", 2025)

	require.NoError(t, err)
	assert.Equal(t, []int{7}, calendars.requested)
}
