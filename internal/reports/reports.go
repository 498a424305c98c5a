// Package reports computes dashboards and deadline reports for an
// accountant's client list. It depends only on narrow data-source
// interfaces so the aggregation logic can be tested against in-memory
// fakes, with the current time injected through the clock.
package reports

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/deadline"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/models"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/taxid"
)

// ErrNoCalendar is returned by the itemized reporters when no tax calendar
// exists for the requested year. The dashboard treats the same condition
// as zero deadline counts instead.
var ErrNoCalendar = errors.New("no tax calendar for the requested year")

// ClientSource provides the client list of a user.
type ClientSource interface {
	ListByUser(ctx context.Context, userID string) ([]models.Client, error)
}

// CalendarSource provides tax calendars and their digit-keyed dates.
type CalendarSource interface {
	GetByYear(ctx context.Context, year int) (models.TaxCalendar, error)
	DatesByDigit(ctx context.Context, calendarID string, digit int) ([]models.TaxDate, error)
}

// ReportSource provides persisted-report counts.
type ReportSource interface {
	CountByUser(ctx context.Context, userID string) (int, error)
	CountCreatedBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// ErrNotFound is the sentinel a CalendarSource returns (or wraps) when a
// row does not exist, as opposed to a datastore failure.
var ErrNotFound = errors.New("not found")

// Service computes the derived report shapes.
type Service struct {
	clients   ClientSource
	calendars CalendarSource
	reports   ReportSource
	now       func() time.Time
}

// New creates a Service using the wall clock.
func New(clients ClientSource, calendars CalendarSource, reports ReportSource) *Service {
	return NewWithClock(clients, calendars, reports, time.Now)
}

// NewWithClock creates a Service with an explicit clock, for tests.
func NewWithClock(clients ClientSource, calendars CalendarSource, reports ReportSource, now func() time.Time) *Service {
	return &Service{clients: clients, calendars: calendars, reports: reports, now: now}
}

// Now exposes the service clock. Handlers derive request defaults, like
// the dashboard year, from this rather than time.Now so everything in a
// request observes the same time source.
func (s *Service) Now() time.Time {
	return s.now()
}

// dueDateLayout is the wire format of tax date due dates.
const dueDateLayout = "2006-01-02"

// ── Dashboard ───────────────────────────────────────────────────

// Dashboard computes the summary counters for a user.
// A missing calendar for the year is not an error: the deadline counters
// simply stay at zero. Any datastore failure aborts the whole computation.
func (s *Service) Dashboard(ctx context.Context, userID string, year int) (models.DashboardStats, error) {
	var stats models.DashboardStats

	clients, err := s.clients.ListByUser(ctx, userID)
	if err != nil {
		return stats, err
	}
	stats.TotalClients = len(clients)

	stats.TotalReports, err = s.reports.CountByUser(ctx, userID)
	if err != nil {
		return stats, err
	}

	from, to := monthBounds(s.now())
	stats.ReportsThisMonth, err = s.reports.CountCreatedBetween(ctx, userID, from, to)
	if err != nil {
		return stats, err
	}

	calendar, err := s.calendars.GetByYear(ctx, year)
	if errors.Is(err, ErrNotFound) {
		return stats, nil
	}
	if err != nil {
		return stats, err
	}

	today := s.now()
	for _, client := range clients {
		digit, ok := clientDigit(client)
		if !ok {
			continue
		}
		dates, err := s.calendars.DatesByDigit(ctx, calendar.ID, digit)
		if err != nil {
			return stats, err
		}
		for _, d := range dates {
			due, err := time.Parse(dueDateLayout, d.FechaVencimiento)
			if err != nil {
				continue
			}
			switch status, _ := deadline.Classify(today, due, deadline.DefaultWindowDays); status {
			case deadline.StatusOverdue:
				stats.OverdueDeadlines++
			case deadline.StatusUpcoming:
				stats.UpcomingDeadlines++
			}
		}
	}

	return stats, nil
}

// ── Tax dates report ────────────────────────────────────────────

// TaxDatesResult wraps the itemized per-client report. NoClients
// distinguishes "the user has no clients at all" from "no client had a
// date inside the window".
type TaxDatesResult struct {
	Year      int
	DaysAhead int
	NoClients bool
	Reports   []models.TaxDatesReport
}

// TaxDates itemizes each client's upcoming and overdue obligations for a
// year. Clients without a usable NIT are skipped; clients with no date in
// either bucket are omitted. A missing calendar is ErrNoCalendar.
func (s *Service) TaxDates(ctx context.Context, userID string, year, windowDays int) (TaxDatesResult, error) {
	result := TaxDatesResult{Year: year, DaysAhead: windowDays, Reports: []models.TaxDatesReport{}}

	clients, err := s.clients.ListByUser(ctx, userID)
	if err != nil {
		return result, err
	}
	if len(clients) == 0 {
		result.NoClients = true
		return result, nil
	}

	calendar, err := s.calendars.GetByYear(ctx, year)
	if errors.Is(err, ErrNotFound) {
		return result, ErrNoCalendar
	}
	if err != nil {
		return result, err
	}

	today := s.now()
	for _, client := range clients {
		digit, ok := clientDigit(client)
		if !ok {
			continue
		}
		dates, err := s.calendars.DatesByDigit(ctx, calendar.ID, digit)
		if err != nil {
			return result, err
		}

		upcoming := []models.UpcomingDate{}
		overdue := []models.OverdueDate{}
		for _, d := range dates {
			due, err := time.Parse(dueDateLayout, d.FechaVencimiento)
			if err != nil {
				continue
			}
			status, days := deadline.Classify(today, due, windowDays)
			switch status {
			case deadline.StatusOverdue:
				overdue = append(overdue, models.OverdueDate{
					TipoObligacion:   d.TipoObligacion,
					FechaVencimiento: d.FechaVencimiento,
					Descripcion:      derefOrEmpty(d.Descripcion),
					DaysOverdue:      days,
				})
			case deadline.StatusUpcoming:
				upcoming = append(upcoming, models.UpcomingDate{
					TipoObligacion:   d.TipoObligacion,
					FechaVencimiento: d.FechaVencimiento,
					Descripcion:      derefOrEmpty(d.Descripcion),
					DaysUntilDue:     days,
				})
			}
		}

		if len(upcoming) == 0 && len(overdue) == 0 {
			continue
		}
		result.Reports = append(result.Reports, models.TaxDatesReport{
			ClientID:      client.ID,
			ClientName:    client.Nombre,
			NIT:           *client.NIT,
			UltimoDigito:  digit,
			UpcomingDates: upcoming,
			OverdueDates:  overdue,
		})
	}

	return result, nil
}

// ── Overdue report ──────────────────────────────────────────────

// OverdueResult wraps the flat overdue listing.
type OverdueResult struct {
	Year      int
	NoClients bool
	Items     []models.OverdueItem
}

// Overdue lists every strictly overdue obligation across all of the
// user's clients, sorted by days overdue, most overdue first.
func (s *Service) Overdue(ctx context.Context, userID string, year int) (OverdueResult, error) {
	result := OverdueResult{Year: year, Items: []models.OverdueItem{}}

	clients, err := s.clients.ListByUser(ctx, userID)
	if err != nil {
		return result, err
	}
	if len(clients) == 0 {
		result.NoClients = true
		return result, nil
	}

	calendar, err := s.calendars.GetByYear(ctx, year)
	if errors.Is(err, ErrNotFound) {
		return result, ErrNoCalendar
	}
	if err != nil {
		return result, err
	}

	today := s.now()
	for _, client := range clients {
		digit, ok := clientDigit(client)
		if !ok {
			continue
		}
		dates, err := s.calendars.DatesByDigit(ctx, calendar.ID, digit)
		if err != nil {
			return result, err
		}
		for _, d := range dates {
			due, err := time.Parse(dueDateLayout, d.FechaVencimiento)
			if err != nil {
				continue
			}
			status, days := deadline.Classify(today, due, deadline.DefaultWindowDays)
			if status != deadline.StatusOverdue {
				continue
			}
			result.Items = append(result.Items, models.OverdueItem{
				ClientID:         client.ID,
				ClientName:       client.Nombre,
				NIT:              *client.NIT,
				TipoObligacion:   d.TipoObligacion,
				FechaVencimiento: d.FechaVencimiento,
				Descripcion:      derefOrEmpty(d.Descripcion),
				DaysOverdue:      days,
			})
		}
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].DaysOverdue > result.Items[j].DaysOverdue
	})

	return result, nil
}

// ── Helpers ─────────────────────────────────────────────────────

// clientDigit extracts the NIT last digit for a client.
// Clients with a missing, empty, or digit-less NIT are skipped from
// batch reporting rather than failing the whole computation.
func clientDigit(c models.Client) (int, bool) {
	if c.NIT == nil || *c.NIT == "" {
		return 0, false
	}
	digit, err := taxid.LastDigit(*c.NIT)
	if err != nil {
		return 0, false
	}
	return digit, true
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// monthBounds returns [first of month, first of next month) around t.
func monthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, 0)
}
