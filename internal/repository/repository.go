// Package repository implements the report data sources on PostgreSQL.
// Each type is a thin passthrough to a handful of queries, written with
// the same pgx idioms the handlers use.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/models"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/reports"
)

// ── Clients ─────────────────────────────────────────────────────

// Clients reads client rows for the report service.
type Clients struct {
	pool *pgxpool.Pool
}

// NewClients creates a client source backed by the given pool.
func NewClients(pool *pgxpool.Pool) *Clients {
	return &Clients{pool: pool}
}

// ListByUser returns all clients owned by a user, newest first.
func (c *Clients) ListByUser(ctx context.Context, userID string) ([]models.Client, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, user_id, nombre, nit, tipo_client, created_at::text
		FROM clients
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		var cl models.Client
		if err := rows.Scan(&cl.ID, &cl.UserID, &cl.Nombre, &cl.NIT, &cl.TipoClient, &cl.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, cl)
	}
	return clients, rows.Err()
}

// ── Calendars ───────────────────────────────────────────────────

// Calendars reads tax calendars and their digit-keyed dates.
type Calendars struct {
	pool *pgxpool.Pool
}

// NewCalendars creates a calendar source backed by the given pool.
func NewCalendars(pool *pgxpool.Pool) *Calendars {
	return &Calendars{pool: pool}
}

// GetByYear returns the calendar for a year, or reports.ErrNotFound.
func (c *Calendars) GetByYear(ctx context.Context, year int) (models.TaxCalendar, error) {
	var cal models.TaxCalendar
	err := c.pool.QueryRow(ctx, `
		SELECT id, year, file_name, file_url, uploaded_by, created_at::text
		FROM tax_calendars
		WHERE year = $1
	`, year).Scan(&cal.ID, &cal.Year, &cal.FileName, &cal.FileURL, &cal.UploadedBy, &cal.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return cal, reports.ErrNotFound
	}
	if err != nil {
		return cal, fmt.Errorf("get calendar by year: %w", err)
	}
	return cal, nil
}

// DatesByDigit returns a calendar's dates for one NIT last digit,
// ordered by due date.
func (c *Calendars) DatesByDigit(ctx context.Context, calendarID string, digit int) ([]models.TaxDate, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, tax_calendar_id, ultimo_digito, tipo_obligacion,
			fecha_vencimiento::text, descripcion, created_at::text
		FROM tax_dates
		WHERE tax_calendar_id = $1 AND ultimo_digito = $2
		ORDER BY fecha_vencimiento ASC
	`, calendarID, digit)
	if err != nil {
		return nil, fmt.Errorf("list tax dates: %w", err)
	}
	defer rows.Close()

	dates := []models.TaxDate{}
	for rows.Next() {
		var d models.TaxDate
		if err := rows.Scan(
			&d.ID, &d.TaxCalendarID, &d.UltimoDigito, &d.TipoObligacion,
			&d.FechaVencimiento, &d.Descripcion, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan tax date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ── Reports ─────────────────────────────────────────────────────

// Reports counts persisted report rows.
type Reports struct {
	pool *pgxpool.Pool
}

// NewReports creates a report source backed by the given pool.
func NewReports(pool *pgxpool.Pool) *Reports {
	return &Reports{pool: pool}
}

// CountByUser returns the all-time report count for a user.
func (r *Reports) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reports WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}

// CountCreatedBetween returns the report count in [from, to).
func (r *Reports) CountCreatedBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM reports
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`, userID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reports in period: %w", err)
	}
	return count, nil
}
