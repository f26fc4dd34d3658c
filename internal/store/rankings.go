package store

import (
	"context"
	"time"

	"cooperativa-reports/internal/models"
)

// TopMembersBySales ranks members by sale income within the window. Members
// with no sales in the window are excluded. Ties break by ascending member
// id so repeated calls with unchanged data return the same order.
func (s *Store) TopMembersBySales(ctx context.Context, start, end time.Time, n int) ([]models.RankingEntry, error) {
	var entries []models.RankingEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT so.id AS entity_id, so.nombre AS label,
		       COALESCE(SUM(v.total), 0) AS measure,
		       COUNT(v.id) AS secondary_measure
		FROM socios so
		JOIN ventas v ON v.socio_id = so.id
		WHERE v.fecha_venta >= $1 AND v.fecha_venta < $2
		AND (v.estado IS NULL OR v.estado IN ('pendiente', 'pagada', 'entregada'))
		GROUP BY so.id, so.nombre
		ORDER BY measure DESC, so.id ASC
		LIMIT $3`, start, end, n)
	return entries, err
}

// TopProductsBySales ranks product labels by summed sale totals within the
// window, with quantity sold as the secondary measure.
func (s *Store) TopProductsBySales(ctx context.Context, start, end time.Time, n int) ([]models.RankingEntry, error) {
	var entries []models.RankingEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT MIN(id) AS entity_id, producto AS label,
		       COALESCE(SUM(total), 0) AS measure,
		       COALESCE(SUM(cantidad), 0) AS secondary_measure
		FROM ventas
		WHERE fecha_venta >= $1 AND fecha_venta < $2
		AND (estado IS NULL OR estado IN ('pendiente', 'pagada', 'entregada'))
		GROUP BY producto
		ORDER BY measure DESC, MIN(id) ASC
		LIMIT $3`, start, end, n)
	return entries, err
}

// ActiveMemberRoster enumerates every active member with zeroed measures,
// for installations where the sales or contributions tables do not exist yet.
func (s *Store) ActiveMemberRoster(ctx context.Context) ([]models.RankingEntry, error) {
	var entries []models.RankingEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id AS entity_id, nombre AS label,
		       0 AS measure, 0 AS secondary_measure
		FROM socios
		WHERE estado = 'activo'
		ORDER BY id ASC`)
	return entries, err
}

// MemberPerformance enumerates every active member with windowed sale income
// and confirmed contributions. The left joins keep members with no activity
// in the result, zero-filled, so the member-performance chart always covers
// the full roster.
func (s *Store) MemberPerformance(ctx context.Context, start, end time.Time) ([]models.RankingEntry, error) {
	var entries []models.RankingEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT so.id AS entity_id, so.nombre AS label,
		       COALESCE(v.income, 0) AS measure,
		       COALESCE(a.aportes, 0) AS secondary_measure
		FROM socios so
		LEFT JOIN (
			SELECT socio_id, SUM(total) AS income
			FROM ventas
			WHERE fecha_venta >= $1 AND fecha_venta < $2
			AND (estado IS NULL OR estado IN ('pendiente', 'pagada', 'entregada'))
			GROUP BY socio_id
		) v ON v.socio_id = so.id
		LEFT JOIN (
			SELECT socio_id, SUM(monto) AS aportes
			FROM aportes
			WHERE fecha_pago >= $1 AND fecha_pago < $2 AND estado = 'confirmado'
			GROUP BY socio_id
		) a ON a.socio_id = so.id
		WHERE so.estado = 'activo'
		ORDER BY measure DESC, so.id ASC`, start, end)
	return entries, err
}
