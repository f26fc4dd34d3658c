package store

import (
	"context"
	"fmt"
	"time"

	"cooperativa-reports/internal/models"
)

// Filters narrows an aggregate query with optional equality predicates.
// Zero values mean "no filter".
type Filters struct {
	Product string
	SocioID int64
}

func (f Filters) apply(query string, args []interface{}, productCol, socioCol string) (string, []interface{}) {
	if f.Product != "" && productCol != "" {
		args = append(args, f.Product)
		query += fmt.Sprintf(" AND %s = $%d", productCol, len(args))
	}
	if f.SocioID != 0 && socioCol != "" {
		args = append(args, f.SocioID)
		query += fmt.Sprintf(" AND %s = $%d", socioCol, len(args))
	}
	return query, args
}

// scalar runs a single-value aggregate query. Every aggregate SELECT wraps
// its expression in COALESCE so an empty result set scans as 0, never NULL.
func (s *Store) scalar(ctx context.Context, query string, args ...interface{}) (float64, error) {
	var v float64
	if err := s.db.GetContext(ctx, &v, query, args...); err != nil {
		return 0, err
	}
	return v, nil
}

// SalesIncome sums sale totals in the window. Cancelled sales are excluded;
// a NULL estado counts as pendiente and therefore as income.
func (s *Store) SalesIncome(ctx context.Context, start, end time.Time, f Filters) (float64, error) {
	query := `
		SELECT COALESCE(SUM(total), 0) FROM ventas
		WHERE fecha_venta >= $1 AND fecha_venta < $2
		AND (estado IS NULL OR estado IN ('pendiente', 'pagada', 'entregada'))`
	args := []interface{}{start, end}
	query, args = f.apply(query, args, "producto", "socio_id")
	return s.scalar(ctx, query, args...)
}

// SalesCount counts non-cancelled sales in the window.
func (s *Store) SalesCount(ctx context.Context, start, end time.Time, f Filters) (float64, error) {
	query := `
		SELECT COUNT(*) FROM ventas
		WHERE fecha_venta >= $1 AND fecha_venta < $2
		AND (estado IS NULL OR estado IN ('pendiente', 'pagada', 'entregada'))`
	args := []interface{}{start, end}
	query, args = f.apply(query, args, "producto", "socio_id")
	return s.scalar(ctx, query, args...)
}

// ConfirmedContributions sums confirmed monthly and extraordinary
// contributions in the window.
func (s *Store) ConfirmedContributions(ctx context.Context, start, end time.Time, f Filters) (float64, error) {
	query := `
		SELECT COALESCE(SUM(monto), 0) FROM aportes
		WHERE fecha_pago >= $1 AND fecha_pago < $2
		AND estado = 'confirmado'
		AND tipo IN ('aporte_mensual', 'aporte_extraordinario')`
	args := []interface{}{start, end}
	query, args = f.apply(query, args, "", "socio_id")
	return s.scalar(ctx, query, args...)
}

// MonthlyContributionCount counts confirmed monthly contributions in the
// window, used for the contributions-vs-quota chart.
func (s *Store) MonthlyContributionCount(ctx context.Context, start, end time.Time, f Filters) (float64, error) {
	query := `
		SELECT COUNT(*) FROM aportes
		WHERE fecha_pago >= $1 AND fecha_pago < $2
		AND estado = 'confirmado' AND tipo = 'aporte_mensual'`
	args := []interface{}{start, end}
	query, args = f.apply(query, args, "", "socio_id")
	return s.scalar(ctx, query, args...)
}

// LoansOut sums confirmed loans disbursed in the window.
func (s *Store) LoansOut(ctx context.Context, start, end time.Time, f Filters) (float64, error) {
	query := `
		SELECT COALESCE(SUM(monto), 0) FROM aportes
		WHERE fecha_pago >= $1 AND fecha_pago < $2
		AND estado = 'confirmado' AND tipo = 'prestamo'`
	args := []interface{}{start, end}
	query, args = f.apply(query, args, "", "socio_id")
	return s.scalar(ctx, query, args...)
}

// ActiveMemberCount counts members currently marked activo. Membership is
// point-in-time, not windowed.
func (s *Store) ActiveMemberCount(ctx context.Context) (float64, error) {
	return s.scalar(ctx, `SELECT COUNT(*) FROM socios WHERE estado = 'activo'`)
}

// InventoryValue sums quantity * unit price over available items with
// positive stock.
func (s *Store) InventoryValue(ctx context.Context) (float64, error) {
	return s.scalar(ctx, `
		SELECT COALESCE(SUM(cantidad_disponible * precio_unitario), 0) FROM inventario
		WHERE estado = 'disponible' AND cantidad_disponible > 0`)
}

// AvailableItemCount counts available inventory line items with positive stock.
func (s *Store) AvailableItemCount(ctx context.Context) (float64, error) {
	return s.scalar(ctx, `
		SELECT COUNT(*) FROM inventario
		WHERE estado = 'disponible' AND cantidad_disponible > 0`)
}

// ProductionQuantity sums harvested quantity in the window.
func (s *Store) ProductionQuantity(ctx context.Context, start, end time.Time, f Filters) (float64, error) {
	query := `
		SELECT COALESCE(SUM(cantidad_cosechada), 0) FROM produccion
		WHERE fecha_cosecha >= $1 AND fecha_cosecha < $2`
	args := []interface{}{start, end}
	query, args = f.apply(query, args, "cultivo", "socio_id")
	return s.scalar(ctx, query, args...)
}

// EstimatedProductionCost estimates the cost of goods sold in the window by
// valuing each member's harvest at that member's average sale price. This is
// an estimate derived from an indirect join, not a cost model; see the
// MarginStrategy documentation in the report package.
func (s *Store) EstimatedProductionCost(ctx context.Context, start, end time.Time, f Filters) (float64, error) {
	query := `
		SELECT COALESCE(SUM(p.cantidad_cosechada * v.avg_precio), 0)
		FROM produccion p
		JOIN (
			SELECT socio_id, AVG(precio_unitario) AS avg_precio
			FROM ventas
			WHERE socio_id IS NOT NULL
			GROUP BY socio_id
		) v ON v.socio_id = p.socio_id
		WHERE p.fecha_cosecha >= $1 AND p.fecha_cosecha < $2`
	args := []interface{}{start, end}
	query, args = f.apply(query, args, "p.cultivo", "p.socio_id")
	return s.scalar(ctx, query, args...)
}

// SalesByProduct returns summed sale totals grouped by product label.
func (s *Store) SalesByProduct(ctx context.Context, start, end time.Time) ([]models.CategoryValue, error) {
	var rows []models.CategoryValue
	err := s.db.SelectContext(ctx, &rows, `
		SELECT producto AS label, COALESCE(SUM(total), 0) AS value
		FROM ventas
		WHERE fecha_venta >= $1 AND fecha_venta < $2
		AND (estado IS NULL OR estado IN ('pendiente', 'pagada', 'entregada'))
		GROUP BY producto
		ORDER BY value DESC, producto ASC`, start, end)
	return rows, err
}

// InventoryByCategory returns the available inventory value grouped by category.
func (s *Store) InventoryByCategory(ctx context.Context) ([]models.CategoryValue, error) {
	var rows []models.CategoryValue
	err := s.db.SelectContext(ctx, &rows, `
		SELECT categoria AS label, COALESCE(SUM(cantidad_disponible * precio_unitario), 0) AS value
		FROM inventario
		WHERE estado = 'disponible' AND cantidad_disponible > 0
		GROUP BY categoria
		ORDER BY value DESC, categoria ASC`)
	return rows, err
}

// DistinctProducts returns the product labels present in sales, for the
// cross-filter picker in the UI.
func (s *Store) DistinctProducts(ctx context.Context) ([]string, error) {
	var products []string
	err := s.db.SelectContext(ctx, &products,
		`SELECT DISTINCT producto FROM ventas ORDER BY producto`)
	return products, err
}
