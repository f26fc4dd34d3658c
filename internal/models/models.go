package models

import (
	"database/sql"
	"time"
)

// Sale represents a row in ventas. The engine only ever reads sales; the
// sales module owns their lifecycle.
type Sale struct {
	ID             int64          `db:"id" json:"id"`
	SocioID        sql.NullInt64  `db:"socio_id" json:"socio_id"`
	Producto       string         `db:"producto" json:"producto"`
	Cantidad       float64        `db:"cantidad" json:"cantidad"`
	PrecioUnitario float64        `db:"precio_unitario" json:"precio_unitario"`
	Total          float64        `db:"total" json:"total"`
	FechaVenta     time.Time      `db:"fecha_venta" json:"fecha_venta"`
	FechaEntrega   sql.NullTime   `db:"fecha_entrega" json:"fecha_entrega,omitempty"`
	Estado         sql.NullString `db:"estado" json:"estado"`
	MetodoPago     sql.NullString `db:"metodo_pago" json:"metodo_pago"`
	Cliente        sql.NullString `db:"cliente" json:"cliente"`
}

// Contribution represents a row in aportes. Only confirmed rows count
// toward KPIs.
type Contribution struct {
	ID           int64          `db:"id" json:"id"`
	SocioID      sql.NullInt64  `db:"socio_id" json:"socio_id"`
	VentaID      sql.NullInt64  `db:"venta_id" json:"venta_id,omitempty"`
	Monto        float64        `db:"monto" json:"monto"`
	Tipo         string         `db:"tipo" json:"tipo"`
	Estado       string         `db:"estado" json:"estado"`
	FechaPago    time.Time      `db:"fecha_pago" json:"fecha_pago"`
	MetodoPago   sql.NullString `db:"metodo_pago" json:"metodo_pago"`
	NumeroRecibo sql.NullString `db:"numero_recibo" json:"numero_recibo,omitempty"`
}

// Member represents a row in socios.
type Member struct {
	ID           int64          `db:"id" json:"id"`
	Nombre       string         `db:"nombre" json:"nombre"`
	Cedula       string         `db:"cedula" json:"cedula"`
	Telefono     sql.NullString `db:"telefono" json:"telefono,omitempty"`
	Direccion    sql.NullString `db:"direccion" json:"direccion,omitempty"`
	Estado       string         `db:"estado" json:"estado"`
	FechaIngreso time.Time      `db:"fecha_ingreso" json:"fecha_ingreso"`
	TotalAportes float64        `db:"total_aportes" json:"total_aportes"`
	TotalDeudas  float64        `db:"total_deudas" json:"total_deudas"`
}

// InventoryItem represents a row in inventario. Value counts only when the
// item is available with positive quantity.
type InventoryItem struct {
	ID                 int64   `db:"id" json:"id"`
	Tipo               string  `db:"tipo" json:"tipo"`
	Categoria          string  `db:"categoria" json:"categoria"`
	CantidadDisponible float64 `db:"cantidad_disponible" json:"cantidad_disponible"`
	PrecioUnitario     float64 `db:"precio_unitario" json:"precio_unitario"`
	Estado             string  `db:"estado" json:"estado"`
}

// ProductionRecord represents a row in produccion.
type ProductionRecord struct {
	ID                int64          `db:"id" json:"id"`
	SocioID           sql.NullInt64  `db:"socio_id" json:"socio_id"`
	Cultivo           string         `db:"cultivo" json:"cultivo"`
	Variedad          sql.NullString `db:"variedad" json:"variedad,omitempty"`
	Calidad           sql.NullString `db:"calidad" json:"calidad,omitempty"`
	CantidadCosechada float64        `db:"cantidad_cosechada" json:"cantidad_cosechada"`
	FechaCosecha      time.Time      `db:"fecha_cosecha" json:"fecha_cosecha"`
}

// Sale statuses. A NULL estado is treated as pendiente.
const (
	SaleStatusPending   = "pendiente"
	SaleStatusPaid      = "pagada"
	SaleStatusDelivered = "entregada"
	SaleStatusCancelled = "cancelada"
)

// Contribution types
const (
	ContributionMonthly       = "aporte_mensual"
	ContributionExtraordinary = "aporte_extraordinario"
	ContributionSalePayment   = "pago_venta"
	ContributionLoan          = "prestamo"
	ContributionRefund        = "reembolso"
)

// Contribution statuses
const (
	ContributionStatusPending   = "pendiente"
	ContributionStatusConfirmed = "confirmado"
	ContributionStatusRejected  = "rechazado"
)

// Member statuses
const (
	MemberStatusActive   = "activo"
	MemberStatusInactive = "inactivo"
)

// Inventory statuses
const (
	InventoryStatusAvailable   = "disponible"
	InventoryStatusUnavailable = "no_disponible"
)

// ReportAudit records a generated report or exported document for the
// audit trail.
type ReportAudit struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	Action      string    `db:"action"`
	PeriodLabel string    `db:"period_label"`
	RecordedAt  time.Time `db:"recorded_at"`
}
