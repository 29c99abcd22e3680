package shipments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/velotrans/tms/internal/common"
	"github.com/velotrans/tms/internal/dbx"
	"github.com/velotrans/tms/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const shipmentColumns = `id, shipper_name, carrier_name, pickup_location, delivery_location,
		tracking_data, rates, status, created_at, updated_at`

func scanShipment(row interface{ Scan(dest ...any) error }) (*models.Shipment, error) {
	s := &models.Shipment{}
	err := row.Scan(&s.ID, &s.ShipperName, &s.CarrierName, &s.PickupLocation,
		&s.DeliveryLocation, &s.TrackingData, &s.Rates, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Shipment) (*models.Shipment, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.TrackingData == nil {
		s.TrackingData = []byte("{}")
	}
	if s.Rates == nil {
		s.Rates = []byte("{}")
	}

	query := `
		INSERT INTO shipments (id, shipper_name, carrier_name, pickup_location,
			delivery_location, tracking_data, rates, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, s.ID, s.ShipperName, s.CarrierName,
		s.PickupLocation, s.DeliveryLocation, []byte(s.TrackingData), []byte(s.Rates), s.Status).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id = $1`

	s, err := scanShipment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Shipment, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if f.ShipperName != "" {
		args = append(args, "%"+f.ShipperName+"%")
		where += fmt.Sprintf(" AND shipper_name ILIKE $%d", len(args))
	}
	if f.CarrierName != "" {
		args = append(args, "%"+f.CarrierName+"%")
		where += fmt.Sprintf(" AND carrier_name ILIKE $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM shipments"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT "+shipmentColumns+" FROM shipments"+where+
		" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return items, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, u Update) (*models.Shipment, error) {
	set := "updated_at = now()"
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		set += fmt.Sprintf(", %s = $%d", column, len(args))
	}
	if u.ShipperName != nil {
		add("shipper_name", *u.ShipperName)
	}
	if u.CarrierName != nil {
		add("carrier_name", *u.CarrierName)
	}
	if u.PickupLocation != nil {
		add("pickup_location", *u.PickupLocation)
	}
	if u.DeliveryLocation != nil {
		add("delivery_location", *u.DeliveryLocation)
	}
	if u.TrackingData != nil {
		add("tracking_data", u.TrackingData)
	}
	if u.Rates != nil {
		add("rates", u.Rates)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE shipments SET %s WHERE id = $%d RETURNING "+shipmentColumns, set, len(args))

	s, err := scanShipment(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (map[models.ShipmentStatus]int64, error) {
	query := `SELECT status, count(*) FROM shipments GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	counts := map[models.ShipmentStatus]int64{}
	for rows.Next() {
		var status models.ShipmentStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return counts, nil
}
