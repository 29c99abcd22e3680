// Package shipments declares and implements the shipment repository: thin
// relational CRUD consumed by the admin API.
package shipments

import (
	"context"

	"github.com/velotrans/tms/internal/server/models"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	ShipperName string
	CarrierName string
	Status      models.ShipmentStatus
	Limit       int
	Offset      int
}

// Update carries the partial-update fields; nil pointers are left untouched.
type Update struct {
	ShipperName      *string
	CarrierName      *string
	PickupLocation   *string
	DeliveryLocation *string
	TrackingData     []byte
	Rates            []byte
	Status           *models.ShipmentStatus
}

type Repository interface {
	Create(ctx context.Context, s *models.Shipment) (*models.Shipment, error)
	GetByID(ctx context.Context, id string) (*models.Shipment, error)
	List(ctx context.Context, f Filter) ([]*models.Shipment, int64, error)
	Update(ctx context.Context, id string, u Update) (*models.Shipment, error)
	CountByStatus(ctx context.Context) (map[models.ShipmentStatus]int64, error)
}
