package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/velotrans/tms/internal/common"
	"github.com/velotrans/tms/internal/logging"
	"github.com/velotrans/tms/internal/server/auth"
	"github.com/velotrans/tms/internal/server/models"
	"github.com/velotrans/tms/internal/server/repositories/repomanager"
	"github.com/velotrans/tms/internal/server/repositories/shipments"
)

// ShipmentInput is the payload for creating a shipment.
type ShipmentInput struct {
	ShipperName      string
	CarrierName      string
	PickupLocation   string
	DeliveryLocation string
	TrackingData     json.RawMessage
	Rates            json.RawMessage
	Status           string
}

// ShipmentPatch carries optional fields for a partial update.
type ShipmentPatch struct {
	ShipperName      *string
	CarrierName      *string
	PickupLocation   *string
	DeliveryLocation *string
	TrackingData     json.RawMessage
	Rates            json.RawMessage
	Status           *string
}

// ShipmentService wraps shipment CRUD with the per-operation authorization
// policy: any identity may read, only admins may mutate.
type ShipmentService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewShipmentService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *ShipmentService {
	return &ShipmentService{db: db, repos: repos, logger: logger.With("module", "shipment_service")}
}

// requireUser rejects anonymous callers; requireAdmin additionally rejects
// authenticated non-admins. The two error kinds stay distinguishable.
func requireUser(claims *auth.Claims) error {
	if claims == nil {
		return common.ErrUnauthenticated
	}
	return nil
}

func requireAdmin(claims *auth.Claims) error {
	if err := requireUser(claims); err != nil {
		return err
	}
	if claims.Role != models.RoleAdmin {
		return common.ErrForbidden
	}
	return nil
}

func (s *ShipmentService) List(ctx context.Context, claims *auth.Claims, f shipments.Filter) ([]*models.Shipment, int64, error) {
	if err := requireUser(claims); err != nil {
		return nil, 0, err
	}
	return s.repos.Shipments(s.db).List(ctx, f)
}

func (s *ShipmentService) Get(ctx context.Context, claims *auth.Claims, id string) (*models.Shipment, error) {
	if err := requireUser(claims); err != nil {
		return nil, err
	}
	return s.repos.Shipments(s.db).GetByID(ctx, id)
}

func (s *ShipmentService) Stats(ctx context.Context, claims *auth.Claims) (map[models.ShipmentStatus]int64, error) {
	if err := requireUser(claims); err != nil {
		return nil, err
	}
	return s.repos.Shipments(s.db).CountByStatus(ctx)
}

func (s *ShipmentService) Create(ctx context.Context, claims *auth.Claims, in ShipmentInput) (*models.Shipment, error) {
	if err := requireAdmin(claims); err != nil {
		return nil, err
	}

	shipment := &models.Shipment{TrackingData: in.TrackingData, Rates: in.Rates}
	var err error
	if shipment.ShipperName, err = validateRequiredString("shipperName", in.ShipperName); err != nil {
		return nil, err
	}
	if shipment.CarrierName, err = validateRequiredString("carrierName", in.CarrierName); err != nil {
		return nil, err
	}
	if shipment.PickupLocation, err = validateRequiredString("pickupLocation", in.PickupLocation); err != nil {
		return nil, err
	}
	if shipment.DeliveryLocation, err = validateRequiredString("deliveryLocation", in.DeliveryLocation); err != nil {
		return nil, err
	}
	status, ok := models.ParseShipmentStatus(in.Status)
	if !ok {
		return nil, common.Invalid("status", "must be one of pending, in_transit, delivered, cancelled")
	}
	shipment.Status = status

	created, err := s.repos.Shipments(s.db).Create(ctx, shipment)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "shipment created", "id", created.ID, "by", claims.UserID)
	return created, nil
}

func (s *ShipmentService) Update(ctx context.Context, claims *auth.Claims, id string, patch ShipmentPatch) (*models.Shipment, error) {
	if err := requireAdmin(claims); err != nil {
		return nil, err
	}

	upd := shipments.Update{TrackingData: patch.TrackingData, Rates: patch.Rates}
	empty := patch.TrackingData == nil && patch.Rates == nil

	set := func(dst **string, field string, src *string) error {
		if src == nil {
			return nil
		}
		v, err := validateRequiredString(field, *src)
		if err != nil {
			return err
		}
		*dst = &v
		empty = false
		return nil
	}
	if err := set(&upd.ShipperName, "shipperName", patch.ShipperName); err != nil {
		return nil, err
	}
	if err := set(&upd.CarrierName, "carrierName", patch.CarrierName); err != nil {
		return nil, err
	}
	if err := set(&upd.PickupLocation, "pickupLocation", patch.PickupLocation); err != nil {
		return nil, err
	}
	if err := set(&upd.DeliveryLocation, "deliveryLocation", patch.DeliveryLocation); err != nil {
		return nil, err
	}
	if patch.Status != nil {
		status, ok := models.ParseShipmentStatus(*patch.Status)
		if !ok {
			return nil, common.Invalid("status", "must be one of pending, in_transit, delivered, cancelled")
		}
		upd.Status = &status
		empty = false
	}
	if empty {
		return nil, common.Invalid("input", "no valid fields to update")
	}

	return s.repos.Shipments(s.db).Update(ctx, id, upd)
}
