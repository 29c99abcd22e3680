package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ShipmentStatus is the closed set of shipment states.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
)

// ParseShipmentStatus normalizes a status string. Empty input defaults to
// pending; unknown values return ok=false.
func ParseShipmentStatus(s string) (ShipmentStatus, bool) {
	switch ShipmentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return StatusPending, true
	case StatusPending:
		return StatusPending, true
	case StatusInTransit:
		return StatusInTransit, true
	case StatusDelivered:
		return StatusDelivered, true
	case StatusCancelled:
		return StatusCancelled, true
	default:
		return "", false
	}
}

type Shipment struct {
	ID               string
	ShipperName      string
	CarrierName      string
	PickupLocation   string
	DeliveryLocation string
	TrackingData     json.RawMessage
	Rates            json.RawMessage
	Status           ShipmentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
