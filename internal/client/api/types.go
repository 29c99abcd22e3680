// Package api is the typed HTTP client for the TMS server API.
package api

import (
	"encoding/json"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthPayload is what register, login and refresh return: a fresh token pair
// plus its owner.
type AuthPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

type Shipment struct {
	ID               string          `json:"id"`
	ShipperName      string          `json:"shipperName"`
	CarrierName      string          `json:"carrierName"`
	PickupLocation   string          `json:"pickupLocation"`
	DeliveryLocation string          `json:"deliveryLocation"`
	TrackingData     json.RawMessage `json:"trackingData"`
	Rates            json.RawMessage `json:"rates"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type ShipmentList struct {
	Items []Shipment `json:"items"`
	Total int64      `json:"total"`
}

type ShipmentInput struct {
	ShipperName      string          `json:"shipperName"`
	CarrierName      string          `json:"carrierName"`
	PickupLocation   string          `json:"pickupLocation"`
	DeliveryLocation string          `json:"deliveryLocation"`
	TrackingData     json.RawMessage `json:"trackingData,omitempty"`
	Rates            json.RawMessage `json:"rates,omitempty"`
	Status           string          `json:"status,omitempty"`
}
