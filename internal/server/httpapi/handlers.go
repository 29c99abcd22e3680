package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/velotrans/tms/internal/common"
	"github.com/velotrans/tms/internal/server/models"
	"github.com/velotrans/tms/internal/server/repositories/shipments"
	"github.com/velotrans/tms/internal/server/services"
)

type userPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type authPayload struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         userPayload `json:"user"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{ID: u.ID, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

func toAuthPayload(c *services.Credentials) authPayload {
	return authPayload{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		User:         toUserPayload(c.User),
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	creds, err := s.auth.Register(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthPayload(creds))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	creds, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthPayload(creds))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	creds, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthPayload(creds))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		s.writeError(r.Context(), w, common.ErrUnauthenticated)
		return
	}

	if err := s.auth.LogoutAll(r.Context(), claims.UserID); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		s.writeError(r.Context(), w, common.ErrUnauthenticated)
		return
	}

	user, err := s.auth.Me(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(user))
}

type shipmentPayload struct {
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

type shipmentListPayload struct {
	Items []shipmentPayload `json:"items"`
	Total int64             `json:"total"`
}

func toShipmentPayload(m *models.Shipment) shipmentPayload {
	return shipmentPayload{
		ID:               m.ID,
		ShipperName:      m.ShipperName,
		CarrierName:      m.CarrierName,
		PickupLocation:   m.PickupLocation,
		DeliveryLocation: m.DeliveryLocation,
		TrackingData:     m.TrackingData,
		Rates:            m.Rates,
		Status:           string(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (s *Server) handleListShipments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := shipments.Filter{
		ShipperName: q.Get("shipper"),
		CarrierName: q.Get("carrier"),
		Status:      models.ShipmentStatus(q.Get("status")),
		Limit:       intQuery(q.Get("limit")),
		Offset:      intQuery(q.Get("offset")),
	}

	items, total, err := s.shipments.List(r.Context(), ClaimsFromContext(r.Context()), filter)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	payload := shipmentListPayload{Items: make([]shipmentPayload, 0, len(items)), Total: total}
	for _, item := range items {
		payload.Items = append(payload.Items, toShipmentPayload(item))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	shipment, err := s.shipments.Get(r.Context(), ClaimsFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentPayload(shipment))
}

func (s *Server) handleShipmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.shipments.Stats(r.Context(), ClaimsFromContext(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type shipmentRequest struct {
	ShipperName      string          `json:"shipperName"`
	CarrierName      string          `json:"carrierName"`
	PickupLocation   string          `json:"pickupLocation"`
	DeliveryLocation string          `json:"deliveryLocation"`
	TrackingData     json.RawMessage `json:"trackingData,omitempty"`
	Rates            json.RawMessage `json:"rates,omitempty"`
	Status           string          `json:"status,omitempty"`
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var req shipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	shipment, err := s.shipments.Create(r.Context(), ClaimsFromContext(r.Context()), services.ShipmentInput{
		ShipperName:      req.ShipperName,
		CarrierName:      req.CarrierName,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: req.DeliveryLocation,
		TrackingData:     req.TrackingData,
		Rates:            req.Rates,
		Status:           req.Status,
	})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShipmentPayload(shipment))
}

type shipmentPatchRequest struct {
	ShipperName      *string         `json:"shipperName"`
	CarrierName      *string         `json:"carrierName"`
	PickupLocation   *string         `json:"pickupLocation"`
	DeliveryLocation *string         `json:"deliveryLocation"`
	TrackingData     json.RawMessage `json:"trackingData"`
	Rates            json.RawMessage `json:"rates"`
	Status           *string         `json:"status"`
}

func (s *Server) handleUpdateShipment(w http.ResponseWriter, r *http.Request) {
	var req shipmentPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	shipment, err := s.shipments.Update(r.Context(), ClaimsFromContext(r.Context()), chi.URLParam(r, "id"), services.ShipmentPatch{
		ShipperName:      req.ShipperName,
		CarrierName:      req.CarrierName,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: req.DeliveryLocation,
		TrackingData:     req.TrackingData,
		Rates:            req.Rates,
		Status:           req.Status,
	})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShipmentPayload(shipment))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, db, status := "ok", "connected", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error(r.Context(), "health check db probe failed", "error", err.Error())
		health, db, status = "degraded", "error", http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{
		"status":    health,
		"database":  db,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func intQuery(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
