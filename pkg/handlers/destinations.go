package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/alexarts74/trip-indo/pkg/config"
	"github.com/alexarts74/trip-indo/pkg/database"
	"github.com/alexarts74/trip-indo/pkg/middleware"
	"github.com/alexarts74/trip-indo/pkg/models"
	"github.com/alexarts74/trip-indo/pkg/utils"

	chiRoute "github.com/go-chi/chi/v5"
)

// DestinationsHandler 目的地与活动处理器
type DestinationsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
}

// NewDestinationsHandler 创建目的地处理器
func NewDestinationsHandler(cfg *config.Config, db database.DatabaseInterface) *DestinationsHandler {
	return &DestinationsHandler{config: cfg, db: db}
}

// requireMember 目的地操作要求是行程成员，返回false时已写好响应
func (h *DestinationsHandler) requireMember(w http.ResponseWriter, tripID, userID string) bool {
	if _, ok := tripRole(h.db, tripID, userID); !ok {
		utils.WriteForbiddenResponse(w, "Not a participant of this trip")
		return false
	}
	return true
}

// destinationByID 取目的地并校验调用者是所属行程的成员
func (h *DestinationsHandler) destinationByID(w http.ResponseWriter, r *http.Request, userID string) (*models.Destination, bool) {
	destinationID := chiRoute.URLParam(r, "destinationID")
	dest, err := h.db.GetDestination(destinationID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Destination not found")
		return nil, false
	}
	if !h.requireMember(w, dest.TripID, userID) {
		return nil, false
	}
	return dest, true
}

type destinationRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Country     string  `json:"country"`
	Address     string  `json:"address"`
	Price       float64 `json:"price"`
}

func (req *destinationRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if req.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	return nil
}

// Create POST /api/trips/{tripID}/destinations
func (h *DestinationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	tripID := chiRoute.URLParam(r, "tripID")

	if _, err := h.db.GetTrip(tripID); err != nil {
		utils.WriteNotFoundResponse(w, "Trip not found")
		return
	}
	if !h.requireMember(w, tripID, user.ID) {
		return
	}

	var req destinationRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		utils.WriteValidationErrorResponse(w, err.Error(), "")
		return
	}

	dest := &models.Destination{
		TripID:      tripID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Country:     req.Country,
		Address:     req.Address,
		Price:       req.Price,
	}
	if err := h.db.CreateDestination(dest); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create destination")
		return
	}

	utils.WriteCreatedResponse(w, dest)
}

// List GET /api/trips/{tripID}/destinations
func (h *DestinationsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	tripID := chiRoute.URLParam(r, "tripID")

	if !h.requireMember(w, tripID, user.ID) {
		return
	}

	dests, err := h.db.ListDestinationsByTrip(tripID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list destinations")
		return
	}
	if dests == nil {
		dests = []models.Destination{}
	}

	utils.WriteSuccessResponse(w, dests)
}

// Update PUT /api/destinations/{destinationID}
func (h *DestinationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	dest, ok := h.destinationByID(w, r, user.ID)
	if !ok {
		return
	}

	var req destinationRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		utils.WriteValidationErrorResponse(w, err.Error(), "")
		return
	}

	dest.Name = strings.TrimSpace(req.Name)
	dest.Description = req.Description
	dest.Country = req.Country
	dest.Address = req.Address
	dest.Price = req.Price

	if err := h.db.UpdateDestination(dest); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update destination")
		return
	}

	utils.WriteSuccessResponse(w, dest)
}

// Delete DELETE /api/destinations/{destinationID}
// 先删挂在目的地下的活动。
func (h *DestinationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	dest, ok := h.destinationByID(w, r, user.ID)
	if !ok {
		return
	}

	if acts, err := h.db.ListActivitiesByDestination(dest.ID); err == nil {
		for _, a := range acts {
			if err := h.db.DeleteActivity(a.ID); err != nil {
				fmt.Printf("⚠️ DeleteDestination: failed to delete activity %s: %v\n", a.ID, err)
			}
		}
	}

	if err := h.db.DeleteDestination(dest.ID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete destination")
		return
	}

	utils.WriteMessageResponse(w, "Destination deleted", nil)
}

// ==================== Activities ====================

type activityRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration"`
}

func (req *activityRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if req.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	return nil
}

// CreateActivity POST /api/destinations/{destinationID}/activities
func (h *DestinationsHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	dest, ok := h.destinationByID(w, r, user.ID)
	if !ok {
		return
	}

	var req activityRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		utils.WriteValidationErrorResponse(w, err.Error(), "")
		return
	}

	activity := &models.Activity{
		DestinationID: dest.ID,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		Duration:      req.Duration,
	}
	if err := h.db.CreateActivity(activity); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create activity")
		return
	}

	utils.WriteCreatedResponse(w, activity)
}

// ListActivities GET /api/destinations/{destinationID}/activities
func (h *DestinationsHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	dest, ok := h.destinationByID(w, r, user.ID)
	if !ok {
		return
	}

	acts, err := h.db.ListActivitiesByDestination(dest.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list activities")
		return
	}
	if acts == nil {
		acts = []models.Activity{}
	}

	utils.WriteSuccessResponse(w, acts)
}

// UpdateActivity PUT /api/activities/{activityID}
func (h *DestinationsHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	activityID := chiRoute.URLParam(r, "activityID")

	activity, ok := h.activityByID(w, activityID, user.ID)
	if !ok {
		return
	}

	var req activityRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		utils.WriteValidationErrorResponse(w, err.Error(), "")
		return
	}

	activity.Name = strings.TrimSpace(req.Name)
	activity.Description = req.Description
	activity.Price = req.Price
	activity.Duration = req.Duration

	if err := h.db.UpdateActivity(activity); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update activity")
		return
	}

	utils.WriteSuccessResponse(w, activity)
}

// DeleteActivity DELETE /api/activities/{activityID}
func (h *DestinationsHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	activityID := chiRoute.URLParam(r, "activityID")

	if _, ok := h.activityByID(w, activityID, user.ID); !ok {
		return
	}

	if err := h.db.DeleteActivity(activityID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete activity")
		return
	}

	utils.WriteMessageResponse(w, "Activity deleted", nil)
}

// activityByID 活动没有携带trip_id，通过destination间接做成员校验
func (h *DestinationsHandler) activityByID(w http.ResponseWriter, activityID, userID string) (*models.Activity, bool) {
	activity, err := h.db.GetActivity(activityID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Activity not found")
		return nil, false
	}
	dest, err := h.db.GetDestination(activity.DestinationID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Destination not found")
		return nil, false
	}
	if !h.requireMember(w, dest.TripID, userID) {
		return nil, false
	}
	return activity, true
}
