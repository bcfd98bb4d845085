package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/alexarts74/trip-indo/pkg/budget"
	"github.com/alexarts74/trip-indo/pkg/config"
	"github.com/alexarts74/trip-indo/pkg/database"
	"github.com/alexarts74/trip-indo/pkg/middleware"
	"github.com/alexarts74/trip-indo/pkg/models"
	"github.com/alexarts74/trip-indo/pkg/utils"

	chiRoute "github.com/go-chi/chi/v5"
)

// TripsHandler 行程处理器
type TripsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
}

// NewTripsHandler 创建行程处理器
func NewTripsHandler(cfg *config.Config, db database.DatabaseInterface) *TripsHandler {
	return &TripsHandler{config: cfg, db: db}
}

type tripRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Budget      float64 `json:"budget"`
}

func (req *tripRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if req.Budget < 0 {
		return fmt.Errorf("budget cannot be negative")
	}
	if req.StartDate != "" && req.EndDate != "" && req.EndDate < req.StartDate {
		return fmt.Errorf("end_date cannot be before start_date")
	}
	return nil
}

// Create POST /api/trips
func (h *TripsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req tripRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		utils.WriteValidationErrorResponse(w, err.Error(), "")
		return
	}

	trip := &models.Trip{
		UserID:      user.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
	}
	if err := h.db.CreateTrip(trip); err != nil {
		fmt.Printf("❌ CreateTrip failed: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to create trip")
		return
	}

	// 创建者同时成为owner participant
	owner := &models.Participant{
		TripID: trip.ID,
		UserID: &user.ID,
		Role:   models.RoleOwner,
	}
	if err := h.db.CreateParticipant(owner); err != nil {
		fmt.Printf("⚠️ CreateTrip: failed to add owner participant for trip %s: %v\n", trip.ID, err)
	}

	utils.WriteCreatedResponse(w, trip)
}

// List GET /api/trips
func (h *TripsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	trips, err := h.db.ListTripsByOwner(user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list trips")
		return
	}
	if trips == nil {
		trips = []models.Trip{}
	}

	utils.WriteSuccessResponse(w, trips)
}

// Get GET /api/trips/{tripID}
func (h *TripsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	tripID := chiRoute.URLParam(r, "tripID")

	trip, err := h.db.GetTrip(tripID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Trip not found")
		return
	}

	// owner或任意participant都能看
	if _, ok := tripRole(h.db, tripID, user.ID); !ok {
		utils.WriteForbiddenResponse(w, "Not a participant of this trip")
		return
	}

	utils.WriteSuccessResponse(w, trip)
}

// Update PUT /api/trips/{tripID}
func (h *TripsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	tripID := chiRoute.URLParam(r, "tripID")

	trip, err := h.db.GetTrip(tripID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Trip not found")
		return
	}
	if role, ok := tripRole(h.db, tripID, user.ID); !ok || role != models.RoleOwner {
		utils.WriteForbiddenResponse(w, "Only the trip owner can update the trip")
		return
	}

	var req tripRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		utils.WriteValidationErrorResponse(w, err.Error(), "")
		return
	}

	trip.Name = strings.TrimSpace(req.Name)
	trip.Description = req.Description
	trip.StartDate = req.StartDate
	trip.EndDate = req.EndDate
	trip.Budget = req.Budget

	if err := h.db.UpdateTrip(trip); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update trip")
		return
	}

	utils.WriteSuccessResponse(w, trip)
}

// Delete DELETE /api/trips/{tripID}
// 先清子资源再删行程，Supabase REST模式没有外键级联可依赖。
func (h *TripsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if role, ok := tripRole(h.db, tripID, user.ID); !ok || role != models.RoleOwner {
		utils.WriteForbiddenResponse(w, "Only the trip owner can delete the trip")
		return
	}

	// destinations + activities
	if dests, err := h.db.ListDestinationsByTrip(tripID); err == nil {
		for _, d := range dests {
			if acts, err := h.db.ListActivitiesByDestination(d.ID); err == nil {
				for _, a := range acts {
					if err := h.db.DeleteActivity(a.ID); err != nil {
						fmt.Printf("⚠️ DeleteTrip: failed to delete activity %s: %v\n", a.ID, err)
					}
				}
			}
			if err := h.db.DeleteDestination(d.ID); err != nil {
				fmt.Printf("⚠️ DeleteTrip: failed to delete destination %s: %v\n", d.ID, err)
			}
		}
	}

	// expenses + shares
	if expenses, err := h.db.ListExpensesByTrip(tripID); err == nil {
		for _, e := range expenses {
			if err := h.db.DeleteExpenseShares(e.ID); err != nil {
				fmt.Printf("⚠️ DeleteTrip: failed to delete shares of expense %s: %v\n", e.ID, err)
			}
			if err := h.db.DeleteExpense(e.ID); err != nil {
				fmt.Printf("⚠️ DeleteTrip: failed to delete expense %s: %v\n", e.ID, err)
			}
		}
	}

	// participants
	if participants, err := h.db.ListParticipantsByTrip(tripID); err == nil {
		for _, p := range participants {
			if err := h.db.DeleteParticipant(p.ID); err != nil {
				fmt.Printf("⚠️ DeleteTrip: failed to delete participant %s: %v\n", p.ID, err)
			}
		}
	}

	if err := h.db.DeleteInvitationsByTrip(tripID); err != nil {
		fmt.Printf("⚠️ DeleteTrip: failed to delete invitations of trip %s: %v\n", tripID, err)
	}

	if err := h.db.DeleteTrip(tripID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete trip")
		return
	}

	utils.WriteMessageResponse(w, "Trip deleted", nil)
}

// Stats GET /api/trips/{tripID}/stats
func (h *TripsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	tripID := chiRoute.URLParam(r, "tripID")

	trip, err := h.db.GetTrip(tripID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Trip not found")
		return
	}
	if _, ok := tripRole(h.db, tripID, user.ID); !ok {
		utils.WriteForbiddenResponse(w, "Not a participant of this trip")
		return
	}

	dests, err := h.db.ListDestinationsByTrip(tripID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load destinations")
		return
	}

	destIDs := make([]string, 0, len(dests))
	for _, d := range dests {
		destIDs = append(destIDs, d.ID)
	}
	acts, err := h.db.ListActivitiesByDestinations(destIDs)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load activities")
		return
	}

	utils.WriteSuccessResponse(w, budget.Compute(trip.Budget, dests, acts))
}
