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

// ReconcileParticipants 把邮箱占位的participant行绑到真实用户。
// 邀请不认识的邮箱时会留下 {email, user_id: null} 的占位行，
// 该邮箱的用户注册/登录时在这里补上user_id并清掉email。
// 单行失败只记日志不中断，返回成功绑定的行数。
func ReconcileParticipants(db database.DatabaseInterface, userID, email string) int {
	pending, err := db.ListPendingParticipantsByEmail(email)
	if err != nil {
		fmt.Printf("⚠️ Reconcile: failed to list pending participants for %s: %v\n", email, err)
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	reconciled := 0
	for _, p := range pending {
		if err := db.BindParticipant(p.ID, userID); err != nil {
			fmt.Printf("⚠️ Reconcile: failed to bind participant %s (trip %s): %v\n", p.ID, p.TripID, err)
			continue
		}
		reconciled++
	}

	if reconciled > 0 {
		fmt.Printf("🔗 Reconcile: bound %d/%d participant rows to user %s\n", reconciled, len(pending), userID)
	}
	return reconciled
}

// ParticipantsHandler 行程成员处理器
type ParticipantsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
}

// NewParticipantsHandler 创建成员处理器
func NewParticipantsHandler(cfg *config.Config, db database.DatabaseInterface) *ParticipantsHandler {
	return &ParticipantsHandler{config: cfg, db: db}
}

// List GET /api/trips/{tripID}/participants
func (h *ParticipantsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	tripID := chiRoute.URLParam(r, "tripID")

	if _, ok := tripRole(h.db, tripID, user.ID); !ok {
		utils.WriteForbiddenResponse(w, "Not a participant of this trip")
		return
	}

	participants, err := h.db.ListParticipantsByTrip(tripID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list participants")
		return
	}

	// profiles 批量取一次，按user_id回填
	var userIDs []string
	for _, p := range participants {
		if p.UserID != nil {
			userIDs = append(userIDs, *p.UserID)
		}
	}
	profiles := map[string]models.Profile{}
	if rows, err := h.db.GetProfilesByIDs(userIDs); err == nil {
		for _, pr := range rows {
			profiles[pr.ID] = pr
		}
	}

	for i := range participants {
		if participants[i].UserID == nil {
			continue
		}
		if pr, ok := profiles[*participants[i].UserID]; ok {
			prCopy := pr
			participants[i].Profile = &prCopy
		}
	}

	utils.WriteSuccessResponse(w, participants)
}

// Add POST /api/trips/{tripID}/participants
// 按邮箱直接加占位成员，等对方注册/登录时对账绑定。
func (h *ParticipantsHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	tripID := chiRoute.URLParam(r, "tripID")

	if role, ok := tripRole(h.db, tripID, user.ID); !ok || role != models.RoleOwner {
		utils.WriteForbiddenResponse(w, "Only the trip owner can add participants")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	email := utils.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		utils.WriteValidationErrorResponse(w, "A valid email is required", "")
		return
	}

	// 如果该邮箱已注册，直接绑user_id；否则留email占位
	participant := &models.Participant{
		TripID: tripID,
		Role:   models.RoleParticipant,
	}
	if existing, err := h.db.GetUserByEmail(email); err == nil {
		if _, already := tripRole(h.db, tripID, existing.ID); already {
			utils.WriteConflictResponse(w, "This user is already a participant")
			return
		}
		participant.UserID = &existing.ID
	} else {
		// 同一行程同一邮箱只留一条占位行，否则对账时会绑出重复成员
		if pending, err := h.db.ListPendingParticipantsByEmail(email); err == nil {
			for _, p := range pending {
				if p.TripID == tripID {
					utils.WriteConflictResponse(w, "This email has already been added to the trip")
					return
				}
			}
		}
		participant.Email = &email
	}

	if err := h.db.CreateParticipant(participant); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to add participant")
		return
	}

	utils.WriteCreatedResponse(w, participant)
}

// Remove DELETE /api/trips/{tripID}/participants/{participantID}
// owner可以移除任何人（除了自己），成员可以退出。
func (h *ParticipantsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	tripID := chiRoute.URLParam(r, "tripID")
	participantID := chiRoute.URLParam(r, "participantID")

	participant, err := h.db.GetParticipant(participantID)
	if err != nil || participant.TripID != tripID {
		utils.WriteNotFoundResponse(w, "Participant not found")
		return
	}

	role, ok := tripRole(h.db, tripID, user.ID)
	if !ok {
		utils.WriteForbiddenResponse(w, "Not a participant of this trip")
		return
	}

	isSelf := participant.UserID != nil && *participant.UserID == user.ID
	if isSelf && participant.Role == models.RoleOwner {
		utils.WriteBadRequestResponse(w, "The trip owner cannot leave the trip")
		return
	}
	if !isSelf && role != models.RoleOwner {
		utils.WriteForbiddenResponse(w, "Only the trip owner can remove participants")
		return
	}

	if err := h.db.DeleteParticipant(participantID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to remove participant")
		return
	}

	utils.WriteMessageResponse(w, "Participant removed", nil)
}

// tripRole 成员角色查询，owner行缺失时回退到trips.user_id
func tripRole(db database.DatabaseInterface, tripID, userID string) (models.ParticipantRole, bool) {
	if role, ok := db.GetTripRole(tripID, userID); ok {
		return role, true
	}
	// 兜底：老数据可能没有owner participant行
	if trip, err := db.GetTrip(tripID); err == nil && trip.UserID == userID {
		return models.RoleOwner, true
	}
	return "", false
}
