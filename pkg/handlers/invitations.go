package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/alexarts74/trip-indo/pkg/config"
	"github.com/alexarts74/trip-indo/pkg/database"
	"github.com/alexarts74/trip-indo/pkg/mailer"
	"github.com/alexarts74/trip-indo/pkg/middleware"
	"github.com/alexarts74/trip-indo/pkg/models"
	"github.com/alexarts74/trip-indo/pkg/utils"

	chiRoute "github.com/go-chi/chi/v5"
)

// InvitationsHandler 邀请处理器
type InvitationsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	mailer mailer.Mailer
}

// NewInvitationsHandler 创建邀请处理器
func NewInvitationsHandler(cfg *config.Config, db database.DatabaseInterface, m mailer.Mailer) *InvitationsHandler {
	return &InvitationsHandler{config: cfg, db: db, mailer: m}
}

// Create POST /api/trips/{tripID}/invitations
// owner-only。邮件发送失败不回滚邀请（best-effort），响应里带email_sent标记。
func (h *InvitationsHandler) Create(w http.ResponseWriter, r *http.Request) {
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
		utils.WriteForbiddenResponse(w, "Only the trip owner can send invitations")
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
	if email == utils.NormalizeEmail(user.Email) {
		utils.WriteBadRequestResponse(w, "You cannot invite yourself")
		return
	}

	// 同一行程同一邮箱的pending邀请只允许一个
	if exists, err := h.db.HasPendingInvitation(tripID, email); err == nil && exists {
		utils.WriteConflictResponse(w, "An invitation for this email is already pending")
		return
	}

	// 已经是成员就不用邀请了
	if existing, err := h.db.GetUserByEmail(email); err == nil {
		if _, already := tripRole(h.db, tripID, existing.ID); already {
			utils.WriteConflictResponse(w, "This user is already a participant")
			return
		}
	}

	inv := &models.Invitation{
		TripID:       tripID,
		InviterID:    user.ID,
		InviteeEmail: email,
		Status:       models.InvitationPending,
	}
	if err := h.db.CreateInvitation(inv); err != nil {
		fmt.Printf("❌ CreateInvitation failed: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to create invitation")
		return
	}
	inv.TripName = trip.Name

	// 邮件是best-effort：失败只打日志，邀请本身已经落库
	emailSent := false
	if _, err := h.mailer.SendInvitation(mailer.InvitationEmail{
		TripID:       tripID,
		TripName:     trip.Name,
		InviterEmail: user.Email,
		InviteeEmail: email,
	}); err != nil {
		fmt.Printf("⚠️ Invitation %s created but email failed: %v\n", inv.ID, err)
	} else {
		emailSent = true
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{
		"invitation": inv,
		"email_sent": emailSent,
	})
}

// ListSent GET /api/invitations/sent
func (h *InvitationsHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	invitations, err := h.db.ListInvitationsByInviter(user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list invitations")
		return
	}
	if invitations == nil {
		invitations = []models.Invitation{}
	}

	utils.WriteSuccessResponse(w, invitations)
}

// ListReceived GET /api/invitations/received
// 只返回pending的，已处理的对收件人没有展示价值。
func (h *InvitationsHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	invitations, err := h.db.ListInvitationsByEmail(user.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list invitations")
		return
	}

	pending := make([]models.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		if inv.Status == models.InvitationPending {
			pending = append(pending, inv)
		}
	}

	utils.WriteSuccessResponse(w, pending)
}

// Accept POST /api/invitations/{invitationID}/accept
func (h *InvitationsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Decline POST /api/invitations/{invitationID}/decline
func (h *InvitationsHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *InvitationsHandler) decide(w http.ResponseWriter, r *http.Request, accept bool) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	invitationID := chiRoute.URLParam(r, "invitationID")

	inv, err := h.db.GetInvitation(invitationID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Invitation not found")
		return
	}

	// 邀请属于被邀请的邮箱，其他人不能处理
	if !strings.EqualFold(inv.InviteeEmail, user.Email) {
		utils.WriteForbiddenResponse(w, "This invitation is not addressed to you")
		return
	}
	if inv.Decided() {
		utils.WriteConflictResponse(w, "Invitation has already been decided")
		return
	}

	if accept {
		if err := h.db.AcceptInvitation(inv, user.ID); err != nil {
			fmt.Printf("❌ AcceptInvitation %s failed: %v\n", inv.ID, err)
			utils.WriteInternalServerErrorResponse(w, "Failed to accept invitation")
			return
		}
		utils.WriteMessageResponse(w, "Invitation accepted", inv)
		return
	}

	if err := h.db.DeclineInvitation(inv); err != nil {
		fmt.Printf("❌ DeclineInvitation %s failed: %v\n", inv.ID, err)
		utils.WriteInternalServerErrorResponse(w, "Failed to decline invitation")
		return
	}
	utils.WriteMessageResponse(w, "Invitation declined", inv)
}
