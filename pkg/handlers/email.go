package handlers

import (
	"fmt"
	"net/http"

	"github.com/alexarts74/trip-indo/pkg/config"
	"github.com/alexarts74/trip-indo/pkg/mailer"
	"github.com/alexarts74/trip-indo/pkg/middleware"
	"github.com/alexarts74/trip-indo/pkg/utils"
)

// EmailHandler 独立的邀请邮件端点，给前端直接调用
type EmailHandler struct {
	config *config.Config
	mailer mailer.Mailer
}

// NewEmailHandler 创建邮件处理器
func NewEmailHandler(cfg *config.Config, m mailer.Mailer) *EmailHandler {
	return &EmailHandler{config: cfg, mailer: m}
}

// SendInvitation POST /api/send-invitation
// 公开端点：四个字段都必填，缺一个就400；Resend失败返回500。
func (h *EmailHandler) SendInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TripName     string `json:"tripName"`
		InviterEmail string `json:"inviterEmail"`
		InviteeEmail string `json:"inviteeEmail"`
		TripID       string `json:"tripId"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	if req.TripName == "" || req.InviterEmail == "" || req.InviteeEmail == "" || req.TripID == "" {
		utils.WriteBadRequestResponse(w, "tripName, inviterEmail, inviteeEmail and tripId are required")
		return
	}

	caller := "anonymous"
	if user, ok := middleware.GetUserFromContext(r.Context()); ok {
		caller = user.Email
	}
	fmt.Printf("📧 Sending invitation email: trip=%q inviter=%s invitee=%s caller=%s\n",
		req.TripName, req.InviterEmail, req.InviteeEmail, caller)

	id, err := h.mailer.SendInvitation(mailer.InvitationEmail{
		TripID:       req.TripID,
		TripName:     req.TripName,
		InviterEmail: utils.NormalizeEmail(req.InviterEmail),
		InviteeEmail: utils.NormalizeEmail(req.InviteeEmail),
	})
	if err != nil {
		fmt.Printf("❌ Resend error: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to send invitation email")
		return
	}

	utils.WriteMessageResponse(w, "Invitation email sent", map[string]interface{}{
		"id": id,
	})
}
