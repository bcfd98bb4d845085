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
	"github.com/shopspring/decimal"
)

// ExpensesHandler 开销处理器
type ExpensesHandler struct {
	config *config.Config
	db     database.DatabaseInterface
}

// NewExpensesHandler 创建开销处理器
func NewExpensesHandler(cfg *config.Config, db database.DatabaseInterface) *ExpensesHandler {
	return &ExpensesHandler{config: cfg, db: db}
}

type expenseRequest struct {
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	PaidBy   string  `json:"paid_by"`
	PaidFor  *string `json:"paid_for"`
	// 为空时按参与者均摊
	Shares []models.ExpenseShare `json:"shares"`
}

func (req *expenseRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if req.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if req.Category != "" && !validCategory(req.Category) {
		return fmt.Errorf("unknown category %q", req.Category)
	}
	return nil
}

func validCategory(category string) bool {
	for _, c := range models.ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Create POST /api/trips/{tripID}/expenses
func (h *ExpensesHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	if _, ok := tripRole(h.db, tripID, user.ID); !ok {
		utils.WriteForbiddenResponse(w, "Not a participant of this trip")
		return
	}

	var req expenseRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		utils.WriteValidationErrorResponse(w, err.Error(), "")
		return
	}

	paidBy := req.PaidBy
	if paidBy == "" {
		paidBy = user.ID
	}

	expense := &models.Expense{
		TripID:   tripID,
		Title:    strings.TrimSpace(req.Title),
		Amount:   req.Amount,
		Category: req.Category,
		Date:     req.Date,
		PaidBy:   paidBy,
		PaidFor:  req.PaidFor,
	}
	if err := h.db.CreateExpense(expense); err != nil {
		fmt.Printf("❌ CreateExpense failed: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to create expense")
		return
	}

	shares := req.Shares
	if len(shares) == 0 && req.PaidFor == nil {
		// 未指定分摊时，按绑定了用户的参与者均摊
		shares = h.equalShares(tripID, expense)
	}
	for i := range shares {
		shares[i].ExpenseID = expense.ID
	}
	if len(shares) > 0 {
		if err := h.db.CreateExpenseShares(shares); err != nil {
			fmt.Printf("⚠️ CreateExpense: failed to create shares for %s: %v\n", expense.ID, err)
		}
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{
		"expense": expense,
		"shares":  shares,
	})
}

// equalShares 均摊：金额按decimal等分，余数进到最后一人
func (h *ExpensesHandler) equalShares(tripID string, expense *models.Expense) []models.ExpenseShare {
	participants, err := h.db.ListParticipantsByTrip(tripID)
	if err != nil {
		return nil
	}

	var userIDs []string
	for _, p := range participants {
		if p.UserID != nil {
			userIDs = append(userIDs, *p.UserID)
		}
	}
	if len(userIDs) == 0 {
		return nil
	}

	total := decimal.NewFromFloat(expense.Amount)
	per := total.Div(decimal.NewFromInt(int64(len(userIDs)))).Round(2)

	shares := make([]models.ExpenseShare, 0, len(userIDs))
	allocated := decimal.Zero
	for i, uid := range userIDs {
		amount := per
		if i == len(userIDs)-1 {
			amount = total.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		shares = append(shares, models.ExpenseShare{
			ExpenseID: expense.ID,
			UserID:    uid,
			Amount:    amount.InexactFloat64(),
		})
	}
	return shares
}

// List GET /api/trips/{tripID}/expenses
func (h *ExpensesHandler) List(w http.ResponseWriter, r *http.Request) {
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

	expenses, err := h.db.ListExpensesByTrip(tripID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}

	utils.WriteSuccessResponse(w, expenses)
}

// GetShares GET /api/expenses/{expenseID}/shares
func (h *ExpensesHandler) GetShares(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	expenseID := chiRoute.URLParam(r, "expenseID")

	expense, err := h.db.GetExpense(expenseID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Expense not found")
		return
	}
	if _, ok := tripRole(h.db, expense.TripID, user.ID); !ok {
		utils.WriteForbiddenResponse(w, "Not a participant of this trip")
		return
	}

	shares, err := h.db.ListExpenseShares(expenseID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list expense shares")
		return
	}
	if shares == nil {
		shares = []models.ExpenseShare{}
	}

	utils.WriteSuccessResponse(w, shares)
}

// Delete DELETE /api/expenses/{expenseID}
// shares先删，再删expense本体。
func (h *ExpensesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	expenseID := chiRoute.URLParam(r, "expenseID")

	expense, err := h.db.GetExpense(expenseID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "Expense not found")
		return
	}

	role, ok := tripRole(h.db, expense.TripID, user.ID)
	if !ok {
		utils.WriteForbiddenResponse(w, "Not a participant of this trip")
		return
	}
	// 只有记账人和owner能删
	if expense.PaidBy != user.ID && role != models.RoleOwner {
		utils.WriteForbiddenResponse(w, "Only the payer or the trip owner can delete an expense")
		return
	}

	if err := h.db.DeleteExpenseShares(expenseID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete expense shares")
		return
	}
	if err := h.db.DeleteExpense(expenseID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete expense")
		return
	}

	utils.WriteMessageResponse(w, "Expense deleted", nil)
}
