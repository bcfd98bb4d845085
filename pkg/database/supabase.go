package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexarts74/trip-indo/pkg/models"
)

// SupabaseDatabase Supabase数据库实现（PostgREST）
type SupabaseDatabase struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSupabaseDatabase 创建Supabase数据库实例
func NewSupabaseDatabase(u, key string) DatabaseInterface {
	// 确保URL格式正确
	if !strings.HasPrefix(u, "http") {
		u = "https://" + u
	}

	return &SupabaseDatabase{
		baseURL: u,
		apiKey:  key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// makeRequest 发送HTTP请求到Supabase
func (db *SupabaseDatabase) makeRequest(method, endpoint string, body interface{}) ([]byte, error) {
	return db.makeRequestWithHeaders(method, endpoint, body, nil)
}

// makeRequestWithHeaders 发送HTTP请求到Supabase（支持自定义头）
func (db *SupabaseDatabase) makeRequestWithHeaders(method, endpoint string, body interface{}, customHeaders map[string]string) ([]byte, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, db.baseURL+"/rest/v1"+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// 设置请求头
	req.Header.Set("apikey", db.apiKey)
	req.Header.Set("Authorization", "Bearer "+db.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	for key, value := range customHeaders {
		req.Header.Set(key, value)
	}

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// eq PostgREST 等值过滤参数
func eq(column, value string) string {
	return column + "=eq." + url.QueryEscape(value)
}

// ilikeEmail 大小写不敏感的邮箱等值过滤。
// LIKE模式里 \ % _ 是元字符，邮箱local part常见下划线，必须转义，
// 否则 john_doe@x.com 会匹配到 johnadoe@x.com。
func ilikeEmail(column, email string) string {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(email)
	return column + "=ilike." + url.QueryEscape(escaped)
}

// ==================== Users ====================

// supabaseUser 带 password_hash 的行（models.User 的 json:"-" 挡住了反序列化）
type supabaseUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (su *supabaseUser) toModel() *models.User {
	return &models.User{
		ID:        su.ID,
		Email:     su.Email,
		Password:  su.PasswordHash,
		CreatedAt: su.CreatedAt,
		UpdatedAt: su.UpdatedAt,
	}
}

func (db *SupabaseDatabase) CreateUser(user *models.User) error {
	data, err := db.makeRequest("POST", "/users", map[string]interface{}{
		"email":         user.Email,
		"password_hash": user.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	var rows []supabaseUser
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("failed to parse created user")
	}
	*user = *rows[0].toModel()
	return nil
}

func (db *SupabaseDatabase) GetUserByEmail(email string) (*models.User, error) {
	endpoint := "/users?" + ilikeEmail("email", email) + "&select=*"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []supabaseUser
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return rows[0].toModel(), nil
}

func (db *SupabaseDatabase) GetUserByID(id string) (*models.User, error) {
	data, err := db.makeRequest("GET", "/users?"+eq("id", id)+"&select=*", nil)
	if err != nil {
		return nil, err
	}
	var rows []supabaseUser
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return rows[0].toModel(), nil
}

// ==================== Profiles ====================

func (db *SupabaseDatabase) CreateProfile(p *models.Profile) error {
	_, err := db.makeRequest("POST", "/profiles", map[string]interface{}{
		"id":         p.ID,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
	})
	return err
}

func (db *SupabaseDatabase) GetProfilesByIDs(ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	// PostgREST in 过滤: id=in.(a,b,c)
	endpoint := "/profiles?id=in.(" + strings.Join(ids, ",") + ")&select=*"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Profile
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ==================== Trips ====================

func (db *SupabaseDatabase) CreateTrip(trip *models.Trip) error {
	payload := map[string]interface{}{
		"user_id":     trip.UserID,
		"name":        trip.Name,
		"description": trip.Description,
		"budget":      trip.Budget,
	}
	if trip.StartDate != "" {
		payload["start_date"] = trip.StartDate
	}
	if trip.EndDate != "" {
		payload["end_date"] = trip.EndDate
	}
	data, err := db.makeRequest("POST", "/trips", payload)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	var rows []models.Trip
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		*trip = rows[0]
	}
	return nil
}

func (db *SupabaseDatabase) GetTrip(id string) (*models.Trip, error) {
	data, err := db.makeRequest("GET", "/trips?"+eq("id", id)+"&select=*", nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Trip
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("trip not found")
	}
	return &rows[0], nil
}

func (db *SupabaseDatabase) ListTripsByOwner(userID string) ([]models.Trip, error) {
	endpoint := "/trips?" + eq("user_id", userID) + "&select=*&order=created_at.desc"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Trip
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (db *SupabaseDatabase) UpdateTrip(trip *models.Trip) error {
	if trip.ID == "" {
		return fmt.Errorf("trip ID is required for update")
	}
	payload := map[string]interface{}{
		"name":        trip.Name,
		"description": trip.Description,
		"budget":      trip.Budget,
		"updated_at":  time.Now().UTC().Format(time.RFC3339),
	}
	if trip.StartDate != "" {
		payload["start_date"] = trip.StartDate
	}
	if trip.EndDate != "" {
		payload["end_date"] = trip.EndDate
	}
	_, err := db.makeRequest("PATCH", "/trips?"+eq("id", trip.ID), payload)
	return err
}

func (db *SupabaseDatabase) DeleteTrip(id string) error {
	_, err := db.makeRequest("DELETE", "/trips?"+eq("id", id), nil)
	return err
}

// ==================== Destinations ====================

func (db *SupabaseDatabase) CreateDestination(d *models.Destination) error {
	data, err := db.makeRequest("POST", "/destinations", map[string]interface{}{
		"trip_id":     d.TripID,
		"name":        d.Name,
		"description": d.Description,
		"country":     d.Country,
		"address":     d.Address,
		"price":       d.Price,
	})
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	var rows []models.Destination
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		*d = rows[0]
	}
	return nil
}

func (db *SupabaseDatabase) GetDestination(id string) (*models.Destination, error) {
	data, err := db.makeRequest("GET", "/destinations?"+eq("id", id)+"&select=*", nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Destination
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("destination not found")
	}
	return &rows[0], nil
}

func (db *SupabaseDatabase) ListDestinationsByTrip(tripID string) ([]models.Destination, error) {
	endpoint := "/destinations?" + eq("trip_id", tripID) + "&select=*&order=created_at.asc"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Destination
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (db *SupabaseDatabase) UpdateDestination(d *models.Destination) error {
	_, err := db.makeRequest("PATCH", "/destinations?"+eq("id", d.ID), map[string]interface{}{
		"name":        d.Name,
		"description": d.Description,
		"country":     d.Country,
		"address":     d.Address,
		"price":       d.Price,
	})
	return err
}

func (db *SupabaseDatabase) DeleteDestination(id string) error {
	_, err := db.makeRequest("DELETE", "/destinations?"+eq("id", id), nil)
	return err
}

// ==================== Activities ====================

func (db *SupabaseDatabase) CreateActivity(a *models.Activity) error {
	data, err := db.makeRequest("POST", "/activities", map[string]interface{}{
		"destination_id": a.DestinationID,
		"name":           a.Name,
		"description":    a.Description,
		"price":          a.Price,
		"duration":       a.Duration,
	})
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	var rows []models.Activity
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		*a = rows[0]
	}
	return nil
}

func (db *SupabaseDatabase) GetActivity(id string) (*models.Activity, error) {
	data, err := db.makeRequest("GET", "/activities?"+eq("id", id)+"&select=*", nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Activity
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("activity not found")
	}
	return &rows[0], nil
}

func (db *SupabaseDatabase) ListActivitiesByDestination(destinationID string) ([]models.Activity, error) {
	endpoint := "/activities?" + eq("destination_id", destinationID) + "&select=*&order=created_at.asc"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Activity
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (db *SupabaseDatabase) ListActivitiesByDestinations(destinationIDs []string) ([]models.Activity, error) {
	if len(destinationIDs) == 0 {
		return nil, nil
	}
	endpoint := "/activities?destination_id=in.(" + strings.Join(destinationIDs, ",") + ")&select=*&order=created_at.asc"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Activity
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (db *SupabaseDatabase) UpdateActivity(a *models.Activity) error {
	_, err := db.makeRequest("PATCH", "/activities?"+eq("id", a.ID), map[string]interface{}{
		"name":        a.Name,
		"description": a.Description,
		"price":       a.Price,
		"duration":    a.Duration,
	})
	return err
}

func (db *SupabaseDatabase) DeleteActivity(id string) error {
	_, err := db.makeRequest("DELETE", "/activities?"+eq("id", id), nil)
	return err
}

// ==================== Expenses ====================

func (db *SupabaseDatabase) CreateExpense(e *models.Expense) error {
	payload := map[string]interface{}{
		"trip_id":  e.TripID,
		"title":    e.Title,
		"amount":   e.Amount,
		"category": e.Category,
		"paid_by":  e.PaidBy,
		"paid_for": e.PaidFor,
	}
	if e.Date != "" {
		payload["date"] = e.Date
	}
	data, err := db.makeRequest("POST", "/expenses", payload)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	var rows []models.Expense
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		*e = rows[0]
	}
	return nil
}

func (db *SupabaseDatabase) GetExpense(id string) (*models.Expense, error) {
	data, err := db.makeRequest("GET", "/expenses?"+eq("id", id)+"&select=*", nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Expense
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("expense not found")
	}
	return &rows[0], nil
}

func (db *SupabaseDatabase) ListExpensesByTrip(tripID string) ([]models.Expense, error) {
	endpoint := "/expenses?" + eq("trip_id", tripID) + "&select=*&order=date.desc"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Expense
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (db *SupabaseDatabase) DeleteExpense(id string) error {
	_, err := db.makeRequest("DELETE", "/expenses?"+eq("id", id), nil)
	return err
}

func (db *SupabaseDatabase) CreateExpenseShares(shares []models.ExpenseShare) error {
	if len(shares) == 0 {
		return nil
	}
	payload := make([]map[string]interface{}, 0, len(shares))
	for _, s := range shares {
		payload = append(payload, map[string]interface{}{
			"expense_id": s.ExpenseID,
			"user_id":    s.UserID,
			"amount":     s.Amount,
		})
	}
	_, err := db.makeRequest("POST", "/expense_shares", payload)
	return err
}

func (db *SupabaseDatabase) ListExpenseShares(expenseID string) ([]models.ExpenseShare, error) {
	data, err := db.makeRequest("GET", "/expense_shares?"+eq("expense_id", expenseID)+"&select=*", nil)
	if err != nil {
		return nil, err
	}
	var rows []models.ExpenseShare
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (db *SupabaseDatabase) DeleteExpenseShares(expenseID string) error {
	_, err := db.makeRequest("DELETE", "/expense_shares?"+eq("expense_id", expenseID), nil)
	return err
}

// ==================== Participants ====================

func (db *SupabaseDatabase) CreateParticipant(p *models.Participant) error {
	data, err := db.makeRequest("POST", "/trip_participants", map[string]interface{}{
		"trip_id": p.TripID,
		"user_id": p.UserID,
		"email":   p.Email,
		"role":    string(p.Role),
	})
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	var rows []models.Participant
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		*p = rows[0]
	}
	return nil
}

func (db *SupabaseDatabase) GetParticipant(id string) (*models.Participant, error) {
	data, err := db.makeRequest("GET", "/trip_participants?"+eq("id", id)+"&select=*", nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Participant
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("participant not found")
	}
	return &rows[0], nil
}

func (db *SupabaseDatabase) ListParticipantsByTrip(tripID string) ([]models.Participant, error) {
	endpoint := "/trip_participants?" + eq("trip_id", tripID) + "&select=*&order=joined_at.asc"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Participant
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (db *SupabaseDatabase) DeleteParticipant(id string) error {
	_, err := db.makeRequest("DELETE", "/trip_participants?"+eq("id", id), nil)
	return err
}

func (db *SupabaseDatabase) GetTripRole(tripID, userID string) (models.ParticipantRole, bool) {
	endpoint := "/trip_participants?" + eq("trip_id", tripID) + "&" + eq("user_id", userID) + "&select=role&limit=1"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return "", false
	}
	var rows []struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return "", false
	}
	return models.ParticipantRole(rows[0].Role), true
}

func (db *SupabaseDatabase) ListPendingParticipantsByEmail(email string) ([]models.Participant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	endpoint := "/trip_participants?" + ilikeEmail("email", email) + "&user_id=is.null&select=*"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Participant
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (db *SupabaseDatabase) BindParticipant(participantID, userID string) error {
	endpoint := "/trip_participants?" + eq("id", participantID) + "&user_id=is.null"
	data, err := db.makeRequest("PATCH", endpoint, map[string]interface{}{
		"user_id": userID,
		"email":   nil,
	})
	if err != nil {
		return fmt.Errorf("failed to bind participant: %w", err)
	}
	var rows []models.Participant
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("participant %s already bound", participantID)
	}
	return nil
}

// ==================== Invitations ====================

func (db *SupabaseDatabase) CreateInvitation(inv *models.Invitation) error {
	data, err := db.makeRequest("POST", "/trip_invitations", map[string]interface{}{
		"trip_id":       inv.TripID,
		"inviter_id":    inv.InviterID,
		"invitee_email": inv.InviteeEmail,
		"status":        string(inv.Status),
	})
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	var rows []models.Invitation
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		*inv = rows[0]
	}
	return nil
}

func (db *SupabaseDatabase) GetInvitation(id string) (*models.Invitation, error) {
	data, err := db.makeRequest("GET", "/trip_invitations?"+eq("id", id)+"&select=*", nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Invitation
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("invitation not found")
	}
	db.fillTripNames(rows)
	return &rows[0], nil
}

func (db *SupabaseDatabase) ListInvitationsByInviter(userID string) ([]models.Invitation, error) {
	endpoint := "/trip_invitations?" + eq("inviter_id", userID) + "&select=*&order=created_at.desc"
	return db.listInvitations(endpoint)
}

func (db *SupabaseDatabase) ListInvitationsByEmail(email string) ([]models.Invitation, error) {
	endpoint := "/trip_invitations?" + ilikeEmail("invitee_email", email) + "&select=*&order=created_at.desc"
	return db.listInvitations(endpoint)
}

func (db *SupabaseDatabase) listInvitations(endpoint string) ([]models.Invitation, error) {
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.Invitation
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	db.fillTripNames(rows)
	return rows, nil
}

// fillTripNames 批量回填行程名（PostgREST 不走 JOIN，逐个 trip 查一次）
func (db *SupabaseDatabase) fillTripNames(invitations []models.Invitation) {
	names := map[string]string{}
	for i := range invitations {
		tripID := invitations[i].TripID
		if name, ok := names[tripID]; ok {
			invitations[i].TripName = name
			continue
		}
		data, err := db.makeRequest("GET", "/trips?"+eq("id", tripID)+"&select=name", nil)
		if err != nil {
			continue
		}
		var rows []struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &rows) == nil && len(rows) > 0 {
			names[tripID] = rows[0].Name
			invitations[i].TripName = rows[0].Name
		}
	}
}

func (db *SupabaseDatabase) HasPendingInvitation(tripID, email string) (bool, error) {
	endpoint := "/trip_invitations?" + eq("trip_id", tripID) +
		"&" + ilikeEmail("invitee_email", email) + "&status=eq.pending&select=id&limit=1"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return false, err
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// AcceptInvitation REST 模式没有事务，按顺序：状态翻转（带 status=eq.pending 守卫），
// 再做存在性检查后插 participant。重复 accept 在第一步就会停下。
func (db *SupabaseDatabase) AcceptInvitation(inv *models.Invitation, userID string) error {
	endpoint := "/trip_invitations?" + eq("id", inv.ID) + "&status=eq.pending"
	data, err := db.makeRequest("PATCH", endpoint, map[string]interface{}{"status": "accepted"})
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	var updated []models.Invitation
	if err := json.Unmarshal(data, &updated); err != nil || len(updated) == 0 {
		return fmt.Errorf("invitation already decided")
	}

	if _, ok := db.GetTripRole(inv.TripID, userID); !ok {
		_, err = db.makeRequest("POST", "/trip_participants", map[string]interface{}{
			"trip_id": inv.TripID,
			"user_id": userID,
			"role":    "participant",
		})
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}
	}

	inv.Status = models.InvitationAccepted
	return nil
}

func (db *SupabaseDatabase) DeclineInvitation(inv *models.Invitation) error {
	endpoint := "/trip_invitations?" + eq("id", inv.ID) + "&status=eq.pending"
	data, err := db.makeRequest("PATCH", endpoint, map[string]interface{}{"status": "declined"})
	if err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	var updated []models.Invitation
	if err := json.Unmarshal(data, &updated); err != nil || len(updated) == 0 {
		return fmt.Errorf("invitation already decided")
	}
	inv.Status = models.InvitationDeclined
	return nil
}

func (db *SupabaseDatabase) DeleteInvitationsByTrip(tripID string) error {
	_, err := db.makeRequest("DELETE", "/trip_invitations?"+eq("trip_id", tripID), nil)
	if err != nil {
		return fmt.Errorf("failed to delete invitations: %w", err)
	}
	return nil
}

// ==================== Misc ====================

// HealthCheck 健康检查
func (db *SupabaseDatabase) HealthCheck() error {
	_, err := db.makeRequest("GET", "/trips?select=id&limit=1", nil)
	if err != nil {
		return fmt.Errorf("supabase health check failed: %w", err)
	}
	return nil
}

// Close 关闭连接（REST 客户端无状态）
func (db *SupabaseDatabase) Close() error {
	return nil
}
