package database

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexarts74/trip-indo/pkg/models"

	"github.com/google/uuid"
)

// LocalDatabase 内存数据库实现（本地开发兜底，重启即丢）
type LocalDatabase struct {
	mu sync.RWMutex

	users        map[string]*models.User
	profiles     map[string]*models.Profile
	trips        map[string]*models.Trip
	destinations map[string]*models.Destination
	activities   map[string]*models.Activity
	expenses     map[string]*models.Expense
	shares       map[string]*models.ExpenseShare
	participants map[string]*models.Participant
	invitations  map[string]*models.Invitation
}

// NewLocalDatabase 创建内存数据库实例
func NewLocalDatabase() DatabaseInterface {
	return &LocalDatabase{
		users:        make(map[string]*models.User),
		profiles:     make(map[string]*models.Profile),
		trips:        make(map[string]*models.Trip),
		destinations: make(map[string]*models.Destination),
		activities:   make(map[string]*models.Activity),
		expenses:     make(map[string]*models.Expense),
		shares:       make(map[string]*models.ExpenseShare),
		participants: make(map[string]*models.Participant),
		invitations:  make(map[string]*models.Invitation),
	}
}

// ==================== Users ====================

func (db *LocalDatabase) CreateUser(user *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user with email %s already exists", user.Email)
		}
	}

	now := time.Now().UTC()
	user.ID = uuid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	db.users[user.ID] = &stored
	return nil
}

func (db *LocalDatabase) GetUserByEmail(email string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (db *LocalDatabase) GetUserByID(id string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	copied := *u
	return &copied, nil
}

// ==================== Profiles ====================

func (db *LocalDatabase) CreateProfile(p *models.Profile) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *p
	db.profiles[p.ID] = &stored
	return nil
}

func (db *LocalDatabase) GetProfilesByIDs(ids []string) ([]models.Profile, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var result []models.Profile
	for _, id := range ids {
		if p, ok := db.profiles[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

// ==================== Trips ====================

func (db *LocalDatabase) CreateTrip(trip *models.Trip) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	trip.ID = uuid.New().String()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	stored := *trip
	db.trips[trip.ID] = &stored
	return nil
}

func (db *LocalDatabase) GetTrip(id string) (*models.Trip, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.trips[id]
	if !ok {
		return nil, fmt.Errorf("trip not found")
	}
	copied := *t
	return &copied, nil
}

func (db *LocalDatabase) ListTripsByOwner(userID string) ([]models.Trip, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var trips []models.Trip
	for _, t := range db.trips {
		if t.UserID == userID {
			trips = append(trips, *t)
		}
	}
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})
	return trips, nil
}

func (db *LocalDatabase) UpdateTrip(trip *models.Trip) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, ok := db.trips[trip.ID]
	if !ok {
		return fmt.Errorf("trip not found")
	}
	trip.UserID = existing.UserID
	trip.CreatedAt = existing.CreatedAt
	trip.UpdatedAt = time.Now().UTC()

	stored := *trip
	db.trips[trip.ID] = &stored
	return nil
}

func (db *LocalDatabase) DeleteTrip(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.trips, id)
	return nil
}

// ==================== Destinations ====================

func (db *LocalDatabase) CreateDestination(d *models.Destination) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	d.ID = uuid.New().String()
	d.CreatedAt = time.Now().UTC()

	stored := *d
	db.destinations[d.ID] = &stored
	return nil
}

func (db *LocalDatabase) GetDestination(id string) (*models.Destination, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	d, ok := db.destinations[id]
	if !ok {
		return nil, fmt.Errorf("destination not found")
	}
	copied := *d
	return &copied, nil
}

func (db *LocalDatabase) ListDestinationsByTrip(tripID string) ([]models.Destination, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var dests []models.Destination
	for _, d := range db.destinations {
		if d.TripID == tripID {
			dests = append(dests, *d)
		}
	}
	sort.SliceStable(dests, func(i, j int) bool {
		return dests[i].CreatedAt.Before(dests[j].CreatedAt)
	})
	return dests, nil
}

func (db *LocalDatabase) UpdateDestination(d *models.Destination) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, ok := db.destinations[d.ID]
	if !ok {
		return fmt.Errorf("destination not found")
	}
	d.TripID = existing.TripID
	d.CreatedAt = existing.CreatedAt

	stored := *d
	db.destinations[d.ID] = &stored
	return nil
}

func (db *LocalDatabase) DeleteDestination(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.destinations, id)
	return nil
}

// ==================== Activities ====================

func (db *LocalDatabase) CreateActivity(a *models.Activity) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()

	stored := *a
	db.activities[a.ID] = &stored
	return nil
}

func (db *LocalDatabase) GetActivity(id string) (*models.Activity, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	a, ok := db.activities[id]
	if !ok {
		return nil, fmt.Errorf("activity not found")
	}
	copied := *a
	return &copied, nil
}

func (db *LocalDatabase) ListActivitiesByDestination(destinationID string) ([]models.Activity, error) {
	return db.ListActivitiesByDestinations([]string{destinationID})
}

func (db *LocalDatabase) ListActivitiesByDestinations(destinationIDs []string) ([]models.Activity, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	wanted := make(map[string]bool, len(destinationIDs))
	for _, id := range destinationIDs {
		wanted[id] = true
	}

	var acts []models.Activity
	for _, a := range db.activities {
		if wanted[a.DestinationID] {
			acts = append(acts, *a)
		}
	}
	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].CreatedAt.Before(acts[j].CreatedAt)
	})
	return acts, nil
}

func (db *LocalDatabase) UpdateActivity(a *models.Activity) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, ok := db.activities[a.ID]
	if !ok {
		return fmt.Errorf("activity not found")
	}
	a.DestinationID = existing.DestinationID
	a.CreatedAt = existing.CreatedAt

	stored := *a
	db.activities[a.ID] = &stored
	return nil
}

func (db *LocalDatabase) DeleteActivity(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.activities, id)
	return nil
}

// ==================== Expenses ====================

func (db *LocalDatabase) CreateExpense(e *models.Expense) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()

	stored := *e
	db.expenses[e.ID] = &stored
	return nil
}

func (db *LocalDatabase) GetExpense(id string) (*models.Expense, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	e, ok := db.expenses[id]
	if !ok {
		return nil, fmt.Errorf("expense not found")
	}
	copied := *e
	return &copied, nil
}

func (db *LocalDatabase) ListExpensesByTrip(tripID string) ([]models.Expense, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var expenses []models.Expense
	for _, e := range db.expenses {
		if e.TripID == tripID {
			expenses = append(expenses, *e)
		}
	}
	// date 是 YYYY-MM-DD 字符串，字典序即时间序
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date > expenses[j].Date
	})
	return expenses, nil
}

func (db *LocalDatabase) DeleteExpense(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.expenses, id)
	return nil
}

func (db *LocalDatabase) CreateExpenseShares(shares []models.ExpenseShare) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range shares {
		shares[i].ID = uuid.New().String()
		stored := shares[i]
		db.shares[stored.ID] = &stored
	}
	return nil
}

func (db *LocalDatabase) ListExpenseShares(expenseID string) ([]models.ExpenseShare, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var result []models.ExpenseShare
	for _, s := range db.shares {
		if s.ExpenseID == expenseID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (db *LocalDatabase) DeleteExpenseShares(expenseID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, s := range db.shares {
		if s.ExpenseID == expenseID {
			delete(db.shares, id)
		}
	}
	return nil
}

// ==================== Participants ====================

func (db *LocalDatabase) CreateParticipant(p *models.Participant) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p.ID = uuid.New().String()
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}

	stored := *p
	db.participants[p.ID] = &stored
	return nil
}

func (db *LocalDatabase) GetParticipant(id string) (*models.Participant, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	p, ok := db.participants[id]
	if !ok {
		return nil, fmt.Errorf("participant not found")
	}
	copied := *p
	return &copied, nil
}

func (db *LocalDatabase) ListParticipantsByTrip(tripID string) ([]models.Participant, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var result []models.Participant
	for _, p := range db.participants {
		if p.TripID == tripID {
			result = append(result, *p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].JoinedAt.Before(result[j].JoinedAt)
	})
	return result, nil
}

func (db *LocalDatabase) DeleteParticipant(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.participants, id)
	return nil
}

func (db *LocalDatabase) GetTripRole(tripID, userID string) (models.ParticipantRole, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tripRoleLocked(tripID, userID)
}

func (db *LocalDatabase) tripRoleLocked(tripID, userID string) (models.ParticipantRole, bool) {
	for _, p := range db.participants {
		if p.TripID == tripID && p.UserID != nil && *p.UserID == userID {
			return p.Role, true
		}
	}
	return "", false
}

func (db *LocalDatabase) ListPendingParticipantsByEmail(email string) ([]models.Participant, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	var result []models.Participant
	for _, p := range db.participants {
		if p.UserID == nil && p.Email != nil &&
			strings.ToLower(strings.TrimSpace(*p.Email)) == email {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (db *LocalDatabase) BindParticipant(participantID, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.participants[participantID]
	if !ok {
		return fmt.Errorf("participant not found")
	}
	if p.UserID != nil {
		return fmt.Errorf("participant %s already bound", participantID)
	}
	// 同一行程同一用户只允许一行，对齐 (trip_id, user_id) 唯一索引
	for _, other := range db.participants {
		if other.TripID == p.TripID && other.UserID != nil && *other.UserID == userID {
			return fmt.Errorf("user %s is already a participant of trip %s", userID, p.TripID)
		}
	}
	uid := userID
	p.UserID = &uid
	p.Email = nil
	return nil
}

// ==================== Invitations ====================

func (db *LocalDatabase) CreateInvitation(inv *models.Invitation) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	inv.ID = uuid.New().String()
	inv.CreatedAt = time.Now().UTC()
	if t, ok := db.trips[inv.TripID]; ok {
		inv.TripName = t.Name
	}

	stored := *inv
	db.invitations[inv.ID] = &stored
	return nil
}

func (db *LocalDatabase) GetInvitation(id string) (*models.Invitation, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	inv, ok := db.invitations[id]
	if !ok {
		return nil, fmt.Errorf("invitation not found")
	}
	copied := *inv
	if t, ok := db.trips[inv.TripID]; ok {
		copied.TripName = t.Name
	}
	return &copied, nil
}

func (db *LocalDatabase) ListInvitationsByInviter(userID string) ([]models.Invitation, error) {
	return db.listInvitations(func(inv *models.Invitation) bool {
		return inv.InviterID == userID
	})
}

func (db *LocalDatabase) ListInvitationsByEmail(email string) ([]models.Invitation, error) {
	return db.listInvitations(func(inv *models.Invitation) bool {
		return strings.EqualFold(inv.InviteeEmail, email)
	})
}

func (db *LocalDatabase) listInvitations(match func(*models.Invitation) bool) ([]models.Invitation, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var result []models.Invitation
	for _, inv := range db.invitations {
		if match(inv) {
			copied := *inv
			if t, ok := db.trips[inv.TripID]; ok {
				copied.TripName = t.Name
			}
			result = append(result, copied)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (db *LocalDatabase) HasPendingInvitation(tripID, email string) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, inv := range db.invitations {
		if inv.TripID == tripID && inv.Status == models.InvitationPending &&
			strings.EqualFold(inv.InviteeEmail, email) {
			return true, nil
		}
	}
	return false, nil
}

func (db *LocalDatabase) AcceptInvitation(inv *models.Invitation, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored, ok := db.invitations[inv.ID]
	if !ok {
		return fmt.Errorf("invitation not found")
	}
	if stored.Status != models.InvitationPending {
		return fmt.Errorf("invitation already decided")
	}
	stored.Status = models.InvitationAccepted
	inv.Status = models.InvitationAccepted

	// 已经是成员就不重复插入
	if _, ok := db.tripRoleLocked(stored.TripID, userID); !ok {
		uid := userID
		p := &models.Participant{
			ID:       uuid.New().String(),
			TripID:   stored.TripID,
			UserID:   &uid,
			Role:     models.RoleParticipant,
			JoinedAt: time.Now().UTC(),
		}
		db.participants[p.ID] = p
	}
	return nil
}

func (db *LocalDatabase) DeclineInvitation(inv *models.Invitation) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored, ok := db.invitations[inv.ID]
	if !ok {
		return fmt.Errorf("invitation not found")
	}
	if stored.Status != models.InvitationPending {
		return fmt.Errorf("invitation already decided")
	}
	stored.Status = models.InvitationDeclined
	inv.Status = models.InvitationDeclined
	return nil
}

func (db *LocalDatabase) DeleteInvitationsByTrip(tripID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, inv := range db.invitations {
		if inv.TripID == tripID {
			delete(db.invitations, id)
		}
	}
	return nil
}

// ==================== Misc ====================

func (db *LocalDatabase) HealthCheck() error {
	return nil
}

func (db *LocalDatabase) Close() error {
	return nil
}
