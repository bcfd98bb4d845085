package database_test

import (
	"testing"
	"time"

	"github.com/alexarts74/trip-indo/pkg/database"
	"github.com/alexarts74/trip-indo/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, db database.DatabaseInterface, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "x"}
	require.NoError(t, db.CreateUser(u))
	return u
}

func newTrip(t *testing.T, db database.DatabaseInterface, ownerID, name string) *models.Trip {
	t.Helper()
	tr := &models.Trip{UserID: ownerID, Name: name, Budget: 1000}
	require.NoError(t, db.CreateTrip(tr))
	return tr
}

func TestLocalUserEmailLookupCaseInsensitive(t *testing.T) {
	db := database.NewLocalDatabase()
	u := newUser(t, db, "alice@example.com")

	found, err := db.GetUserByEmail("ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = db.GetUserByEmail("nobody@example.com")
	assert.Error(t, err)
}

func TestLocalTripOrdering(t *testing.T) {
	db := database.NewLocalDatabase()
	owner := newUser(t, db, "owner@example.com")

	first := newTrip(t, db, owner.ID, "first")
	time.Sleep(2 * time.Millisecond)
	second := newTrip(t, db, owner.ID, "second")

	trips, err := db.ListTripsByOwner(owner.ID)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	// 新的在前
	assert.Equal(t, second.ID, trips[0].ID)
	assert.Equal(t, first.ID, trips[1].ID)
}

func TestLocalDestinationActivityOrdering(t *testing.T) {
	db := database.NewLocalDatabase()
	owner := newUser(t, db, "owner@example.com")
	trip := newTrip(t, db, owner.ID, "trip")

	d1 := &models.Destination{TripID: trip.ID, Name: "Bali"}
	require.NoError(t, db.CreateDestination(d1))
	time.Sleep(2 * time.Millisecond)
	d2 := &models.Destination{TripID: trip.ID, Name: "Lombok"}
	require.NoError(t, db.CreateDestination(d2))

	dests, err := db.ListDestinationsByTrip(trip.ID)
	require.NoError(t, err)
	require.Len(t, dests, 2)
	// 旧的在前
	assert.Equal(t, "Bali", dests[0].Name)

	a1 := &models.Activity{DestinationID: d1.ID, Name: "Surf"}
	require.NoError(t, db.CreateActivity(a1))
	time.Sleep(2 * time.Millisecond)
	a2 := &models.Activity{DestinationID: d2.ID, Name: "Hike"}
	require.NoError(t, db.CreateActivity(a2))

	acts, err := db.ListActivitiesByDestinations([]string{d1.ID, d2.ID})
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "Surf", acts[0].Name)

	acts, err = db.ListActivitiesByDestinations(nil)
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestLocalExpenseDateOrdering(t *testing.T) {
	db := database.NewLocalDatabase()
	owner := newUser(t, db, "owner@example.com")
	trip := newTrip(t, db, owner.ID, "trip")

	for _, date := range []string{"2026-07-03", "2026-07-01", "2026-07-10"} {
		e := &models.Expense{TripID: trip.ID, Title: "e-" + date, Amount: 10, Date: date, PaidBy: owner.ID}
		require.NoError(t, db.CreateExpense(e))
	}

	expenses, err := db.ListExpensesByTrip(trip.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 3)
	// 日期倒序
	assert.Equal(t, "2026-07-10", expenses[0].Date)
	assert.Equal(t, "2026-07-01", expenses[2].Date)
}

func TestLocalBindParticipant(t *testing.T) {
	db := database.NewLocalDatabase()
	owner := newUser(t, db, "owner@example.com")
	trip := newTrip(t, db, owner.ID, "trip")

	email := "guest@example.com"
	placeholder := &models.Participant{TripID: trip.ID, Email: &email, Role: models.RoleParticipant}
	require.NoError(t, db.CreateParticipant(placeholder))

	// 大小写不同也能找到占位行
	pending, err := db.ListPendingParticipantsByEmail("GUEST@example.com")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	guest := newUser(t, db, email)
	require.NoError(t, db.BindParticipant(placeholder.ID, guest.ID))

	role, ok := db.GetTripRole(trip.ID, guest.ID)
	require.True(t, ok)
	assert.Equal(t, models.RoleParticipant, role)

	// 绑定后占位行已消费，不能再绑
	assert.Error(t, db.BindParticipant(placeholder.ID, guest.ID))

	pending, err = db.ListPendingParticipantsByEmail(email)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestLocalBindParticipantRejectsExistingMember(t *testing.T) {
	db := database.NewLocalDatabase()
	owner := newUser(t, db, "owner@example.com")
	trip := newTrip(t, db, owner.ID, "trip")

	guest := newUser(t, db, "guest@example.com")
	member := &models.Participant{TripID: trip.ID, UserID: &guest.ID, Role: models.RoleParticipant}
	require.NoError(t, db.CreateParticipant(member))

	email := guest.Email
	placeholder := &models.Participant{TripID: trip.ID, Email: &email, Role: models.RoleParticipant}
	require.NoError(t, db.CreateParticipant(placeholder))

	// 已是成员：占位行不能再绑同一个用户，对齐 (trip_id, user_id) 唯一索引
	assert.Error(t, db.BindParticipant(placeholder.ID, guest.ID))

	// 绑定失败的行保持占位状态
	pending, err := db.ListPendingParticipantsByEmail(email)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestLocalAcceptInvitationIdempotent(t *testing.T) {
	db := database.NewLocalDatabase()
	owner := newUser(t, db, "owner@example.com")
	guest := newUser(t, db, "guest@example.com")
	trip := newTrip(t, db, owner.ID, "trip")

	inv := &models.Invitation{
		TripID:       trip.ID,
		InviterID:    owner.ID,
		InviteeEmail: guest.Email,
		Status:       models.InvitationPending,
	}
	require.NoError(t, db.CreateInvitation(inv))

	require.NoError(t, db.AcceptInvitation(inv, guest.ID))
	assert.Equal(t, models.InvitationAccepted, inv.Status)

	participants, err := db.ListParticipantsByTrip(trip.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)

	// 已处理的邀请不能再次accept
	stored, err := db.GetInvitation(inv.ID)
	require.NoError(t, err)
	assert.Error(t, db.AcceptInvitation(stored, guest.ID))

	participants, err = db.ListParticipantsByTrip(trip.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)
}

func TestLocalDeclineInvitation(t *testing.T) {
	db := database.NewLocalDatabase()
	owner := newUser(t, db, "owner@example.com")
	trip := newTrip(t, db, owner.ID, "trip")

	inv := &models.Invitation{
		TripID:       trip.ID,
		InviterID:    owner.ID,
		InviteeEmail: "guest@example.com",
		Status:       models.InvitationPending,
	}
	require.NoError(t, db.CreateInvitation(inv))

	require.NoError(t, db.DeclineInvitation(inv))
	assert.Equal(t, models.InvitationDeclined, inv.Status)

	participants, err := db.ListParticipantsByTrip(trip.ID)
	require.NoError(t, err)
	assert.Empty(t, participants)

	exists, err := db.HasPendingInvitation(trip.ID, "guest@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalUpdatePreservesImmutableFields(t *testing.T) {
	db := database.NewLocalDatabase()
	owner := newUser(t, db, "owner@example.com")
	trip := newTrip(t, db, owner.ID, "trip")

	trip.Name = "renamed"
	trip.UserID = "someone-else"
	require.NoError(t, db.UpdateTrip(trip))

	stored, err := db.GetTrip(trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Name)
	// owner不可变
	assert.Equal(t, owner.ID, stored.UserID)
}
