package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexarts74/trip-indo/pkg/models"

	"github.com/lib/pq"
)

// PostgresDatabase PostgreSQL数据库实现
type PostgresDatabase struct {
	db *sql.DB
}

// NewPostgresDatabase 创建PostgreSQL数据库实例
func NewPostgresDatabase(dsn string) DatabaseInterface {
	// 尝试多种连接策略来解决Vercel Lambda的IPv6问题
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)
	strategies := []string{
		addConnectionParams(dsn, "prefer_simple_protocol=true"),
		addConnectionParams(dsn, "prefer_simple_protocol=true&connect_timeout=10"),
		addConnectionParams(dsn, "sslmode=require&prefer_simple_protocol=true"),
		dsn, // 最后尝试原始DSN
	}

	var db *sql.DB
	var err error

	for i, strategy := range strategies {
		fmt.Printf("🔄 Trying connection strategy %d...\n", i+1)

		db, err = sql.Open("postgres", strategy)
		if err != nil {
			fmt.Printf("❌ Strategy %d failed to open: %v\n", i+1, err)
			continue
		}

		// 设置连接池参数，适合无服务器环境
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err = db.Ping(); err != nil {
			fmt.Printf("❌ Strategy %d failed to ping: %v\n", i+1, err)
			db.Close()
			continue
		}

		fmt.Printf("✅ PostgreSQL connection established successfully with strategy %d\n", i+1)
		return &PostgresDatabase{db: db}
	}

	panic(fmt.Sprintf("Failed to connect to PostgreSQL with all strategies. Last error: %v", err))
}

// addConnectionParams 添加连接参数到DSN
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + params
}

// ==================== Users ====================

// CreateUser 创建用户
func (db *PostgresDatabase) CreateUser(user *models.User) error {
	query := `
        INSERT INTO public.users (email, password_hash, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	err := db.db.QueryRow(query, user.Email, user.Password).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail 根据邮箱获取用户
func (db *PostgresDatabase) GetUserByEmail(email string) (*models.User, error) {
	query := `
        SELECT id, email, COALESCE(password_hash,''), created_at, updated_at
        FROM public.users
        WHERE lower(email) = lower($1)
    `
	var u models.User
	err := db.db.QueryRow(query, email).Scan(
		&u.ID, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// GetUserByID 根据ID获取用户
func (db *PostgresDatabase) GetUserByID(id string) (*models.User, error) {
	query := `
        SELECT id, email, created_at, updated_at
        FROM public.users
        WHERE id = $1
    `
	var u models.User
	err := db.db.QueryRow(query, id).Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ==================== Profiles ====================

func (db *PostgresDatabase) CreateProfile(p *models.Profile) error {
	query := `
        INSERT INTO public.profiles (id, first_name, last_name)
        VALUES ($1, $2, $3)
    `
	if _, err := db.db.Exec(query, p.ID, p.FirstName, p.LastName); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) GetProfilesByIDs(ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
        SELECT id, COALESCE(first_name,''), COALESCE(last_name,'')
        FROM public.profiles
        WHERE id = ANY($1)
    `
	rows, err := db.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ==================== Trips ====================

// CreateTrip 创建行程（owner participant 由调用方负责补一行）
func (db *PostgresDatabase) CreateTrip(trip *models.Trip) error {
	query := `
        INSERT INTO public.trips (user_id, name, description, start_date, end_date, budget, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	err := db.db.QueryRow(query, trip.UserID, trip.Name, trip.Description,
		nullIfEmpty(trip.StartDate), nullIfEmpty(trip.EndDate), trip.Budget).
		Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) GetTrip(id string) (*models.Trip, error) {
	query := `
        SELECT id, user_id, name, COALESCE(description,''),
               COALESCE(to_char(start_date,'YYYY-MM-DD'),''),
               COALESCE(to_char(end_date,'YYYY-MM-DD'),''),
               COALESCE(budget,0), created_at, updated_at
        FROM public.trips
        WHERE id = $1
    `
	var t models.Trip
	err := db.db.QueryRow(query, id).Scan(
		&t.ID, &t.UserID, &t.Name, &t.Description, &t.StartDate, &t.EndDate,
		&t.Budget, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("trip not found")
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &t, nil
}

func (db *PostgresDatabase) ListTripsByOwner(userID string) ([]models.Trip, error) {
	query := `
        SELECT id, user_id, name, COALESCE(description,''),
               COALESCE(to_char(start_date,'YYYY-MM-DD'),''),
               COALESCE(to_char(end_date,'YYYY-MM-DD'),''),
               COALESCE(budget,0), created_at, updated_at
        FROM public.trips
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := db.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Description,
			&t.StartDate, &t.EndDate, &t.Budget, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (db *PostgresDatabase) UpdateTrip(trip *models.Trip) error {
	if trip.ID == "" {
		return fmt.Errorf("trip ID is required for update")
	}
	query := `
        UPDATE public.trips
        SET name = $1, description = $2, start_date = $3, end_date = $4,
            budget = $5, updated_at = NOW()
        WHERE id = $6
    `
	_, err := db.db.Exec(query, trip.Name, trip.Description,
		nullIfEmpty(trip.StartDate), nullIfEmpty(trip.EndDate), trip.Budget, trip.ID)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) DeleteTrip(id string) error {
	if _, err := db.db.Exec(`DELETE FROM public.trips WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return nil
}

// ==================== Destinations ====================

func (db *PostgresDatabase) CreateDestination(d *models.Destination) error {
	query := `
        INSERT INTO public.destinations (trip_id, name, description, country, address, price, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at
    `
	err := db.db.QueryRow(query, d.TripID, d.Name, d.Description, d.Country, d.Address, d.Price).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) GetDestination(id string) (*models.Destination, error) {
	query := `
        SELECT id, trip_id, name, COALESCE(description,''), COALESCE(country,''),
               COALESCE(address,''), COALESCE(price,0), created_at
        FROM public.destinations
        WHERE id = $1
    `
	var d models.Destination
	err := db.db.QueryRow(query, id).Scan(&d.ID, &d.TripID, &d.Name, &d.Description,
		&d.Country, &d.Address, &d.Price, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("destination not found")
		}
		return nil, fmt.Errorf("failed to get destination: %w", err)
	}
	return &d, nil
}

func (db *PostgresDatabase) ListDestinationsByTrip(tripID string) ([]models.Destination, error) {
	query := `
        SELECT id, trip_id, name, COALESCE(description,''), COALESCE(country,''),
               COALESCE(address,''), COALESCE(price,0), created_at
        FROM public.destinations
        WHERE trip_id = $1
        ORDER BY created_at ASC
    `
	rows, err := db.db.Query(query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}
	defer rows.Close()

	var dests []models.Destination
	for rows.Next() {
		var d models.Destination
		if err := rows.Scan(&d.ID, &d.TripID, &d.Name, &d.Description,
			&d.Country, &d.Address, &d.Price, &d.CreatedAt); err != nil {
			return nil, err
		}
		dests = append(dests, d)
	}
	return dests, rows.Err()
}

func (db *PostgresDatabase) UpdateDestination(d *models.Destination) error {
	query := `
        UPDATE public.destinations
        SET name = $1, description = $2, country = $3, address = $4, price = $5
        WHERE id = $6
    `
	_, err := db.db.Exec(query, d.Name, d.Description, d.Country, d.Address, d.Price, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update destination: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) DeleteDestination(id string) error {
	if _, err := db.db.Exec(`DELETE FROM public.destinations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete destination: %w", err)
	}
	return nil
}

// ==================== Activities ====================

func (db *PostgresDatabase) CreateActivity(a *models.Activity) error {
	query := `
        INSERT INTO public.activities (destination_id, name, description, price, duration, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at
    `
	err := db.db.QueryRow(query, a.DestinationID, a.Name, a.Description, a.Price, a.Duration).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) GetActivity(id string) (*models.Activity, error) {
	query := `
        SELECT id, destination_id, name, COALESCE(description,''), COALESCE(price,0),
               COALESCE(duration,''), created_at
        FROM public.activities
        WHERE id = $1
    `
	var a models.Activity
	err := db.db.QueryRow(query, id).Scan(&a.ID, &a.DestinationID, &a.Name, &a.Description,
		&a.Price, &a.Duration, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("activity not found")
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &a, nil
}

func (db *PostgresDatabase) ListActivitiesByDestination(destinationID string) ([]models.Activity, error) {
	return db.listActivities(`destination_id = $1`, destinationID)
}

func (db *PostgresDatabase) ListActivitiesByDestinations(destinationIDs []string) ([]models.Activity, error) {
	if len(destinationIDs) == 0 {
		return nil, nil
	}
	return db.listActivities(`destination_id = ANY($1)`, pq.Array(destinationIDs))
}

func (db *PostgresDatabase) listActivities(where string, arg interface{}) ([]models.Activity, error) {
	query := `
        SELECT id, destination_id, name, COALESCE(description,''), COALESCE(price,0),
               COALESCE(duration,''), created_at
        FROM public.activities
        WHERE ` + where + `
        ORDER BY created_at ASC
    `
	rows, err := db.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var acts []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.DestinationID, &a.Name, &a.Description,
			&a.Price, &a.Duration, &a.CreatedAt); err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
	return acts, rows.Err()
}

func (db *PostgresDatabase) UpdateActivity(a *models.Activity) error {
	query := `
        UPDATE public.activities
        SET name = $1, description = $2, price = $3, duration = $4
        WHERE id = $5
    `
	_, err := db.db.Exec(query, a.Name, a.Description, a.Price, a.Duration, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) DeleteActivity(id string) error {
	if _, err := db.db.Exec(`DELETE FROM public.activities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

// ==================== Expenses ====================

func (db *PostgresDatabase) CreateExpense(e *models.Expense) error {
	query := `
        INSERT INTO public.expenses (trip_id, title, amount, category, date, paid_by, paid_for, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING id, created_at
    `
	err := db.db.QueryRow(query, e.TripID, e.Title, e.Amount, e.Category,
		nullIfEmpty(e.Date), e.PaidBy, e.PaidFor).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) GetExpense(id string) (*models.Expense, error) {
	query := `
        SELECT id, trip_id, title, amount, COALESCE(category,''),
               COALESCE(to_char(date,'YYYY-MM-DD'),''), paid_by, paid_for, created_at
        FROM public.expenses
        WHERE id = $1
    `
	var e models.Expense
	var paidFor sql.NullString
	err := db.db.QueryRow(query, id).Scan(&e.ID, &e.TripID, &e.Title, &e.Amount,
		&e.Category, &e.Date, &e.PaidBy, &paidFor, &e.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("expense not found")
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if paidFor.Valid {
		e.PaidFor = &paidFor.String
	}
	return &e, nil
}

func (db *PostgresDatabase) ListExpensesByTrip(tripID string) ([]models.Expense, error) {
	query := `
        SELECT id, trip_id, title, amount, COALESCE(category,''),
               COALESCE(to_char(date,'YYYY-MM-DD'),''), paid_by, paid_for, created_at
        FROM public.expenses
        WHERE trip_id = $1
        ORDER BY date DESC
    `
	rows, err := db.db.Query(query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var paidFor sql.NullString
		if err := rows.Scan(&e.ID, &e.TripID, &e.Title, &e.Amount, &e.Category,
			&e.Date, &e.PaidBy, &paidFor, &e.CreatedAt); err != nil {
			return nil, err
		}
		if paidFor.Valid {
			e.PaidFor = &paidFor.String
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (db *PostgresDatabase) DeleteExpense(id string) error {
	if _, err := db.db.Exec(`DELETE FROM public.expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) CreateExpenseShares(shares []models.ExpenseShare) error {
	for i := range shares {
		query := `
            INSERT INTO public.expense_shares (expense_id, user_id, amount)
            VALUES ($1, $2, $3)
            RETURNING id
        `
		if err := db.db.QueryRow(query, shares[i].ExpenseID, shares[i].UserID, shares[i].Amount).
			Scan(&shares[i].ID); err != nil {
			return fmt.Errorf("failed to create expense share: %w", err)
		}
	}
	return nil
}

func (db *PostgresDatabase) ListExpenseShares(expenseID string) ([]models.ExpenseShare, error) {
	query := `
        SELECT id, expense_id, user_id, amount
        FROM public.expense_shares
        WHERE expense_id = $1
    `
	rows, err := db.db.Query(query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense shares: %w", err)
	}
	defer rows.Close()

	var shares []models.ExpenseShare
	for rows.Next() {
		var s models.ExpenseShare
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.UserID, &s.Amount); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

func (db *PostgresDatabase) DeleteExpenseShares(expenseID string) error {
	if _, err := db.db.Exec(`DELETE FROM public.expense_shares WHERE expense_id = $1`, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense shares: %w", err)
	}
	return nil
}

// ==================== Participants ====================

func (db *PostgresDatabase) CreateParticipant(p *models.Participant) error {
	query := `
        INSERT INTO public.trip_participants (trip_id, user_id, email, role, joined_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, joined_at
    `
	err := db.db.QueryRow(query, p.TripID, p.UserID, p.Email, string(p.Role)).
		Scan(&p.ID, &p.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) GetParticipant(id string) (*models.Participant, error) {
	query := `
        SELECT id, trip_id, user_id, email, role, joined_at
        FROM public.trip_participants
        WHERE id = $1
    `
	row := db.db.QueryRow(query, id)
	p, err := scanParticipant(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("participant not found")
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func (db *PostgresDatabase) ListParticipantsByTrip(tripID string) ([]models.Participant, error) {
	query := `
        SELECT id, trip_id, user_id, email, role, joined_at
        FROM public.trip_participants
        WHERE trip_id = $1
        ORDER BY joined_at ASC
    `
	rows, err := db.db.Query(query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	var userID, email sql.NullString
	var role string
	if err := row.Scan(&p.ID, &p.TripID, &userID, &email, &role, &p.JoinedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		p.UserID = &userID.String
	}
	if email.Valid {
		p.Email = &email.String
	}
	p.Role = models.ParticipantRole(role)
	return &p, nil
}

func (db *PostgresDatabase) DeleteParticipant(id string) error {
	if _, err := db.db.Exec(`DELETE FROM public.trip_participants WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) GetTripRole(tripID, userID string) (models.ParticipantRole, bool) {
	query := `
        SELECT role FROM public.trip_participants
        WHERE trip_id = $1 AND user_id = $2
        LIMIT 1
    `
	var role string
	if err := db.db.QueryRow(query, tripID, userID).Scan(&role); err != nil {
		return "", false
	}
	return models.ParticipantRole(role), true
}

func (db *PostgresDatabase) ListPendingParticipantsByEmail(email string) ([]models.Participant, error) {
	query := `
        SELECT id, trip_id, user_id, email, role, joined_at
        FROM public.trip_participants
        WHERE lower(trim(email)) = lower(trim($1)) AND user_id IS NULL
    `
	rows, err := db.db.Query(query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func (db *PostgresDatabase) BindParticipant(participantID, userID string) error {
	query := `
        UPDATE public.trip_participants
        SET user_id = $1, email = NULL
        WHERE id = $2 AND user_id IS NULL
    `
	res, err := db.db.Exec(query, userID, participantID)
	if err != nil {
		return fmt.Errorf("failed to bind participant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("participant %s already bound", participantID)
	}
	return nil
}

// ==================== Invitations ====================

func (db *PostgresDatabase) CreateInvitation(inv *models.Invitation) error {
	query := `
        INSERT INTO public.trip_invitations (trip_id, inviter_id, invitee_email, status, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	err := db.db.QueryRow(query, inv.TripID, inv.InviterID, inv.InviteeEmail, string(inv.Status)).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (db *PostgresDatabase) GetInvitation(id string) (*models.Invitation, error) {
	query := `
        SELECT i.id, i.trip_id, i.inviter_id, i.invitee_email, i.status, i.created_at,
               COALESCE(t.name,'')
        FROM public.trip_invitations i
        LEFT JOIN public.trips t ON t.id = i.trip_id
        WHERE i.id = $1
    `
	var inv models.Invitation
	var status string
	err := db.db.QueryRow(query, id).Scan(&inv.ID, &inv.TripID, &inv.InviterID,
		&inv.InviteeEmail, &status, &inv.CreatedAt, &inv.TripName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invitation not found")
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	inv.Status = models.InvitationStatus(status)
	return &inv, nil
}

func (db *PostgresDatabase) ListInvitationsByInviter(userID string) ([]models.Invitation, error) {
	return db.listInvitations(`i.inviter_id = $1`, userID)
}

func (db *PostgresDatabase) ListInvitationsByEmail(email string) ([]models.Invitation, error) {
	return db.listInvitations(`lower(i.invitee_email) = lower($1)`, email)
}

func (db *PostgresDatabase) listInvitations(where string, arg interface{}) ([]models.Invitation, error) {
	query := `
        SELECT i.id, i.trip_id, i.inviter_id, i.invitee_email, i.status, i.created_at,
               COALESCE(t.name,'')
        FROM public.trip_invitations i
        LEFT JOIN public.trips t ON t.id = i.trip_id
        WHERE ` + where + `
        ORDER BY i.created_at DESC
    `
	rows, err := db.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		var status string
		if err := rows.Scan(&inv.ID, &inv.TripID, &inv.InviterID, &inv.InviteeEmail,
			&status, &inv.CreatedAt, &inv.TripName); err != nil {
			return nil, err
		}
		inv.Status = models.InvitationStatus(status)
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (db *PostgresDatabase) HasPendingInvitation(tripID, email string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM public.trip_invitations
            WHERE trip_id = $1 AND lower(invitee_email) = lower($2) AND status = 'pending'
        )
    `
	var exists bool
	if err := db.db.QueryRow(query, tripID, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	return exists, nil
}

// acceptParticipantInsert 幂等插入participant行。
// (trip_id, user_id) 上的唯一索引是部分索引，conflict target必须
// 重复它的谓词，Postgres才能推断出arbiter索引。
const acceptParticipantInsert = `
        INSERT INTO public.trip_participants (trip_id, user_id, role, joined_at)
        VALUES ($1, $2, 'participant', NOW())
        ON CONFLICT (trip_id, user_id) WHERE user_id IS NOT NULL DO NOTHING
    `

// AcceptInvitation 状态翻转 + participant 插入放进同一个事务。
// participant 的唯一索引 (trip_id, user_id) 保证重复 accept 不产生重复行。
func (db *PostgresDatabase) AcceptInvitation(inv *models.Invitation, userID string) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
        UPDATE public.trip_invitations
        SET status = 'accepted'
        WHERE id = $1 AND status = 'pending'
    `, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("invitation already decided")
	}

	_, err = tx.Exec(acceptParticipantInsert, inv.TripID, userID)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit accept: %w", err)
	}
	inv.Status = models.InvitationAccepted
	return nil
}

func (db *PostgresDatabase) DeclineInvitation(inv *models.Invitation) error {
	res, err := db.db.Exec(`
        UPDATE public.trip_invitations
        SET status = 'declined'
        WHERE id = $1 AND status = 'pending'
    `, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("invitation already decided")
	}
	inv.Status = models.InvitationDeclined
	return nil
}

func (db *PostgresDatabase) DeleteInvitationsByTrip(tripID string) error {
	_, err := db.db.Exec(`DELETE FROM public.trip_invitations WHERE trip_id = $1`, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete invitations: %w", err)
	}
	return nil
}

// ==================== Misc ====================

// HealthCheck 健康检查
func (db *PostgresDatabase) HealthCheck() error {
	return db.db.Ping()
}

// Close 关闭连接
func (db *PostgresDatabase) Close() error {
	return db.db.Close()
}

// nullIfEmpty 空字符串转 NULL（date 列不可写空串）
func nullIfEmpty(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
