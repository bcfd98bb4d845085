package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitTables, downInitTables)
}

func upInitTables(ctx context.Context, tx *sql.Tx) error {
	// users + profiles
	_, err := tx.ExecContext(ctx, `
		CREATE EXTENSION IF NOT EXISTS "pgcrypto";

		CREATE TABLE users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE UNIQUE INDEX idx_users_email_lower ON users (lower(email));

		CREATE TABLE profiles (
			id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			first_name TEXT,
			last_name TEXT
		);
	`)
	if err != nil {
		return err
	}

	// trips / destinations / activities
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE trips (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			description TEXT,
			start_date DATE,
			end_date DATE,
			budget NUMERIC(12,2) DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX idx_trips_user ON trips (user_id, created_at DESC);

		CREATE TABLE destinations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT,
			country TEXT,
			address TEXT,
			price NUMERIC(12,2) DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX idx_destinations_trip ON destinations (trip_id, created_at ASC);

		CREATE TABLE activities (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			destination_id UUID NOT NULL REFERENCES destinations(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT,
			price NUMERIC(12,2) DEFAULT 0,
			duration TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX idx_activities_destination ON activities (destination_id, created_at ASC);
	`)
	if err != nil {
		return err
	}

	// expenses + shares
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE expenses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			category TEXT,
			date DATE,
			paid_by UUID NOT NULL REFERENCES users(id),
			paid_for UUID REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX idx_expenses_trip ON expenses (trip_id, date DESC);

		CREATE TABLE expense_shares (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			expense_id UUID NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id),
			amount NUMERIC(12,2) NOT NULL
		);

		CREATE INDEX idx_expense_shares_expense ON expense_shares (expense_id);
	`)
	if err != nil {
		return err
	}

	// participants + invitations
	_, err = tx.ExecContext(ctx, `
		CREATE TABLE trip_participants (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id),
			email TEXT,
			role TEXT NOT NULL DEFAULT 'participant',
			joined_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT chk_participant_identity CHECK (user_id IS NOT NULL OR email IS NOT NULL)
		);

		-- 一个用户在一个行程里只能出现一次；email占位行不受此限制
		CREATE UNIQUE INDEX idx_trip_participants_user
			ON trip_participants (trip_id, user_id)
			WHERE user_id IS NOT NULL;

		CREATE INDEX idx_trip_participants_email
			ON trip_participants (lower(email))
			WHERE user_id IS NULL;

		CREATE TABLE trip_invitations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			inviter_id UUID NOT NULL REFERENCES users(id),
			invitee_email TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT chk_invitation_status CHECK (status IN ('pending', 'accepted', 'declined'))
		);

		CREATE INDEX idx_trip_invitations_email ON trip_invitations (lower(invitee_email), created_at DESC);
		CREATE INDEX idx_trip_invitations_inviter ON trip_invitations (inviter_id, created_at DESC);
	`)
	return err
}

func downInitTables(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS trip_invitations;
		DROP TABLE IF EXISTS trip_participants;
		DROP TABLE IF EXISTS expense_shares;
		DROP TABLE IF EXISTS expenses;
		DROP TABLE IF EXISTS activities;
		DROP TABLE IF EXISTS destinations;
		DROP TABLE IF EXISTS trips;
		DROP TABLE IF EXISTS profiles;
		DROP TABLE IF EXISTS users;
	`)
	return err
}
