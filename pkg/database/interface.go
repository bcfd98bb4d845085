package database

import (
	"fmt"
	"os"

	"github.com/alexarts74/trip-indo/pkg/models"
)

// DatabaseInterface 定义数据库访问接口
type DatabaseInterface interface {
	// 用户管理
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)

	// Profiles（denormalized display identity）
	CreateProfile(p *models.Profile) error
	GetProfilesByIDs(ids []string) ([]models.Profile, error)

	// Trips
	CreateTrip(trip *models.Trip) error
	GetTrip(id string) (*models.Trip, error)
	ListTripsByOwner(userID string) ([]models.Trip, error)
	UpdateTrip(trip *models.Trip) error
	DeleteTrip(id string) error

	// Destinations
	CreateDestination(d *models.Destination) error
	GetDestination(id string) (*models.Destination, error)
	ListDestinationsByTrip(tripID string) ([]models.Destination, error)
	UpdateDestination(d *models.Destination) error
	DeleteDestination(id string) error

	// Activities
	CreateActivity(a *models.Activity) error
	GetActivity(id string) (*models.Activity, error)
	ListActivitiesByDestination(destinationID string) ([]models.Activity, error)
	// ListActivitiesByDestinations 一次取多个 destination 的 activities（stats 用）
	ListActivitiesByDestinations(destinationIDs []string) ([]models.Activity, error)
	UpdateActivity(a *models.Activity) error
	DeleteActivity(id string) error

	// Expenses（delete 先清 shares，再删本体）
	CreateExpense(e *models.Expense) error
	GetExpense(id string) (*models.Expense, error)
	ListExpensesByTrip(tripID string) ([]models.Expense, error)
	DeleteExpense(id string) error
	CreateExpenseShares(shares []models.ExpenseShare) error
	ListExpenseShares(expenseID string) ([]models.ExpenseShare, error)
	DeleteExpenseShares(expenseID string) error

	// Participants
	CreateParticipant(p *models.Participant) error
	GetParticipant(id string) (*models.Participant, error)
	ListParticipantsByTrip(tripID string) ([]models.Participant, error)
	DeleteParticipant(id string) error
	// GetTripRole returns the caller's role on a trip, if any
	GetTripRole(tripID, userID string) (models.ParticipantRole, bool)
	// ListPendingParticipantsByEmail matches placeholder rows:
	// stored email equals the given one (case-insensitive, trimmed) and user_id is unset.
	ListPendingParticipantsByEmail(email string) ([]models.Participant, error)
	// BindParticipant sets user_id on a placeholder row and clears the stored email
	BindParticipant(participantID, userID string) error

	// Invitations
	CreateInvitation(inv *models.Invitation) error
	GetInvitation(id string) (*models.Invitation, error)
	ListInvitationsByInviter(userID string) ([]models.Invitation, error)
	ListInvitationsByEmail(email string) ([]models.Invitation, error)
	HasPendingInvitation(tripID, email string) (bool, error)
	// AcceptInvitation flips the status to accepted and inserts the participant
	// row in one step; the insert is idempotent on (trip_id, user_id).
	AcceptInvitation(inv *models.Invitation, userID string) error
	DeclineInvitation(inv *models.Invitation) error
	DeleteInvitationsByTrip(tripID string) error

	// 健康检查
	HealthCheck() error

	// 关闭连接
	Close() error
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	PostgresDSN string
	SupabaseURL string
	SupabaseKey string
	Debug       bool
}

// NewDatabase 根据环境与配置选择数据库实现
func NewDatabase(config DatabaseConfig) DatabaseInterface {
	// 是否在 Vercel 生产环境
	isVercelProduction := IsVercelEnvironment()

	if isVercelProduction {
		fmt.Printf("🧭 Detected Vercel production environment\n")

		// Vercel 优先使用 Supabase（避免 IPv6）
		if config.SupabaseURL != "" && config.SupabaseKey != "" {
			fmt.Printf("🚀  Using Supabase REST API (Vercel optimized)\n")
			return NewSupabaseDatabase(config.SupabaseURL, config.SupabaseKey)
		}

		// 次选 PostgreSQL
		if config.PostgresDSN != "" {
			fmt.Printf("🌐  Using PostgreSQL in Vercel (may have IPv6 issues)\n")
			return NewPostgresDatabase(config.PostgresDSN)
		}

		panic("No valid database configured for Vercel environment. Please set SUPABASE_URL+SUPABASE_SERVICE_KEY or POSTGRES_DSN")
	}

	// 非 Vercel 环境：PostgreSQL > Supabase > 内存
	if config.PostgresDSN != "" {
		fmt.Printf("🗄️  Using PostgreSQL database\n")
		return NewPostgresDatabase(config.PostgresDSN)
	}

	if config.SupabaseURL != "" && config.SupabaseKey != "" {
		fmt.Printf("🧰  Using Supabase REST API\n")
		return NewSupabaseDatabase(config.SupabaseURL, config.SupabaseKey)
	}

	// 本地开发兜底：内存存储（重启即丢）
	fmt.Printf("🧪 No external database configured, using in-memory store\n")
	return NewLocalDatabase()
}

// IsVercelEnvironment 检查 Vercel 环境
func IsVercelEnvironment() bool {
	vercelEnv := os.Getenv("VERCEL_ENV")
	vercelURL := os.Getenv("VERCEL_URL")
	awsLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	return vercelEnv != "" || vercelURL != "" || awsLambda != ""
}
