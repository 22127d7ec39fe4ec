package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldlane/fieldlane-auth/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserRepository    = (*PostgresUserRepo)(nil)
	_ CompanyRepository = (*PostgresCompanyRepo)(nil)
)

const userColumns = `id, first_name, last_name, email, phone, password_hash, confirm_otp, is_confirmed, status, company_id, city, branch_id, address_id, profile_pic, business_name, full_name, firebase_token, created_at, updated_at`

// PostgresUserRepo implements UserRepository on pgx.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) GetByPhone(ctx context.Context, phone string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE phone = $1 LIMIT 1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, phone))
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by phone: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, userID int64) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

const insertUserSQL = `INSERT INTO users (id, first_name, last_name, email, phone, password_hash, confirm_otp, is_confirmed, status, company_id, city, branch_id, address_id, profile_pic, business_name, full_name, firebase_token)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING ` + userColumns

func (r *PostgresUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if user.Status == "" {
		user.Status = domain.StatusDefault
	}
	row := r.db.QueryRow(ctx, insertUserSQL,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		nullString(user.ConfirmOTP),
		user.IsConfirmed,
		user.Status,
		nullInt64(user.CompanyID),
		user.City,
		nullInt64(user.BranchID),
		nullInt64(user.AddressID),
		user.ProfilePic,
		user.BusinessName,
		user.FullName,
		user.FirebaseToken,
	)

	inserted, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return inserted, nil
}

const updateUserSQL = `UPDATE users
SET first_name = $2, last_name = $3, email = $4, phone = $5, password_hash = $6, confirm_otp = $7, is_confirmed = $8, status = $9, company_id = $10, updated_at = now()
WHERE id = $1`

func (r *PostgresUserRepo) Update(ctx context.Context, user domain.User) error {
	tag, err := r.db.Exec(ctx, updateUserSQL,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		nullString(user.ConfirmOTP),
		user.IsConfirmed,
		user.Status,
		nullInt64(user.CompanyID),
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update user %d: no rows affected", user.ID)
	}
	return nil
}

// PostgresCompanyRepo implements CompanyRepository on pgx.
type PostgresCompanyRepo struct {
	db *pgxpool.Pool
}

func NewPostgresCompanyRepo(pool *pgxpool.Pool) *PostgresCompanyRepo {
	return &PostgresCompanyRepo{db: pool}
}

const companyColumns = `id, unique_id, name, status, created_at, updated_at`

func (r *PostgresCompanyRepo) GetByUniqueID(ctx context.Context, uniqueID string) (domain.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE unique_id = $1 LIMIT 1`, companyColumns)
	company, err := scanCompany(r.db.QueryRow(ctx, query, uniqueID))
	if err != nil {
		return domain.Company{}, fmt.Errorf("get company by unique id: %w", err)
	}
	return company, nil
}

func (r *PostgresCompanyRepo) GetByID(ctx context.Context, companyID int64) (domain.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1 LIMIT 1`, companyColumns)
	company, err := scanCompany(r.db.QueryRow(ctx, query, companyID))
	if err != nil {
		return domain.Company{}, fmt.Errorf("get company by id: %w", err)
	}
	return company, nil
}

const insertCompanySQL = `INSERT INTO companies (id, unique_id, name, status)
VALUES ($1, $2, $3, $4)
RETURNING ` + companyColumns

func (r *PostgresCompanyRepo) Create(ctx context.Context, company domain.Company) (domain.Company, error) {
	row := r.db.QueryRow(ctx, insertCompanySQL, company.ID, company.UniqueID, company.Name, company.Status)
	inserted, err := scanCompany(row)
	if err != nil {
		return domain.Company{}, fmt.Errorf("create company: %w", err)
	}
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user       domain.User
		confirmOTP sql.NullString
		companyID  sql.NullInt64
		branchID   sql.NullInt64
		addressID  sql.NullInt64
	)
	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&confirmOTP,
		&user.IsConfirmed,
		&user.Status,
		&companyID,
		&user.City,
		&branchID,
		&addressID,
		&user.ProfilePic,
		&user.BusinessName,
		&user.FullName,
		&user.FirebaseToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return domain.User{}, err
	}
	user.ConfirmOTP = confirmOTP.String
	user.CompanyID = companyID.Int64
	user.BranchID = branchID.Int64
	user.AddressID = addressID.Int64
	return user, nil
}

func scanCompany(row rowScanner) (domain.Company, error) {
	var company domain.Company
	if err := row.Scan(
		&company.ID,
		&company.UniqueID,
		&company.Name,
		&company.Status,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		return domain.Company{}, err
	}
	return company, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt64(value int64) sql.NullInt64 {
	if value == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: value, Valid: true}
}
