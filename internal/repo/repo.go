package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
}

// Project is a stored envelope model. Model holds the JSON document as sent
// by the client.
type Project struct {
	ID        uuid.UUID       `json:"id"`
	UserID    int             `json:"-"`
	Name      string          `json:"name"`
	Model     json.RawMessage `json:"model,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, userID int, name string, model json.RawMessage) (Project, error)
	ListProjects(ctx context.Context, userID int) ([]Project, error)
	GetProject(ctx context.Context, userID int, id uuid.UUID) (Project, error)
	UpdateProject(ctx context.Context, userID int, id uuid.UUID, name string, model json.RawMessage) error
	DeleteProject(ctx context.Context, userID int, id uuid.UUID) error
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

// GetBylogin returns ErrNotFound for an unknown login.
func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrNotFound
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) CreateProject(ctx context.Context, userID int, name string, model json.RawMessage) (Project, error) {
	p := Project{ID: uuid.New(), UserID: userID, Name: name, Model: model}
	query := `INSERT INTO projects (id, user_id, name, model) VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.ID, userID, name, []byte(model)).Scan(&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListProjects returns the projects of a user without their models, newest
// first.
func (r *PostgresUserRepository) ListProjects(ctx context.Context, userID int) ([]Project, error) {
	query := "SELECT id, name, created_at, updated_at FROM projects WHERE user_id=$1 ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p := Project{UserID: userID}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *PostgresUserRepository) GetProject(ctx context.Context, userID int, id uuid.UUID) (Project, error) {
	p := Project{ID: id, UserID: userID}
	var model []byte
	query := "SELECT name, model, created_at, updated_at FROM projects WHERE id=$1 AND user_id=$2"
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&p.Name, &model, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, err
	}
	p.Model = model
	return p, nil
}

func (r *PostgresUserRepository) UpdateProject(ctx context.Context, userID int, id uuid.UUID, name string, model json.RawMessage) error {
	query := "UPDATE projects SET name=$1, model=$2, updated_at=now() WHERE id=$3 AND user_id=$4"
	res, err := r.db.ExecContext(ctx, query, name, []byte(model), id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *PostgresUserRepository) DeleteProject(ctx context.Context, userID int, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id=$1 AND user_id=$2", id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
