// Package clients keeps each user's register of clients and the tasks
// done for them.
package clients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/esime/ielec/database"
)

// Common errors
var (
	ErrMissingFields  = errors.New("missing required fields")
	ErrClientNotFound = errors.New("client not found")
)

// Client is a customer of the user.
type Client struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Tasks     []*Task   `json:"tasks"`
}

// Task is a job recorded against a client.
type Task struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store persists clients and tasks.
type Store struct {
	db *database.DB
}

// NewStore creates a store on an open database.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// CreateClient adds a client for the user. Name and email are required.
func (s *Store) CreateClient(ctx context.Context, userID, name, email, phone string) (*Client, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, ErrMissingFields
	}
	c := &Client{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(phone),
		CreatedAt: time.Now().UTC(),
		Tasks:     []*Task{},
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO clients (id, user_id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.UserID, c.Name, c.Email, database.NullString(c.Phone), c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return c, nil
}

// ListClients returns the user's clients, oldest first, each with its
// tasks.
func (s *Store) ListClients(ctx context.Context, userID string) ([]*Client, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, email, phone, created_at FROM clients WHERE user_id = ? ORDER BY created_at, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	list := []*Client{}
	byID := map[string]*Client{}
	for rows.Next() {
		c := &Client{Tasks: []*Task{}}
		var phone sql.NullString
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		c.Phone = phone.String
		list = append(list, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	tasks, err := s.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if c, ok := byID[t.ClientID]; ok {
			c.Tasks = append(c.Tasks, t)
		}
	}
	return list, nil
}

// DeleteClient removes a client and its tasks.
func (s *Store) DeleteClient(ctx context.Context, userID, clientID string) error {
	if err := s.ownClient(ctx, userID, clientID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE client_id = ?", clientID); err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", clientID); err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	return nil
}

// CreateTask records a task for one of the user's clients.
func (s *Store) CreateTask(ctx context.Context, userID, clientID, title, description string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" || clientID == "" {
		return nil, ErrMissingFields
	}
	if err := s.ownClient(ctx, userID, clientID); err != nil {
		return nil, err
	}
	t := &Task{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (id, client_id, title, description, created_at) VALUES (?, ?, ?, ?, ?)",
		t.ID, t.ClientID, t.Title, database.NullString(t.Description), t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return t, nil
}

// ListTasks returns the tasks of all the user's clients, oldest first.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.client_id, t.title, t.description, t.created_at
		FROM tasks t JOIN clients c ON c.id = t.client_id
		WHERE c.user_id = ?
		ORDER BY t.created_at, t.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*Task{}
	for rows.Next() {
		t := &Task{}
		var desc sql.NullString
		if err := rows.Scan(&t.ID, &t.ClientID, &t.Title, &desc, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Description = desc.String
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) ownClient(ctx context.Context, userID, clientID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, "SELECT user_id FROM clients WHERE id = ?", clientID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return ErrClientNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up client: %w", err)
	}
	return nil
}
