package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// UpsertProject inserts or updates a project row
func (r *Repository) UpsertProject(ctx context.Context, p *ProjectRecord) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, status, deadline, team_member_count, has_repo, has_tracker_project, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			status = excluded.status,
			deadline = excluded.deadline,
			team_member_count = excluded.team_member_count,
			has_repo = excluded.has_repo,
			has_tracker_project = excluded.has_tracker_project,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, p.Description, p.Status, p.Deadline, p.TeamMemberCount, p.HasRepo, p.HasTrackerProject, p.CreatedAt, p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", p.ID, err)
	}

	return nil
}

// UpsertDeveloper inserts or updates a developer row
func (r *Repository) UpsertDeveloper(ctx context.Context, d *DeveloperRecord) error {
	now := time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO developers (id, name, role, weekly_commits, monthly_commits, total_commits, total_tasks, completed_tasks, overdue_tasks, avg_delay_days, reopened_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			weekly_commits = excluded.weekly_commits,
			monthly_commits = excluded.monthly_commits,
			total_commits = excluded.total_commits,
			total_tasks = excluded.total_tasks,
			completed_tasks = excluded.completed_tasks,
			overdue_tasks = excluded.overdue_tasks,
			avg_delay_days = excluded.avg_delay_days,
			reopened_count = excluded.reopened_count,
			updated_at = excluded.updated_at
	`, d.ID, d.Name, d.Role, d.WeeklyCommits, d.MonthlyCommits, d.TotalCommits, d.TotalTasks, d.CompletedTasks, d.OverdueTasks, d.AvgDelayDays, d.ReopenedCount, d.CreatedAt, d.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert developer %s: %w", d.ID, err)
	}

	return nil
}

// GetProject fetches one project by ID
func (r *Repository) GetProject(ctx context.Context, id string) (*ProjectRecord, error) {
	var p ProjectRecord
	var deadline sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, status, deadline, team_member_count, has_repo, has_tracker_project, created_at, updated_at
		FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Status, &deadline, &p.TeamMemberCount, &p.HasRepo, &p.HasTrackerProject, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project %s: %w", id, err)
	}

	if deadline.Valid {
		p.Deadline = &deadline.Time
	}

	return &p, nil
}

// ListProjects returns all non-archived projects
func (r *Repository) ListProjects(ctx context.Context) ([]ProjectRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, status, deadline, team_member_count, has_repo, has_tracker_project, created_at, updated_at
		FROM projects
		WHERE status NOT IN ('completed', 'cancelled')
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []ProjectRecord
	for rows.Next() {
		var p ProjectRecord
		var deadline sql.NullTime

		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &deadline, &p.TeamMemberCount, &p.HasRepo, &p.HasTrackerProject, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		if deadline.Valid {
			p.Deadline = &deadline.Time
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// GetDeveloper fetches one developer by ID
func (r *Repository) GetDeveloper(ctx context.Context, id string) (*DeveloperRecord, error) {
	var d DeveloperRecord

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, role, weekly_commits, monthly_commits, total_commits, total_tasks, completed_tasks, overdue_tasks, avg_delay_days, reopened_count, created_at, updated_at
		FROM developers WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &d.Role, &d.WeeklyCommits, &d.MonthlyCommits, &d.TotalCommits, &d.TotalTasks, &d.CompletedTasks, &d.OverdueTasks, &d.AvgDelayDays, &d.ReopenedCount, &d.CreatedAt, &d.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query developer %s: %w", id, err)
	}

	return &d, nil
}

// ListDevelopers returns all developer rows
func (r *Repository) ListDevelopers(ctx context.Context) ([]DeveloperRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, role, weekly_commits, monthly_commits, total_commits, total_tasks, completed_tasks, overdue_tasks, avg_delay_days, reopened_count, created_at, updated_at
		FROM developers
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list developers: %w", err)
	}
	defer rows.Close()

	var developers []DeveloperRecord
	for rows.Next() {
		var d DeveloperRecord

		if err := rows.Scan(&d.ID, &d.Name, &d.Role, &d.WeeklyCommits, &d.MonthlyCommits, &d.TotalCommits, &d.TotalTasks, &d.CompletedTasks, &d.OverdueTasks, &d.AvgDelayDays, &d.ReopenedCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan developer row: %w", err)
		}
		developers = append(developers, d)
	}

	return developers, rows.Err()
}

// InsertScore records one computed score in the history table
func (r *Repository) InsertScore(ctx context.Context, rec *ScoreRecord) error {
	stmt, err := r.db.GetPreparedStatement("insert_score")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, rec.ID, rec.EntityType, rec.EntityID, rec.Kind, rec.Score, rec.Level, rec.ComputedAt)
	if err != nil {
		return fmt.Errorf("failed to insert score record: %w", err)
	}

	return nil
}

// ScoreHistory returns the most recent score records for an entity and kind
func (r *Repository) ScoreHistory(ctx context.Context, entityID, kind string, limit int) ([]ScoreRecord, error) {
	stmt, err := r.db.GetPreparedStatement("get_score_history")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, entityID, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}
	defer rows.Close()

	var records []ScoreRecord
	for rows.Next() {
		var rec ScoreRecord
		if err := rows.Scan(&rec.ID, &rec.EntityType, &rec.EntityID, &rec.Kind, &rec.Score, &rec.Level, &rec.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// InsertNotification persists an escalation or insight notification
func (r *Repository) InsertNotification(ctx context.Context, n *Notification) error {
	stmt, err := r.db.GetPreparedStatement("insert_notification")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, n.ID, n.RecipientRole, n.SourceType, n.SourceID, n.InsightType, n.Severity, n.Message, n.Action, n.Score, n.Acknowledged, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// ListNotifications returns recent notifications for a role
func (r *Repository) ListNotifications(ctx context.Context, role string, limit int) ([]Notification, error) {
	stmt, err := r.db.GetPreparedStatement("get_notifications")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, role, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientRole, &n.SourceType, &n.SourceID, &n.InsightType, &n.Severity, &n.Message, &n.Action, &n.Score, &n.Acknowledged, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// AcknowledgeNotification marks a notification as read
func (r *Repository) AcknowledgeNotification(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET acknowledged = TRUE WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge notification %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
