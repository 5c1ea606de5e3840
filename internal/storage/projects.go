package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/model"
)

const projectColumns = `id, owner_id, name, type, status, start_date, end_date, total_budget, currency_code`

func saveProjects(ctx context.Context, q queryable, projects []model.Project) error {
	for i := range projects {
		p := &projects[i]
		_, err := q.ExecContext(ctx, `
			INSERT OR REPLACE INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.OwnerID, p.Name, string(p.Type), string(p.Status),
			formatDate(p.StartDate), formatNullDate(p.EndDate),
			nullDecimalText(p.TotalBudget), p.CurrencyCode,
		)
		if err != nil {
			return fmt.Errorf("failed to save project %s: %w", p.ID, classify(err))
		}
	}
	return nil
}

func scanProject(row rowScanner) (model.Project, error) {
	var p model.Project
	var projectType, status, start string
	var end sql.NullString
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &projectType, &status, &start, &end, &p.TotalBudget, &p.CurrencyCode)
	if err != nil {
		return p, err
	}
	p.Type = model.ProjectType(projectType)
	p.Status = model.ProjectStatus(status)
	if p.StartDate, err = parseDate(start); err != nil {
		return p, err
	}
	p.EndDate, err = parseNullDate(end)
	return p, err
}

func getProjects(ctx context.Context, q queryable) ([]model.Project, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

func getProject(ctx context.Context, q queryable, id string) (*model.Project, error) {
	p, err := scanProject(q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	return &p, nil
}

// updateProject overwrites the project after checking ownership. The owner
// itself is never changed by an update.
func updateProject(ctx context.Context, q queryable, ownerID string, p *model.Project) error {
	existing, err := getProject(ctx, q, p.ID)
	if err != nil {
		return err
	}
	if existing.OwnerID != ownerID {
		slog.Warn("Rejected project update from non-owner",
			"project_id", p.ID,
			"owner_id", ownerID)
		return fmt.Errorf("project %q: %w", p.ID, common.ErrUnauthorized)
	}

	_, err = q.ExecContext(ctx, `
		UPDATE projects SET
			name = ?, type = ?, status = ?, start_date = ?, end_date = ?,
			total_budget = ?, currency_code = ?
		WHERE id = ? AND owner_id = ?`,
		p.Name, string(p.Type), string(p.Status), formatDate(p.StartDate), formatNullDate(p.EndDate),
		nullDecimalText(p.TotalBudget), p.CurrencyCode, p.ID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", p.ID, classify(err))
	}
	p.OwnerID = existing.OwnerID
	return nil
}
