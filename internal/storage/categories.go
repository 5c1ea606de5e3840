package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/runway/internal/model"
)

// The system flag is only written on insert: it is decided when a category is
// created and never changes afterwards.
func saveCategories(ctx context.Context, q queryable, categories []model.Category) error {
	for _, c := range categories {
		_, err := q.ExecContext(ctx, `
			INSERT INTO categories (id, name, type, is_system_generated)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				type = excluded.type`,
			c.ID, c.Name, string(c.Type), c.IsSystemGenerated,
		)
		if err != nil {
			return fmt.Errorf("failed to save category %s: %w", c.ID, classify(err))
		}
	}
	return nil
}

func getCategories(ctx context.Context, q queryable) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, type, is_system_generated
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var categoryType string
		if err := rows.Scan(&c.ID, &c.Name, &categoryType, &c.IsSystemGenerated); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Type = model.CategoryType(categoryType)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}
