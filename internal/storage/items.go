package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trademe-app/trademe-api/internal/guard"
	"github.com/trademe-app/trademe-api/internal/models"
)

const itemColumns = `id, owner_id, category_id, title, description, condition,
	zip_code, city, state, latitude, longitude, status, is_visible,
	created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	var it models.Item
	err := row.Scan(
		&it.ID, &it.OwnerID, &it.CategoryID, &it.Title, &it.Description, &it.Condition,
		&it.ZipCode, &it.City, &it.State, &it.Latitude, &it.Longitude, &it.Status, &it.IsVisible,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, guard.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения предмета: %w", err)
	}
	return &it, nil
}

// CreateItem сохраняет новый предмет
func (s *Postgres) CreateItem(ctx context.Context, it *models.Item) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO items (id, owner_id, category_id, title, description, condition,
			zip_code, city, state, latitude, longitude, status, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, it.ID, it.OwnerID, it.CategoryID, it.Title, it.Description, it.Condition,
		it.ZipCode, it.City, it.State, it.Latitude, it.Longitude, it.Status, it.IsVisible,
		it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания предмета: %w", err)
	}
	return nil
}

// GetItem возвращает предмет по ID
func (s *Postgres) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row := s.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	return scanItem(row)
}

// ListItems возвращает предметы по фильтру. Скрытые предметы не попадают
// в выборку, если фильтр не ограничен владельцем.
func (s *Postgres) ListItems(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	var conditions []string
	var args []any

	addArg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.OwnerID != nil {
		conditions = append(conditions, "owner_id = "+addArg(*filter.OwnerID))
	} else {
		conditions = append(conditions, "is_visible = TRUE", "status = 'active'")
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, "category_id = "+addArg(*filter.CategoryID))
	}
	if filter.ZipCode != "" {
		conditions = append(conditions, "zip_code = "+addArg(filter.ZipCode))
	}
	if filter.City != "" {
		conditions = append(conditions, "city ILIKE "+addArg(filter.City))
	}
	if filter.State != "" {
		conditions = append(conditions, "state ILIKE "+addArg(filter.State))
	}
	if filter.Search != "" {
		p := addArg("%" + filter.Search + "%")
		conditions = append(conditions, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY created_at DESC LIMIT ` + addArg(limit) + ` OFFSET ` + addArg(filter.Offset)

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса предметов: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// UpdateItem обновляет данные предмета
func (s *Postgres) UpdateItem(ctx context.Context, it *models.Item) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE items
		SET category_id = $2, title = $3, description = $4, condition = $5,
			zip_code = $6, city = $7, state = $8, latitude = $9, longitude = $10,
			status = $11, is_visible = $12, updated_at = NOW()
		WHERE id = $1
	`, it.ID, it.CategoryID, it.Title, it.Description, it.Condition,
		it.ZipCode, it.City, it.State, it.Latitude, it.Longitude, it.Status, it.IsVisible)
	if err != nil {
		return fmt.Errorf("ошибка обновления предмета: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrNotFound
	}
	return nil
}

// SetItemStatus меняет статус предмета
func (s *Postgres) SetItemStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE items SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("ошибка смены статуса предмета: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrNotFound
	}
	return nil
}

// ListCategories возвращает все категории предметов
func (s *Postgres) ListCategories(ctx context.Context) ([]models.ItemCategory, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, name, description, icon, created_at FROM item_categories ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса категорий: %w", err)
	}
	defer rows.Close()

	var categories []models.ItemCategory
	for rows.Next() {
		var c models.ItemCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения категории: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// AddItemPhoto сохраняет фотографию предмета
func (s *Postgres) AddItemPhoto(ctx context.Context, p *models.ItemPhoto) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO item_photos (id, item_id, url, public_id, is_primary, order_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.ItemID, p.URL, p.PublicID, p.IsPrimary, p.OrderIndex, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения фотографии: %w", err)
	}
	return nil
}

// GetItemPhoto возвращает фотографию по ID
func (s *Postgres) GetItemPhoto(ctx context.Context, id uuid.UUID) (*models.ItemPhoto, error) {
	var p models.ItemPhoto
	err := s.q.QueryRow(ctx, `
		SELECT id, item_id, url, public_id, is_primary, order_index, created_at
		FROM item_photos WHERE id = $1
	`, id).Scan(&p.ID, &p.ItemID, &p.URL, &p.PublicID, &p.IsPrimary, &p.OrderIndex, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, guard.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения фотографии: %w", err)
	}
	return &p, nil
}

// DeleteItemPhoto удаляет фотографию предмета
func (s *Postgres) DeleteItemPhoto(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM item_photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления фотографии: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return guard.ErrNotFound
	}
	return nil
}
