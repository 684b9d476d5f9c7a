package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"social-scheduler/domain/model"
)

// ScheduledItemRepository stores scheduled items in one table per kind over database/sql.
type ScheduledItemRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewScheduledItemRepository(db *sql.DB, dialect Dialect) *ScheduledItemRepository {
	return &ScheduledItemRepository{db: db, dialect: dialect, now: time.Now}
}

func (r *ScheduledItemRepository) Create(ctx context.Context, item *model.ScheduledItem) (*model.ScheduledItem, error) {
	if item == nil || item.Payload == nil {
		return nil, fmt.Errorf("%w: payload is required", model.ErrValidation)
	}
	t, err := tableFor(item.Kind)
	if err != nil {
		return nil, err
	}
	payloadValues, err := t.encode(item.Payload)
	if err != nil {
		return nil, err
	}
	now := r.now().UTC()
	if !item.ScheduledFor.After(now) {
		return nil, model.ErrScheduleInPast
	}

	columns := append([]string{"user_id", "scheduled_for", "status", "created_at", "updated_at"}, t.columns...)
	args := append([]interface{}{item.UserID, item.ScheduledFor.UTC(), string(model.StatusScheduled), now, now}, payloadValues...)

	var id int64
	if err := r.db.QueryRowContext(ctx, r.dialect.InsertReturningID(t.name, columns), args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.name, err)
	}

	created := *item
	created.ID = id
	created.ScheduledFor = item.ScheduledFor.UTC()
	created.Status = model.StatusScheduled
	created.ScheduleID = nil
	created.PublishResult = nil
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

func (r *ScheduledItemRepository) Get(ctx context.Context, kind model.Kind, id int64) (*model.ScheduledItem, error) {
	return r.getWhere(ctx, kind, "id = "+r.dialect.Bind(1), id)
}

func (r *ScheduledItemRepository) GetForUser(ctx context.Context, kind model.Kind, id int64, userID string) (*model.ScheduledItem, error) {
	return r.getWhere(ctx, kind, fmt.Sprintf("id = %s AND user_id = %s", r.dialect.Bind(1), r.dialect.Bind(2)), id, userID)
}

func (r *ScheduledItemRepository) getWhere(ctx context.Context, kind model.Kind, where string, args ...interface{}) (*model.ScheduledItem, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s", selectList(t), r.dialect.Table(t.name), where)
	item, err := scanItem(r.db.QueryRowContext(ctx, q, args...), kind, t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// TransitionStatus is a compare-and-set on status. A nil result leaves the stored result untouched.
func (r *ScheduledItemRepository) TransitionStatus(ctx context.Context, kind model.Kind, id int64, from, to model.Status, result *model.PublishResult) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, from, to)
	}
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	d := r.dialect
	sets := []string{"status = " + d.Bind(1), "updated_at = " + d.Bind(2)}
	args := []interface{}{string(to), r.now().UTC()}
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return false, fmt.Errorf("encode publish result: %w", err)
		}
		sets = append(sets, "publish_result = "+d.Bind(3))
		args = append(args, string(raw))
	}
	n := len(args)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s AND status = %s", d.Table(t.name), strings.Join(sets, ", "), d.Bind(n+1), d.Bind(n+2))
	args = append(args, id, string(from))

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("update %s status: %w", t.name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ScheduledItemRepository) SetScheduleID(ctx context.Context, kind model.Kind, id int64, scheduleID string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	d := r.dialect
	q := fmt.Sprintf("UPDATE %s SET schedule_id = %s, updated_at = %s WHERE id = %s", d.Table(t.name), d.Bind(1), d.Bind(2), d.Bind(3))
	res, err := r.db.ExecContext(ctx, q, scheduleID, r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update %s schedule id: %w", t.name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListByUser returns the user's items newest schedule first. Without a kind filter every table is
// read and merged before paging.
func (r *ScheduledItemRepository) ListByUser(ctx context.Context, userID string, filter model.ListFilter) ([]*model.ScheduledItem, error) {
	filter = filter.Normalize()
	limit, offset := filter.Limit, filter.Offset

	kinds := model.Kinds
	if filter.Kind != "" {
		kinds = []model.Kind{filter.Kind}
	}
	if len(kinds) == 1 {
		return r.listKind(ctx, kinds[0], userID, filter.Status, limit, offset)
	}

	var all []*model.ScheduledItem
	for _, k := range kinds {
		items, err := r.listKind(ctx, k, userID, filter.Status, limit+offset, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ScheduledFor.After(all[j].ScheduledFor)
	})
	if offset >= len(all) {
		return []*model.ScheduledItem{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *ScheduledItemRepository) listKind(ctx context.Context, kind model.Kind, userID string, status model.Status, limit, offset int) ([]*model.ScheduledItem, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	d := r.dialect
	where := "user_id = " + d.Bind(1)
	args := []interface{}{userID}
	if status != "" {
		where += " AND status = " + d.Bind(2)
		args = append(args, string(status))
	}
	n := len(args)
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY scheduled_for DESC, id DESC", selectList(t), d.Table(t.name), where) + d.Page(n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()

	items := make([]*model.ScheduledItem, 0)
	for rows.Next() {
		item, err := scanItem(rows, kind, t)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ScheduledItemRepository) Delete(ctx context.Context, kind model.Kind, id int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = %s", r.dialect.Table(t.name), r.dialect.Bind(1)), id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func selectList(t kindTable) string {
	return strings.Join(append(append([]string{}, commonColumns...), t.columns...), ", ")
}

func scanItem(row rowScanner, kind model.Kind, t kindTable) (*model.ScheduledItem, error) {
	item := &model.ScheduledItem{Kind: kind}
	var (
		status     string
		scheduleID sql.NullString
		result     sql.NullString
	)
	payload := make([]sql.NullString, len(t.columns))
	dest := []interface{}{&item.ID, &item.UserID, &item.ScheduledFor, &status, &scheduleID, &result, &item.CreatedAt, &item.UpdatedAt}
	for i := range payload {
		dest = append(dest, &payload[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	item.Status = model.Status(status)
	item.ScheduledFor = item.ScheduledFor.UTC()
	if scheduleID.Valid && scheduleID.String != "" {
		v := scheduleID.String
		item.ScheduleID = &v
	}
	if result.Valid && result.String != "" {
		pr := &model.PublishResult{}
		if err := json.Unmarshal([]byte(result.String), pr); err != nil {
			return nil, fmt.Errorf("decode publish result of %s %d: %w", kind, item.ID, err)
		}
		item.PublishResult = pr
	}

	values := make([]string, len(payload))
	for i, v := range payload {
		values[i] = v.String
	}
	p, err := t.decode(values)
	if err != nil {
		return nil, err
	}
	item.Payload = p
	return item, nil
}
