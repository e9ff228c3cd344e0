package persistent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/pkg/postgres"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	deliveriesTable = "file_deliveries"

	// Columns
	idColumn             = "id"
	fileIDColumn         = "file_id"
	filenameColumn       = "filename"
	taxpayerIDColumn     = "taxpayer_id"
	documentIDColumn     = "document_id"
	documentTypeColumn   = "document_type"
	deliveryStatusColumn = "delivery_status"
	serverURLColumn      = "server_url"
	customIDColumn       = "custom_id"
	attemptsColumn       = "attempts"
	ticketColumn         = "ticket"
	deliveryErrorColumn  = "delivery_error"
	createdAtColumn      = "created_at"
	updatedAtColumn      = "updated_at"
	deliveredAtColumn    = "delivered_at"
)

var deliveryColumns = []string{
	idColumn,
	fileIDColumn,
	filenameColumn,
	taxpayerIDColumn,
	documentIDColumn,
	documentTypeColumn,
	deliveryStatusColumn,
	serverURLColumn,
	customIDColumn,
	attemptsColumn,
	ticketColumn,
	deliveryErrorColumn,
	createdAtColumn,
	updatedAtColumn,
	deliveredAtColumn,
}

type FileDeliveryRepo struct {
	*postgres.Postgres
}

func NewFileDeliveryRepo(pg *postgres.Postgres) *FileDeliveryRepo {
	return &FileDeliveryRepo{pg}
}

func (r *FileDeliveryRepo) Create(ctx context.Context, d *entity.FileDelivery) error {
	sql, args, err := r.Builder.
		Insert(deliveriesTable).
		Columns(deliveryColumns...).
		Values(
			d.ID,
			d.FileID,
			d.Filename,
			d.TaxpayerID,
			d.DocumentID,
			d.DocumentType,
			d.DeliveryStatus,
			d.ServerURL,
			d.CustomID,
			d.Attempts,
			d.Ticket,
			d.DeliveryError,
			d.CreatedAt,
			d.UpdatedAt,
			d.DeliveredAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("FileDeliveryRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("FileDeliveryRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *FileDeliveryRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.FileDelivery, error) {
	sql, args, err := r.Builder.
		Select(deliveryColumns...).
		From(deliveriesTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("FileDeliveryRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	d, err := scanDelivery(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("FileDeliveryRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("FileDeliveryRepo - GetByID - executor.QueryRow: %w", err)
	}

	return d, nil
}

func (r *FileDeliveryRepo) Claim(ctx context.Context, id uuid.UUID, now time.Time) (*entity.FileDelivery, bool, error) {
	sql, args, err := r.Builder.
		Update(deliveriesTable).
		Set(deliveryStatusColumn, entity.Delivering).
		Set(attemptsColumn, squirrel.Expr(attemptsColumn+" + 1")).
		Set(updatedAtColumn, now).
		Where(squirrel.Eq{
			idColumn:             id,
			deliveryStatusColumn: entity.ScheduledToDeliver,
		}).
		Suffix("RETURNING " + strings.Join(deliveryColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("FileDeliveryRepo - Claim - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	d, err := scanDelivery(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("FileDeliveryRepo - Claim - executor.QueryRow: %w", err)
	}

	return d, true, nil
}

func (r *FileDeliveryRepo) MarkDelivered(ctx context.Context, id uuid.UUID, ticket *string, now time.Time) error {
	sql, args, err := r.Builder.
		Update(deliveriesTable).
		Set(deliveryStatusColumn, entity.Delivered).
		Set(ticketColumn, ticket).
		Set(deliveryErrorColumn, nil).
		Set(updatedAtColumn, now).
		Set(deliveredAtColumn, now).
		Where(squirrel.Eq{
			idColumn:             id,
			deliveryStatusColumn: entity.Delivering,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("FileDeliveryRepo - MarkDelivered - r.Builder.ToSql: %w", err)
	}

	return r.execOne(ctx, "MarkDelivered", sql, args)
}

func (r *FileDeliveryRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	sql, args, err := r.Builder.
		Update(deliveriesTable).
		Set(deliveryStatusColumn, entity.DeliveryFailed).
		Set(deliveryErrorColumn, reason).
		Set(updatedAtColumn, now).
		Where(squirrel.Eq{
			idColumn:             id,
			deliveryStatusColumn: entity.Delivering,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("FileDeliveryRepo - MarkFailed - r.Builder.ToSql: %w", err)
	}

	return r.execOne(ctx, "MarkFailed", sql, args)
}

func (r *FileDeliveryRepo) Reschedule(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	sql, args, err := r.Builder.
		Update(deliveriesTable).
		Set(deliveryStatusColumn, entity.ScheduledToDeliver).
		Set(deliveryErrorColumn, reason).
		Set(updatedAtColumn, now).
		Where(squirrel.Eq{
			idColumn:             id,
			deliveryStatusColumn: entity.Delivering,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("FileDeliveryRepo - Reschedule - r.Builder.ToSql: %w", err)
	}

	return r.execOne(ctx, "Reschedule", sql, args)
}

func (r *FileDeliveryRepo) Release(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	sql, args, err := r.Builder.
		Update(deliveriesTable).
		Set(deliveryStatusColumn, entity.ScheduledToDeliver).
		Set(attemptsColumn, squirrel.Expr("GREATEST("+attemptsColumn+" - 1, 0)")).
		Set(deliveryErrorColumn, reason).
		Set(updatedAtColumn, now).
		Where(squirrel.Eq{
			idColumn:             id,
			deliveryStatusColumn: entity.Delivering,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("FileDeliveryRepo - Release - r.Builder.ToSql: %w", err)
	}

	return r.execOne(ctx, "Release", sql, args)
}

// ListStale returns records stuck in scheduled/delivering since before,
// that have no outbox event left to trigger them.
func (r *FileDeliveryRepo) ListStale(ctx context.Context, before time.Time, limit int) ([]*entity.FileDelivery, error) {
	sql, args, err := r.Builder.
		Select(deliveryColumns...).
		From(deliveriesTable).
		Where(staleCondition(before)).
		OrderBy(updatedAtColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("FileDeliveryRepo - ListStale - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("FileDeliveryRepo - ListStale - executor.Query: %w", err)
	}
	defer rows.Close()

	deliveries := make([]*entity.FileDelivery, 0, limit)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("FileDeliveryRepo - ListStale - rows.Scan: %w", err)
		}
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FileDeliveryRepo - ListStale - rows.Err: %w", err)
	}

	return deliveries, nil
}

// ResetStale puts a stale record back to scheduled. It re-checks the stale
// condition so a record touched by a worker in the meantime is left alone.
func (r *FileDeliveryRepo) ResetStale(ctx context.Context, id uuid.UUID, before, now time.Time) (bool, error) {
	sql, args, err := r.Builder.
		Update(deliveriesTable).
		Set(deliveryStatusColumn, entity.ScheduledToDeliver).
		Set(updatedAtColumn, now).
		Where(squirrel.And{
			squirrel.Eq{idColumn: id},
			staleCondition(before),
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("FileDeliveryRepo - ResetStale - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("FileDeliveryRepo - ResetStale - executor.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *FileDeliveryRepo) execOne(ctx context.Context, method, sql string, args []interface{}) error {
	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("FileDeliveryRepo - %s - executor.Exec: %w", method, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("FileDeliveryRepo - %s: %w", method, errs.ErrRecordNotFound)
	}

	return nil
}

func staleCondition(before time.Time) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Eq{deliveryStatusColumn: []string{
			string(entity.ScheduledToDeliver),
			string(entity.Delivering),
		}},
		squirrel.Lt{updatedAtColumn: before},
		squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM "+outboxTable+" o WHERE o."+outboxAggregateIDColumn+" = "+
				deliveriesTable+"."+idColumn+" AND o."+outboxStatusColumn+" IN (?, ?))",
			string(entity.OutboxPending), string(entity.OutboxProcessing),
		),
	}
}

func scanDelivery(row pgx.Row) (*entity.FileDelivery, error) {
	var d entity.FileDelivery

	err := row.Scan(
		&d.ID,
		&d.FileID,
		&d.Filename,
		&d.TaxpayerID,
		&d.DocumentID,
		&d.DocumentType,
		&d.DeliveryStatus,
		&d.ServerURL,
		&d.CustomID,
		&d.Attempts,
		&d.Ticket,
		&d.DeliveryError,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}

	return &d, nil
}
