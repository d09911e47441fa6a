package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/perda-lpj-api/internal/models"
)

// Attachment tables keep urutan dense per document. The (document_id, urutan)
// unique constraint is deferred so rows can be renumbered inside one transaction.
const (
	tableMainAttachments       = "main_attachments"
	tableSupportingAttachments = "supporting_attachments"
)

// ErrSequenceConflict reports that a concurrent write claimed the same urutan.
var ErrSequenceConflict = errors.New("repository: attachment order changed concurrently")

const pqUniqueViolation = "23505"

// sequenceError wraps err, surfacing unique violations on urutan as ErrSequenceConflict.
func sequenceError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrSequenceConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nextSequence(ctx context.Context, tx *sqlx.Tx, table, documentID string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(urutan), 0) + 1 FROM %s WHERE document_id = $1`, table)
	var next int
	if err := tx.GetContext(ctx, &next, query, documentID); err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", table, err)
	}
	return next, nil
}

// resequence renumbers the remaining rows 1..n keeping their relative order.
func resequence(ctx context.Context, tx *sqlx.Tx, table, documentID string) error {
	query := fmt.Sprintf(`UPDATE %[1]s t SET urutan = s.rn
FROM (SELECT id, ROW_NUMBER() OVER (ORDER BY urutan ASC, created_at ASC) AS rn FROM %[1]s WHERE document_id = $1) s
WHERE t.id = s.id AND t.urutan <> s.rn`, table)
	if _, err := tx.ExecContext(ctx, query, documentID); err != nil {
		return fmt.Errorf("resequence %s: %w", table, err)
	}
	return nil
}

func applySequences(ctx context.Context, db *sqlx.DB, table, documentID string, updates []models.SequenceUpdate) (err error) {
	if len(updates) == 0 {
		return nil
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s reorder: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`UPDATE %s SET urutan = $1, updated_at = NOW() WHERE id = $2 AND document_id = $3`, table)
	for _, update := range updates {
		var res sql.Result
		res, err = tx.ExecContext(ctx, query, update.Urutan, update.ID, documentID)
		if err != nil {
			return sequenceError("update "+table+" sequence", err)
		}
		var affected int64
		if affected, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("check %s sequence rows: %w", table, err)
		}
		if affected == 0 {
			err = sql.ErrNoRows
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return sequenceError("commit "+table+" reorder", err)
	}
	return nil
}

func deleteAndResequence(ctx context.Context, db *sqlx.DB, table, id string) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s delete: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var documentID string
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING document_id`, table)
	if err = tx.GetContext(ctx, &documentID, query, id); err != nil {
		return err
	}
	if err = resequence(ctx, tx, table, documentID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s delete: %w", table, err)
	}
	return nil
}
