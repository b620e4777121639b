package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vshaniya/library-manager/internal/errs"
	"github.com/vshaniya/library-manager/internal/model"
)

const loanColumns = `l.id, l.book_id, coalesce(b.title, 'Unknown') as book_title,
l.borrower_id, coalesce(w.name, 'Unknown') as borrower_name,
l.loan_date, l.due_date, l.return_date, l.status`

func (r *repository) loanSelect() sq.SelectBuilder {
	return qb.Select(loanColumns).
		From(loansTableName + " l").
		LeftJoin(booksTableName + " b on b.id = l.book_id").
		LeftJoin(borrowersTableName + " w on w.id = l.borrower_id")
}

// CreateLoan borrows a book. The book row is locked for the duration
// of the transaction, so two concurrent borrows of the same book
// serialize and the loser observes available = false.
func (r *repository) CreateLoan(ctx context.Context, req model.CreateLoanRequest, loanDate, dueDate time.Time) (model.Loan, error) {
	var loan model.Loan
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var available bool
		err := tx.QueryRow(ctx,
			`select available from books where id = $1 for update`, req.BookID).Scan(&available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NotFound("book with id %d not found", req.BookID)
			}
			return err
		}
		if !available {
			return errs.Conflict("book is not available for loan")
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			`select exists(select 1 from borrowers where id = $1)`, req.BorrowerID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return errs.NotFound("borrower with id %d not found", req.BorrowerID)
		}

		query, args, err := qb.Insert(loansTableName).
			Columns("book_id", "borrower_id", "loan_date", "due_date", "status").
			Values(req.BookID, req.BorrowerID, loanDate, dueDate, model.StatusActive).
			Suffix("returning id").
			ToSql()
		if err != nil {
			return err
		}
		var id int
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			r.log.Error("CreateLoan", zap.String("q", query), zap.Error(err))
			return err
		}

		if _, err := tx.Exec(ctx,
			`update books set available = false where id = $1`, req.BookID); err != nil {
			return err
		}

		loan, err = r.getLoan(ctx, tx, id)
		return err
	})
	return loan, err
}

func (r *repository) ListLoans(ctx context.Context, activeOnly bool) ([]model.Loan, error) {
	q := r.loanSelect()
	if activeOnly {
		q = q.Where(sq.Eq{"l.status": model.StatusActive})
	}
	query, args, err := q.OrderBy("l.id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Loan])
}

func (r *repository) GetLoan(ctx context.Context, id int) (model.Loan, error) {
	return r.getLoan(ctx, r.db, id)
}

func (r *repository) getLoan(ctx context.Context, q querier, id int) (model.Loan, error) {
	query, args, err := r.loanSelect().Where(sq.Eq{"l.id": id}).ToSql()
	if err != nil {
		return model.Loan{}, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return model.Loan{}, err
	}
	defer rows.Close()

	loan, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Loan])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, errs.NotFound("loan with id %d not found", id)
		}
		return model.Loan{}, err
	}
	return loan, nil
}

func (r *repository) ReturnLoan(ctx context.Context, id int, returnedAt time.Time) (model.Loan, error) {
	var loan model.Loan
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var bookID int
		var status model.Status
		err := tx.QueryRow(ctx,
			`select book_id, status from loans where id = $1 for update`, id).Scan(&bookID, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NotFound("loan with id %d not found", id)
			}
			return err
		}
		if status == model.StatusReturned {
			return errs.Conflict("book already returned")
		}

		if _, err := tx.Exec(ctx,
			`update loans set status = $2, return_date = $3 where id = $1`,
			id, model.StatusReturned, returnedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`update books set available = true where id = $1`, bookID); err != nil {
			return err
		}

		loan, err = r.getLoan(ctx, tx, id)
		return err
	})
	return loan, err
}

func (r *repository) DeleteLoan(ctx context.Context, id int) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var bookID int
		var status model.Status
		err := tx.QueryRow(ctx,
			`select book_id, status from loans where id = $1 for update`, id).Scan(&bookID, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NotFound("loan with id %d not found", id)
			}
			return err
		}

		if status == model.StatusActive {
			if _, err := tx.Exec(ctx,
				`update books set available = true where id = $1`, bookID); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `delete from loans where id = $1`, id)
		return err
	})
}
