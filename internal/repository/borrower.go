package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/vshaniya/library-manager/internal/errs"
	"github.com/vshaniya/library-manager/internal/model"
)

const borrowerColumns = "id, name, email, phone"

func (r *repository) CreateBorrower(ctx context.Context, req model.CreateBorrowerRequest) (model.Borrower, error) {
	query, args, err := qb.Insert(borrowersTableName).
		Columns("name", "email", "phone").
		Values(req.Name, req.Email, req.Phone).
		Suffix("returning " + borrowerColumns).
		ToSql()
	if err != nil {
		return model.Borrower{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Borrower{}, err
	}
	defer rows.Close()

	borrower, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Borrower])
	if err != nil {
		if isUniqueViolation(err) {
			return model.Borrower{}, errs.Conflict("borrower with email %s already exists", req.Email)
		}
		return model.Borrower{}, err
	}
	return borrower, nil
}

func (r *repository) ListBorrowers(ctx context.Context) ([]model.Borrower, error) {
	query, args, err := qb.Select(borrowerColumns).
		From(borrowersTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Borrower])
}

func (r *repository) GetBorrower(ctx context.Context, id int) (model.Borrower, error) {
	query, args, err := qb.Select(borrowerColumns).
		From(borrowersTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Borrower{}, err
	}
	borrower, err := r.collectBorrower(ctx, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Borrower{}, errs.NotFound("borrower with id %d not found", id)
		}
		return model.Borrower{}, err
	}
	return borrower, nil
}

func (r *repository) GetBorrowerByEmail(ctx context.Context, email string) (model.Borrower, error) {
	query, args, err := qb.Select(borrowerColumns).
		From(borrowersTableName).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return model.Borrower{}, err
	}
	borrower, err := r.collectBorrower(ctx, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Borrower{}, errs.NotFound("borrower with email %s not found", email)
		}
		return model.Borrower{}, err
	}
	return borrower, nil
}

func (r *repository) collectBorrower(ctx context.Context, query string, args []any) (model.Borrower, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Borrower{}, err
	}
	defer rows.Close()

	return pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Borrower])
}

func (r *repository) UpdateBorrower(ctx context.Context, id int, req model.UpdateBorrowerRequest) (model.Borrower, error) {
	upd := qb.Update(borrowersTableName)
	set := false
	if req.Name != nil {
		upd, set = upd.Set("name", *req.Name), true
	}
	if req.Email != nil {
		upd, set = upd.Set("email", *req.Email), true
	}
	if req.Phone != nil {
		upd, set = upd.Set("phone", *req.Phone), true
	}
	if !set {
		return r.GetBorrower(ctx, id)
	}

	query, args, err := upd.
		Where(sq.Eq{"id": id}).
		Suffix("returning " + borrowerColumns).
		ToSql()
	if err != nil {
		return model.Borrower{}, err
	}

	borrower, err := r.collectBorrower(ctx, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Borrower{}, errs.NotFound("borrower with id %d not found", id)
		}
		if isUniqueViolation(err) {
			return model.Borrower{}, errs.Conflict("email already exists")
		}
		return model.Borrower{}, err
	}
	return borrower, nil
}

func (r *repository) DeleteBorrower(ctx context.Context, id int) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var active int
		err := tx.QueryRow(ctx,
			`select count(*) from loans where borrower_id = $1 and status = $2`,
			id, model.StatusActive).Scan(&active)
		if err != nil {
			return err
		}
		if active > 0 {
			return errs.Conflict("cannot delete borrower with active loans")
		}

		ct, err := tx.Exec(ctx, `delete from borrowers where id = $1`, id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return errs.Conflict("cannot delete borrower with loan history")
			}
			return err
		}
		if ct.RowsAffected() == 0 {
			return errs.NotFound("borrower with id %d not found", id)
		}
		return nil
	})
}
