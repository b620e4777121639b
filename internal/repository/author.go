package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vshaniya/library-manager/internal/errs"
	"github.com/vshaniya/library-manager/internal/model"
)

const authorColumns = "id, name, biography, birth_date"

func (r *repository) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error) {
	query, args, err := qb.Insert(authorsTableName).
		Columns("name", "biography", "birth_date").
		Values(req.Name, req.Biography, req.BirthDate).
		Suffix("returning " + authorColumns).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Author{}, err
	}
	defer rows.Close()

	author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		r.log.Error("CreateAuthor", zap.String("q", query), zap.Error(err))
		return model.Author{}, err
	}
	return author, nil
}

func (r *repository) ListAuthors(ctx context.Context) ([]model.Author, error) {
	query, args, err := qb.Select(authorColumns).
		From(authorsTableName).
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

	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Author])
}

func (r *repository) GetAuthor(ctx context.Context, id int) (model.Author, error) {
	return r.getAuthor(ctx, r.db, id)
}

func (r *repository) getAuthor(ctx context.Context, q querier, id int) (model.Author, error) {
	query, args, err := qb.Select(authorColumns).
		From(authorsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return model.Author{}, err
	}
	defer rows.Close()

	author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Author{}, errs.NotFound("author with id %d not found", id)
		}
		return model.Author{}, err
	}
	return author, nil
}

func (r *repository) UpdateAuthor(ctx context.Context, id int, req model.UpdateAuthorRequest) (model.Author, error) {
	upd := qb.Update(authorsTableName)
	set := false
	if req.Name != nil {
		upd, set = upd.Set("name", *req.Name), true
	}
	if req.Biography != nil {
		upd, set = upd.Set("biography", *req.Biography), true
	}
	if req.BirthDate != nil {
		upd, set = upd.Set("birth_date", *req.BirthDate), true
	}
	if !set {
		return r.GetAuthor(ctx, id)
	}

	query, args, err := upd.
		Where(sq.Eq{"id": id}).
		Suffix("returning " + authorColumns).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Author{}, err
	}
	defer rows.Close()

	author, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Author{}, errs.NotFound("author with id %d not found", id)
		}
		return model.Author{}, err
	}
	return author, nil
}

func (r *repository) DeleteAuthor(ctx context.Context, id int) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx,
			`select count(*) from books where author_id = $1`, id).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return errs.Conflict("cannot delete author with existing books")
		}

		ct, err := tx.Exec(ctx, `delete from authors where id = $1`, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return errs.NotFound("author with id %d not found", id)
		}
		return nil
	})
}

func (r *repository) authorExists(ctx context.Context, q querier, id int) error {
	var exists bool
	if err := q.QueryRow(ctx,
		`select exists(select 1 from authors where id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return errs.Validation("author with id %d does not exist", id)
	}
	return nil
}
