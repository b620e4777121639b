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

const bookColumns = `b.id, b.title, b.author_id, coalesce(a.name, 'Unknown') as author_name,
b.description, b.publication_year, b.isbn, b.genre, b.pages, b.image_url, b.available`

func (r *repository) bookSelect() sq.SelectBuilder {
	return qb.Select(bookColumns).
		From(booksTableName + " b").
		LeftJoin(authorsTableName + " a on a.id = b.author_id")
}

func (r *repository) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	imageURL := model.DefaultImageURL
	if req.ImageURL != nil && *req.ImageURL != "" {
		imageURL = *req.ImageURL
	}

	var book model.Book
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := r.authorExists(ctx, tx, req.AuthorID); err != nil {
			return err
		}

		query, args, err := qb.Insert(booksTableName).
			Columns("title", "author_id", "description", "publication_year", "isbn", "genre", "pages", "image_url").
			Values(req.Title, req.AuthorID, req.Description, req.PublicationYear, req.ISBN, req.Genre, req.Pages, imageURL).
			Suffix("returning id").
			ToSql()
		if err != nil {
			return err
		}

		var id int
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			if isUniqueViolation(err) {
				return errs.Conflict("book with isbn %s already exists", *req.ISBN)
			}
			r.log.Error("CreateBook", zap.String("q", query), zap.Error(err))
			return err
		}

		book, err = r.getBook(ctx, tx, id)
		return err
	})
	return book, err
}

func (r *repository) ListBooks(ctx context.Context) ([]model.Book, error) {
	query, args, err := r.bookSelect().OrderBy("b.id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	return r.getBook(ctx, r.db, id)
}

func (r *repository) getBook(ctx context.Context, q querier, id int) (model.Book, error) {
	query, args, err := r.bookSelect().Where(sq.Eq{"b.id": id}).ToSql()
	if err != nil {
		return model.Book{}, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, err
	}
	defer rows.Close()

	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.NotFound("book with id %d not found", id)
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error) {
	var book model.Book
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var curAuthorID int
		var curISBN *string
		err := tx.QueryRow(ctx,
			`select author_id, isbn from books where id = $1 for update`, id).Scan(&curAuthorID, &curISBN)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NotFound("book with id %d not found", id)
			}
			return err
		}

		if req.AuthorID != nil && *req.AuthorID != curAuthorID {
			if err := r.authorExists(ctx, tx, *req.AuthorID); err != nil {
				return err
			}
		}

		upd := qb.Update(booksTableName)
		set := false
		if req.Title != nil {
			upd, set = upd.Set("title", *req.Title), true
		}
		if req.AuthorID != nil {
			upd, set = upd.Set("author_id", *req.AuthorID), true
		}
		if req.Description != nil {
			upd, set = upd.Set("description", *req.Description), true
		}
		if req.PublicationYear != nil {
			upd, set = upd.Set("publication_year", *req.PublicationYear), true
		}
		if req.ISBN != nil {
			upd, set = upd.Set("isbn", *req.ISBN), true
		}
		if req.Genre != nil {
			upd, set = upd.Set("genre", *req.Genre), true
		}
		if req.Pages != nil {
			upd, set = upd.Set("pages", *req.Pages), true
		}
		if req.ImageURL != nil {
			upd, set = upd.Set("image_url", *req.ImageURL), true
		}

		if set {
			query, args, err := upd.Where(sq.Eq{"id": id}).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				if isUniqueViolation(err) {
					return errs.Conflict("book with isbn %s already exists", *req.ISBN)
				}
				return err
			}
		}

		book, err = r.getBook(ctx, tx, id)
		return err
	})
	return book, err
}

func (r *repository) DeleteBook(ctx context.Context, id int, force bool) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var active, total int
		err := tx.QueryRow(ctx,
			`select count(*) filter (where status = $2), count(*) from loans where book_id = $1`,
			id, model.StatusActive).Scan(&active, &total)
		if err != nil {
			return err
		}
		if active > 0 {
			return errs.Conflict("cannot delete book with active loans, return the book first")
		}
		if total > 0 {
			if !force {
				return errs.Conflict("cannot delete book with loan history, use force=true to remove it together with its loan records")
			}
			if _, err := tx.Exec(ctx, `delete from loans where book_id = $1`, id); err != nil {
				return err
			}
		}

		ct, err := tx.Exec(ctx, `delete from books where id = $1`, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return errs.NotFound("book with id %d not found", id)
		}
		return nil
	})
}
