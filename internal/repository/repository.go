package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vshaniya/library-manager/internal/errs"
	"github.com/vshaniya/library-manager/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	GetAuthor(ctx context.Context, id int) (model.Author, error)
	UpdateAuthor(ctx context.Context, id int, req model.UpdateAuthorRequest) (model.Author, error)
	DeleteAuthor(ctx context.Context, id int) error

	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int, force bool) error

	CreateBorrower(ctx context.Context, req model.CreateBorrowerRequest) (model.Borrower, error)
	ListBorrowers(ctx context.Context) ([]model.Borrower, error)
	GetBorrower(ctx context.Context, id int) (model.Borrower, error)
	GetBorrowerByEmail(ctx context.Context, email string) (model.Borrower, error)
	UpdateBorrower(ctx context.Context, id int, req model.UpdateBorrowerRequest) (model.Borrower, error)
	DeleteBorrower(ctx context.Context, id int) error

	CreateLoan(ctx context.Context, req model.CreateLoanRequest, loanDate, dueDate time.Time) (model.Loan, error)
	ListLoans(ctx context.Context, activeOnly bool) ([]model.Loan, error)
	GetLoan(ctx context.Context, id int) (model.Loan, error)
	ReturnLoan(ctx context.Context, id int, returnedAt time.Time) (model.Loan, error)
	DeleteLoan(ctx context.Context, id int) error
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	authorsTableName   = `authors`
	booksTableName     = `books`
	borrowersTableName = `borrowers`
	loansTableName     = `loans`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so reads can
// run standalone or inside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// withTx runs fn inside a transaction: commit on nil, rollback on any
// error, so a failed guard never leaves partial writes behind.
func (r *repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errs.Store("begin tx: %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Store("commit tx: %v", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
