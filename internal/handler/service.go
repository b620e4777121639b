package handler

import (
	"context"

	"github.com/vshaniya/library-manager/internal/model"
	"github.com/vshaniya/library-manager/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
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

	CreateBorrower(ctx context.Context, req model.CreateBorrowerRequest) (model.Borrower, bool, error)
	ListBorrowers(ctx context.Context) ([]model.Borrower, error)
	GetBorrower(ctx context.Context, id int) (model.Borrower, error)
	UpdateBorrower(ctx context.Context, id int, req model.UpdateBorrowerRequest) (model.Borrower, error)
	DeleteBorrower(ctx context.Context, id int) error

	CreateLoan(ctx context.Context, req model.CreateLoanRequest) (model.Loan, error)
	ListLoans(ctx context.Context) ([]model.Loan, error)
	ListActiveLoans(ctx context.Context) ([]model.Loan, error)
	ReturnLoan(ctx context.Context, id int) (model.Loan, error)
	DeleteLoan(ctx context.Context, id int) error
}

var _ LibraryService = (*service.Service)(nil)
