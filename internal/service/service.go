package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vshaniya/library-manager/internal/errs"
	"github.com/vshaniya/library-manager/internal/model"
	"github.com/vshaniya/library-manager/internal/repository"
	"github.com/vshaniya/library-manager/pkg/kafka"
)

// DefaultLoanTermDays is used when a borrow request does not name a term.
const DefaultLoanTermDays = 14

type Service struct {
	log    *zap.Logger
	repo   repository.Repository
	events EventLog
	now    func() time.Time
}

type Option func(*Service)

func WithEventLog(events EventLog) Option {
	return func(s *Service) { s.events = events }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo repository.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:  log,
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (model.Author, error) {
	return s.repo.CreateAuthor(ctx, req)
}

func (s *Service) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.repo.ListAuthors(ctx)
}

func (s *Service) GetAuthor(ctx context.Context, id int) (model.Author, error) {
	return s.repo.GetAuthor(ctx, id)
}

func (s *Service) UpdateAuthor(ctx context.Context, id int, req model.UpdateAuthorRequest) (model.Author, error) {
	return s.repo.UpdateAuthor(ctx, id, req)
}

func (s *Service) DeleteAuthor(ctx context.Context, id int) error {
	return s.repo.DeleteAuthor(ctx, id)
}

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	return s.repo.CreateBook(ctx, req)
}

func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error) {
	return s.repo.UpdateBook(ctx, id, req)
}

func (s *Service) DeleteBook(ctx context.Context, id int, force bool) error {
	return s.repo.DeleteBook(ctx, id, force)
}

// CreateBorrower is an upsert keyed by email: an existing borrower is
// updated in place and reported as not created, otherwise a new row is
// inserted.
func (s *Service) CreateBorrower(ctx context.Context, req model.CreateBorrowerRequest) (model.Borrower, bool, error) {
	existing, err := s.repo.GetBorrowerByEmail(ctx, req.Email)
	if err == nil {
		upd := model.UpdateBorrowerRequest{
			Name:  &req.Name,
			Phone: req.Phone,
		}
		borrower, err := s.repo.UpdateBorrower(ctx, existing.ID, upd)
		return borrower, false, err
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return model.Borrower{}, false, err
	}

	borrower, err := s.repo.CreateBorrower(ctx, req)
	if err != nil {
		return model.Borrower{}, false, err
	}
	return borrower, true, nil
}

func (s *Service) ListBorrowers(ctx context.Context) ([]model.Borrower, error) {
	return s.repo.ListBorrowers(ctx)
}

func (s *Service) GetBorrower(ctx context.Context, id int) (model.Borrower, error) {
	return s.repo.GetBorrower(ctx, id)
}

func (s *Service) UpdateBorrower(ctx context.Context, id int, req model.UpdateBorrowerRequest) (model.Borrower, error) {
	return s.repo.UpdateBorrower(ctx, id, req)
}

func (s *Service) DeleteBorrower(ctx context.Context, id int) error {
	return s.repo.DeleteBorrower(ctx, id)
}

// CreateLoan borrows a book: the due date is the loan date plus the
// requested term in calendar days.
func (s *Service) CreateLoan(ctx context.Context, req model.CreateLoanRequest) (model.Loan, error) {
	term := req.DaysToReturn
	if term == 0 {
		term = DefaultLoanTermDays
	}
	loanDate := s.now()
	dueDate := loanDate.AddDate(0, 0, term)

	loan, err := s.repo.CreateLoan(ctx, req, loanDate, dueDate)
	if err != nil {
		return model.Loan{}, err
	}
	s.publish(kafka.EventLoanBorrowed, loan)
	return loan, nil
}

func (s *Service) ListLoans(ctx context.Context) ([]model.Loan, error) {
	return s.repo.ListLoans(ctx, false)
}

func (s *Service) ListActiveLoans(ctx context.Context) ([]model.Loan, error) {
	return s.repo.ListLoans(ctx, true)
}

func (s *Service) ReturnLoan(ctx context.Context, id int) (model.Loan, error) {
	loan, err := s.repo.ReturnLoan(ctx, id, s.now())
	if err != nil {
		return model.Loan{}, err
	}
	s.publish(kafka.EventLoanReturned, loan)
	return loan, nil
}

func (s *Service) DeleteLoan(ctx context.Context, id int) error {
	loan, err := s.repo.GetLoan(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLoan(ctx, id); err != nil {
		return err
	}
	s.publish(kafka.EventLoanDeleted, loan)
	return nil
}

// publish is best effort: event delivery never fails the request.
func (s *Service) publish(typ string, loan model.Loan) {
	if s.events == nil {
		return
	}
	if err := s.events.Log(kafka.NewLoanEvent(typ, loan.ID, loan.BookID, loan.BorrowerID)); err != nil {
		s.log.Warn("publish loan event", zap.String("type", typ), zap.Error(err))
	}
}
