package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vshaniya/library-manager/internal/errs"
	"github.com/vshaniya/library-manager/internal/model"
	"github.com/vshaniya/library-manager/internal/service"
	"github.com/vshaniya/library-manager/pkg/kafka"

	repo_mocks "github.com/vshaniya/library-manager/internal/repository/mocks"
)

type recordingLog struct {
	events []kafka.LoanEvent
	err    error
}

func (l *recordingLog) Log(ev kafka.LoanEvent) error {
	l.events = append(l.events, ev)
	return l.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestService_CreateLoan(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	var tests = []struct {
		name         string
		req          model.CreateLoanRequest
		wantDueDate  time.Time
		wantErr      bool
		wantEvents   int
		mockBehavior func(r *repo_mocks.MockRepository, req model.CreateLoanRequest, due time.Time)
	}{
		{
			name:        "default term is 14 days",
			req:         model.CreateLoanRequest{BookID: 1, BorrowerID: 2},
			wantDueDate: now.AddDate(0, 0, 14),
			wantEvents:  1,
			mockBehavior: func(r *repo_mocks.MockRepository, req model.CreateLoanRequest, due time.Time) {
				r.EXPECT().
					CreateLoan(context.Background(), req, now, due).
					Return(model.Loan{ID: 7, BookID: 1, BorrowerID: 2, Status: model.StatusActive}, nil)
			},
		},
		{
			name:        "custom term",
			req:         model.CreateLoanRequest{BookID: 1, BorrowerID: 2, DaysToReturn: 7},
			wantDueDate: now.AddDate(0, 0, 7),
			wantEvents:  1,
			mockBehavior: func(r *repo_mocks.MockRepository, req model.CreateLoanRequest, due time.Time) {
				r.EXPECT().
					CreateLoan(context.Background(), req, now, due).
					Return(model.Loan{ID: 8, BookID: 1, BorrowerID: 2, Status: model.StatusActive}, nil)
			},
		},
		{
			name:        "repo error suppresses the event",
			req:         model.CreateLoanRequest{BookID: 1, BorrowerID: 2},
			wantDueDate: now.AddDate(0, 0, 14),
			wantErr:     true,
			mockBehavior: func(r *repo_mocks.MockRepository, req model.CreateLoanRequest, due time.Time) {
				r.EXPECT().
					CreateLoan(context.Background(), req, now, due).
					Return(model.Loan{}, errs.Conflict("book is not available for loan"))
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			repo := repo_mocks.NewMockRepository(c)
			events := &recordingLog{}
			tt.mockBehavior(repo, tt.req, tt.wantDueDate)

			svc := service.NewService(repo, zap.NewExample(),
				service.WithClock(fixedClock(now)),
				service.WithEventLog(events),
			)

			loan, err := svc.CreateLoan(context.Background(), tt.req)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, model.StatusActive, loan.Status)
			}
			require.Len(t, events.events, tt.wantEvents)
			if tt.wantEvents > 0 {
				require.Equal(t, kafka.EventLoanBorrowed, events.events[0].Type)
				require.Equal(t, loan.ID, events.events[0].LoanID)
			}
		})
	}
}

func TestService_CreateLoan_EventFailureIsBestEffort(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	c := gomock.NewController(t)
	defer c.Finish()
	repo := repo_mocks.NewMockRepository(c)
	repo.EXPECT().
		CreateLoan(context.Background(), gomock.Any(), now, now.AddDate(0, 0, 14)).
		Return(model.Loan{ID: 7, Status: model.StatusActive}, nil)

	events := &recordingLog{err: errors.New("broker down")}
	svc := service.NewService(repo, zap.NewExample(),
		service.WithClock(fixedClock(now)),
		service.WithEventLog(events),
	)

	loan, err := svc.CreateLoan(context.Background(), model.CreateLoanRequest{BookID: 1, BorrowerID: 2})
	require.NoError(t, err)
	require.Equal(t, 7, loan.ID)
}

func TestService_CreateBorrower(t *testing.T) {
	t.Parallel()
	req := model.CreateBorrowerRequest{
		Name:  "John Smith",
		Email: "john.smith@email.com",
	}

	var tests = []struct {
		name         string
		wantCreated  bool
		wantErr      bool
		mockBehavior func(r *repo_mocks.MockRepository)
	}{
		{
			name:        "new borrower is created",
			wantCreated: true,
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					GetBorrowerByEmail(context.Background(), req.Email).
					Return(model.Borrower{}, errs.NotFound("borrower with email %s not found", req.Email))
				r.EXPECT().
					CreateBorrower(context.Background(), req).
					Return(model.Borrower{ID: 1, Name: req.Name, Email: req.Email}, nil)
			},
		},
		{
			name:        "existing email updates in place",
			wantCreated: false,
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					GetBorrowerByEmail(context.Background(), req.Email).
					Return(model.Borrower{ID: 1, Name: "John", Email: req.Email}, nil)
				r.EXPECT().
					UpdateBorrower(context.Background(), 1, model.UpdateBorrowerRequest{Name: &req.Name, Phone: req.Phone}).
					Return(model.Borrower{ID: 1, Name: req.Name, Email: req.Email}, nil)
			},
		},
		{
			name:    "lookup failure propagates",
			wantErr: true,
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					GetBorrowerByEmail(context.Background(), req.Email).
					Return(model.Borrower{}, errs.Store("db down"))
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			repo := repo_mocks.NewMockRepository(c)
			tt.mockBehavior(repo)

			svc := service.NewService(repo, zap.NewExample())
			borrower, created, err := svc.CreateBorrower(context.Background(), req)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantCreated, created)
			require.Equal(t, req.Name, borrower.Name)
		})
	}
}

func TestService_ReturnLoan(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 10, 16, 0, 0, 0, time.UTC)
	c := gomock.NewController(t)
	defer c.Finish()
	repo := repo_mocks.NewMockRepository(c)
	returned := model.Loan{ID: 7, BookID: 1, BorrowerID: 2, Status: model.StatusReturned}
	repo.EXPECT().
		ReturnLoan(context.Background(), 7, now).
		Return(returned, nil)

	events := &recordingLog{}
	svc := service.NewService(repo, zap.NewExample(),
		service.WithClock(fixedClock(now)),
		service.WithEventLog(events),
	)

	loan, err := svc.ReturnLoan(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, returned, loan)
	require.Len(t, events.events, 1)
	require.Equal(t, kafka.EventLoanReturned, events.events[0].Type)
}

func TestService_DeleteLoan(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name         string
		wantErr      bool
		wantEvents   int
		mockBehavior func(r *repo_mocks.MockRepository)
	}{
		{
			name:       "ok",
			wantEvents: 1,
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					GetLoan(context.Background(), 7).
					Return(model.Loan{ID: 7, BookID: 1, BorrowerID: 2}, nil)
				r.EXPECT().
					DeleteLoan(context.Background(), 7).
					Return(nil)
			},
		},
		{
			name:    "missing loan stops before delete",
			wantErr: true,
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().
					GetLoan(context.Background(), 7).
					Return(model.Loan{}, errs.NotFound("loan with id 7 not found"))
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			repo := repo_mocks.NewMockRepository(c)
			tt.mockBehavior(repo)

			events := &recordingLog{}
			svc := service.NewService(repo, zap.NewExample(), service.WithEventLog(events))

			err := svc.DeleteLoan(context.Background(), 7)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, events.events, tt.wantEvents)
			if tt.wantEvents > 0 {
				require.Equal(t, kafka.EventLoanDeleted, events.events[0].Type)
			}
		})
	}
}
