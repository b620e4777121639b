package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vshaniya/library-manager/internal/errs"
	"github.com/vshaniya/library-manager/internal/handler"
	"github.com/vshaniya/library-manager/internal/model"

	service_mocks "github.com/vshaniya/library-manager/internal/handler/mocks"
)

func newTestRouter(t *testing.T) (*echo.Echo, *service_mocks.MockLibraryService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	svc := service_mocks.NewMockLibraryService(c)
	log := zap.NewExample().Named("test")
	return handler.New(svc, log).NewRouter(), svc
}

func ptr[T any](v T) *T { return &v }

func TestHandler_CreateAuthor(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"name":"George Orwell"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					CreateAuthor(context.Background(), model.CreateAuthorRequest{Name: "George Orwell"}).
					Return(model.Author{ID: 1, Name: "George Orwell"}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"name":"George Orwell","biography":null,"birth_date":null}`,
			},
		},
		{
			name:         "err. name required",
			body:         `{"biography":"writer"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Key: 'CreateAuthorRequest.Name' Error:Field validation for 'Name' failed on the 'required' tag"}`,
			},
		},
		{
			name: "err. internal does not leak",
			body: `{"name":"George Orwell"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					CreateAuthor(context.Background(), model.CreateAuthorRequest{Name: "George Orwell"}).
					Return(model.Author{}, errors.New(`ERROR: relation "authors" does not exist (SQLSTATE 42P01)`))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"error":"internal server error"}`,
			},
		},
		{
			name: "err. store failure does not leak",
			body: `{"name":"George Orwell"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					CreateAuthor(context.Background(), model.CreateAuthorRequest{Name: "George Orwell"}).
					Return(model.Author{}, errs.Store("commit tx: connection reset"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"error":"internal server error"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodPost, "/api/authors", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService, id int)

	var tests = []struct {
		name         string
		id           string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			id:   "1",
			mockBehavior: func(r *service_mocks.MockLibraryService, id int) {
				r.EXPECT().
					GetBook(context.Background(), id).
					Return(model.Book{
						ID:              1,
						Title:           "1984",
						AuthorID:        2,
						AuthorName:      "George Orwell",
						PublicationYear: ptr(1949),
						ISBN:            ptr("9780451524935"),
						ImageURL:        model.DefaultImageURL,
						Available:       true,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"title":"1984","author_id":2,"author_name":"George Orwell","description":null,"publication_year":1949,"isbn":"9780451524935","genre":null,"pages":null,"image_url":"https://via.placeholder.com/150x200?text=No+Image","available":true}`,
			},
		},
		{
			name: "err. not found",
			id:   "99",
			mockBehavior: func(r *service_mocks.MockLibraryService, id int) {
				r.EXPECT().
					GetBook(context.Background(), id).
					Return(model.Book{}, errs.NotFound("book with id %d not found", id))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"error":"book with id 99 not found"}`,
			},
		},
		{
			name:         "err. invalid id",
			id:           "abc",
			mockBehavior: func(r *service_mocks.MockLibraryService, id int) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"invalid id"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			id := 0
			fmt.Sscanf(tt.id, "%d", &id)
			tt.mockBehavior(svc, id)

			r := httptest.NewRequest(http.MethodGet, "/api/books/"+tt.id, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			target: "/api/books/1",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					DeleteBook(context.Background(), 1, false).
					Return(nil)
			},
			response: response{
				expectedCode: http.StatusNoContent,
				expectedBody: ``,
			},
		},
		{
			name:   "ok. force",
			target: "/api/books/1?force=true",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					DeleteBook(context.Background(), 1, true).
					Return(nil)
			},
			response: response{
				expectedCode: http.StatusNoContent,
				expectedBody: ``,
			},
		},
		{
			name:   "err. loan history",
			target: "/api/books/1",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					DeleteBook(context.Background(), 1, false).
					Return(errs.Conflict("cannot delete book with loan history, use force=true to remove it together with its loan records"))
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"cannot delete book with loan history, use force=true to remove it together with its loan records"}`,
			},
		},
		{
			name:         "err. bad force",
			target:       "/api/books/1?force=yep",
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"force is invalid"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodDelete, tt.target, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBorrower(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "created",
			body: `{"name":"John Smith","email":"john.smith@email.com"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					CreateBorrower(context.Background(), model.CreateBorrowerRequest{Name: "John Smith", Email: "john.smith@email.com"}).
					Return(model.Borrower{ID: 1, Name: "John Smith", Email: "john.smith@email.com"}, true, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"name":"John Smith","email":"john.smith@email.com","phone":null}`,
			},
		},
		{
			name: "updated by email",
			body: `{"name":"John A. Smith","email":"john.smith@email.com"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					CreateBorrower(context.Background(), model.CreateBorrowerRequest{Name: "John A. Smith", Email: "john.smith@email.com"}).
					Return(model.Borrower{ID: 1, Name: "John A. Smith", Email: "john.smith@email.com"}, false, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"name":"John A. Smith","email":"john.smith@email.com","phone":null}`,
			},
		},
		{
			name:         "err. bad email",
			body:         `{"name":"John Smith","email":"not-an-email"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Key: 'CreateBorrowerRequest.Email' Error:Field validation for 'Email' failed on the 'email' tag"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodPost, "/api/borrowers", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteBorrower(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		mockBehavior func(r *service_mocks.MockLibraryService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					DeleteBorrower(context.Background(), 4).
					Return(nil)
			},
			expectedCode: http.StatusNoContent,
			expectedBody: ``,
		},
		{
			name: "err. active loans",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					DeleteBorrower(context.Background(), 4).
					Return(errs.Conflict("cannot delete borrower with active loans"))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"cannot delete borrower with active loans"}`,
		},
		{
			name: "err. returned loans still on record",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					DeleteBorrower(context.Background(), 4).
					Return(errs.Conflict("cannot delete borrower with loan history"))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"cannot delete borrower with loan history"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodDelete, "/api/borrowers/4", http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateLoan(t *testing.T) {
	t.Parallel()
	loanDate := model.NewDate(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	dueDate := model.NewDate(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC))

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"book_id":1,"borrower_id":2}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					CreateLoan(context.Background(), model.CreateLoanRequest{BookID: 1, BorrowerID: 2}).
					Return(model.Loan{
						ID:           7,
						BookID:       1,
						BookTitle:    "1984",
						BorrowerID:   2,
						BorrowerName: "John Smith",
						LoanDate:     loanDate,
						DueDate:      dueDate,
						Status:       model.StatusActive,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":7,"book_id":1,"book_title":"1984","borrower_id":2,"borrower_name":"John Smith","loan_date":"2024-05-01","due_date":"2024-05-15","return_date":null,"status":"active"}`,
			},
		},
		{
			name: "err. book unavailable",
			body: `{"book_id":1,"borrower_id":2}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					CreateLoan(context.Background(), model.CreateLoanRequest{BookID: 1, BorrowerID: 2}).
					Return(model.Loan{}, errs.Conflict("book is not available for loan"))
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"book is not available for loan"}`,
			},
		},
		{
			name: "err. book not found",
			body: `{"book_id":99,"borrower_id":2}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					CreateLoan(context.Background(), model.CreateLoanRequest{BookID: 99, BorrowerID: 2}).
					Return(model.Loan{}, errs.NotFound("book with id 99 not found"))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"error":"book with id 99 not found"}`,
			},
		},
		{
			name:         "err. book_id required",
			body:         `{"borrower_id":2}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"Key: 'CreateLoanRequest.BookID' Error:Field validation for 'BookID' failed on the 'required' tag"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodPost, "/api/loans", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ReturnLoan(t *testing.T) {
	t.Parallel()
	loanDate := model.NewDate(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	dueDate := model.NewDate(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC))
	returnDate := model.NewDate(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					ReturnLoan(context.Background(), 7).
					Return(model.Loan{
						ID:           7,
						BookID:       1,
						BookTitle:    "1984",
						BorrowerID:   2,
						BorrowerName: "John Smith",
						LoanDate:     loanDate,
						DueDate:      dueDate,
						ReturnDate:   &returnDate,
						Status:       model.StatusReturned,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":7,"book_id":1,"book_title":"1984","borrower_id":2,"borrower_name":"John Smith","loan_date":"2024-05-01","due_date":"2024-05-15","return_date":"2024-05-10","status":"returned"}`,
			},
		},
		{
			name: "err. already returned",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					ReturnLoan(context.Background(), 7).
					Return(model.Loan{}, errs.Conflict("book already returned"))
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error":"book already returned"}`,
			},
		},
		{
			name: "err. not found",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					ReturnLoan(context.Background(), 7).
					Return(model.Loan{}, errs.NotFound("loan with id 7 not found"))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"error":"loan with id 7 not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodPut, "/api/loans/7/return", http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetLoans(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		target       string
		mockBehavior func(r *service_mocks.MockLibraryService)
		expectedBody string
	}{
		{
			name:   "empty list is a json array",
			target: "/api/loans",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					ListLoans(context.Background()).
					Return(nil, nil)
			},
			expectedBody: `[]`,
		},
		{
			name:   "active only",
			target: "/api/loans/active",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					ListActiveLoans(context.Background()).
					Return([]model.Loan{
						{
							ID:           7,
							BookID:       1,
							BookTitle:    "1984",
							BorrowerID:   2,
							BorrowerName: "John Smith",
							LoanDate:     model.NewDate(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
							DueDate:      model.NewDate(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)),
							Status:       model.StatusActive,
						},
					}, nil)
			},
			expectedBody: `[{"id":7,"book_id":1,"book_title":"1984","borrower_id":2,"borrower_name":"John Smith","loan_date":"2024-05-01","due_date":"2024-05-15","return_date":null,"status":"active"}]`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteAuthor(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		mockBehavior func(r *service_mocks.MockLibraryService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					DeleteAuthor(context.Background(), 3).
					Return(nil)
			},
			expectedCode: http.StatusNoContent,
			expectedBody: ``,
		},
		{
			name: "err. has books",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					DeleteAuthor(context.Background(), 3).
					Return(errs.Conflict("cannot delete author with existing books"))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"cannot delete author with existing books"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodDelete, "/api/authors/3", http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
