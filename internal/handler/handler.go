package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/vshaniya/library-manager/internal/errs"
	md "github.com/vshaniya/library-manager/pkg/middleware"
	"github.com/vshaniya/library-manager/pkg/validate"
	_ "github.com/vshaniya/library-manager/swagger"
)

type Handler struct {
	librarySvc LibraryService
	log        *zap.Logger
}

func New(librarySvc LibraryService, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.HTTPErrorHandler = h.errorHandler

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()

	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/authors", h.CreateAuthor)
	api.GET("/authors", h.GetAuthors)
	api.GET("/authors/:id", h.GetAuthor)
	api.PUT("/authors/:id", h.UpdateAuthor)
	api.DELETE("/authors/:id", h.DeleteAuthor)

	api.POST("/books", h.CreateBook)
	api.GET("/books", h.GetBooks)
	api.GET("/books/:id", h.GetBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.POST("/borrowers", h.CreateBorrower)
	api.GET("/borrowers", h.GetBorrowers)
	api.GET("/borrowers/:id", h.GetBorrower)
	api.PUT("/borrowers/:id", h.UpdateBorrower)
	api.DELETE("/borrowers/:id", h.DeleteBorrower)

	api.POST("/loans", h.CreateLoan)
	api.GET("/loans", h.GetLoans)
	api.GET("/loans/active", h.GetActiveLoans)
	api.PUT("/loans/:id/return", h.ReturnLoan)
	api.DELETE("/loans/:id", h.DeleteLoan)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// errorHandler renders every error as {"error": message}.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprintf("%v", he.Message)
	}
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code) //nolint:errcheck
		return
	}
	_ = c.JSON(code, errs.ErrorResponse{Error: msg}) //nolint:errcheck
}

// httpError maps domain error kinds onto status codes: missing
// entities are 404, guard and uniqueness violations are 400. Anything
// else answers 500 with a generic body, the cause stays in the logs.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}

func idParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
