package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vshaniya/library-manager/internal/model"
)

func (h *Handler) CreateLoan(c echo.Context) error {
	var req model.CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	loan, err := h.librarySvc.CreateLoan(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loan)
}

func (h *Handler) GetLoans(c echo.Context) error {
	loans, err := h.librarySvc.ListLoans(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) GetActiveLoans(c echo.Context) error {
	loans, err := h.librarySvc.ListActiveLoans(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) ReturnLoan(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	loan, err := h.librarySvc.ReturnLoan(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) DeleteLoan(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeleteLoan(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
