package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vshaniya/library-manager/internal/model"
)

// CreateBorrower upserts by email: an existing borrower is updated and
// answered with 200, a new one with 201.
func (h *Handler) CreateBorrower(c echo.Context) error {
	var req model.CreateBorrowerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	borrower, created, err := h.librarySvc.CreateBorrower(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return c.JSON(code, borrower)
}

func (h *Handler) GetBorrowers(c echo.Context) error {
	borrowers, err := h.librarySvc.ListBorrowers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if borrowers == nil {
		borrowers = []model.Borrower{}
	}
	return c.JSON(http.StatusOK, borrowers)
}

func (h *Handler) GetBorrower(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	borrower, err := h.librarySvc.GetBorrower(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, borrower)
}

func (h *Handler) UpdateBorrower(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req model.UpdateBorrowerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	borrower, err := h.librarySvc.UpdateBorrower(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, borrower)
}

func (h *Handler) DeleteBorrower(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeleteBorrower(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
