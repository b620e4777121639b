package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vshaniya/library-manager/internal/model"
)

func (h *Handler) CreateAuthor(c echo.Context) error {
	var req model.CreateAuthorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	author, err := h.librarySvc.CreateAuthor(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, author)
}

func (h *Handler) GetAuthors(c echo.Context) error {
	authors, err := h.librarySvc.ListAuthors(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if authors == nil {
		authors = []model.Author{}
	}
	return c.JSON(http.StatusOK, authors)
}

func (h *Handler) GetAuthor(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	author, err := h.librarySvc.GetAuthor(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, author)
}

func (h *Handler) UpdateAuthor(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req model.UpdateAuthorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	author, err := h.librarySvc.UpdateAuthor(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, author)
}

func (h *Handler) DeleteAuthor(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.librarySvc.DeleteAuthor(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
