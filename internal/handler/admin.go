package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CatalogAPI is implemented by *service.Catalog[T].
type CatalogAPI[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uint64) (*T, error)
	Create(ctx context.Context, v *T) (*T, error)
	Update(ctx context.Context, id uint64, v *T) (*T, error)
	Delete(ctx context.Context, id uint64) (*T, error)
}

// CRUDHandler exposes list/get/create/update/delete for one catalogue
// entity.  Every write answers with the affected resource.
type CRUDHandler[T any] struct {
	Svc CatalogAPI[T]
}

func NewCRUDHandler[T any](svc CatalogAPI[T]) *CRUDHandler[T] {
	return &CRUDHandler[T]{Svc: svc}
}

// defaulter is implemented by models whose zero value is not the right
// default.  Defaults are applied before decoding so omitted fields keep them.
type defaulter interface{ ApplyDefaults() }

func newBody[T any]() *T {
	v := new(T)
	if d, ok := any(v).(defaulter); ok {
		d.ApplyDefaults()
	}
	return v
}

// Register mounts the five routes on g.
func (h *CRUDHandler[T]) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *CRUDHandler[T]) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Svc.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []T{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CRUDHandler[T]) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CRUDHandler[T]) Create(c echo.Context) error {
	v := newBody[T]()
	if err := c.Bind(v); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.Create(ctx, v)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CRUDHandler[T]) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	// decode the body only; Bind would also copy the :id path param
	v := newBody[T]()
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.Update(ctx, id, v)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CRUDHandler[T]) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.Delete(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
