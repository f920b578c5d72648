package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-shop-api/internal/api/metrics"
	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
	"github.com/sweetshop/sweet-shop-api/internal/core/ports"
)

// SweetHandler handles HTTP requests for inventory operations. Domain errors
// propagate to the central error handler for status mapping.
type SweetHandler struct {
	service ports.SweetService
}

func NewSweetHandler(service ports.SweetService) *SweetHandler {
	return &SweetHandler{service: service}
}

// List handles GET /inventory.
//
// @Summary      List all sweets, newest first
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.SweetView
// @Failure      401  {object}  errorResponse
// @Router       /inventory [get]
func (h *SweetHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// Search handles GET /inventory/search.
//
// @Summary      Search sweets by name, category, and price range
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        name      query     string  false  "Substring match on name (case-insensitive)"
// @Param        category  query     string  false  "Substring match on category (case-insensitive)"
// @Param        minPrice  query     number  false  "Inclusive lower price bound"
// @Param        maxPrice  query     number  false  "Inclusive upper price bound"
// @Success      200       {array}   ports.SweetView
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Router       /inventory/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	views, err := h.service.Search(c.Request().Context(), ports.SearchInput{
		Name:     c.QueryParam("name"),
		Category: c.QueryParam("category"),
		MinPrice: c.QueryParam("minPrice"),
		MaxPrice: c.QueryParam("maxPrice"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// Create handles POST /inventory (multipart form, admin only).
//
// @Summary      Create a sweet
// @Tags         inventory
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        name      formData  string  true   "Name (unique)"
// @Param        category  formData  string  true   "Category"
// @Param        price     formData  number  true   "Non-negative price"
// @Param        quantity  formData  integer true   "Non-negative quantity"
// @Param        image     formData  file    false  "Image (JPEG/PNG/GIF/WebP, max 5MB)"
// @Success      201       {object}  ports.SweetView
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Router       /inventory [post]
func (h *SweetHandler) Create(c echo.Context) error {
	input, err := parseCreateForm(c)
	if err != nil {
		return err
	}

	view, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.SweetsCreatedTotal.WithLabelValues(view.Category).Inc()
	return c.JSON(http.StatusCreated, view)
}

// Update handles PUT /inventory/:id (multipart form, admin only).
//
// @Summary      Update a sweet (partial)
// @Tags         inventory
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true   "Sweet ID"
// @Param        name      formData  string  false  "New name"
// @Param        category  formData  string  false  "New category"
// @Param        price     formData  number  false  "New price"
// @Param        quantity  formData  integer false  "New quantity"
// @Param        image     formData  file    false  "Replacement image"
// @Success      200       {object}  ports.SweetView
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Router       /inventory/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	input, err := parseUpdateForm(c)
	if err != nil {
		return err
	}

	view, err := h.service.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /inventory/:id (admin only).
//
// @Summary      Delete a sweet permanently
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  deleteResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /inventory/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{Message: "sweet deleted successfully"})
}

// Purchase handles POST /inventory/:id/purchase.
//
// @Summary      Purchase one unit of a sweet
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  ports.SweetView
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /inventory/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	view, err := h.service.Purchase(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrOutOfStock) {
			metrics.PurchasesTotal.WithLabelValues("out_of_stock").Inc()
		}
		return err
	}

	metrics.PurchasesTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, view)
}

// Restock handles POST /inventory/:id/restock (admin only).
//
// @Summary      Restock a sweet
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Sweet ID"
// @Param        body  body      restockRequest  true  "Restock amount"
// @Success      200   {object}  ports.SweetView
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /inventory/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Amount == nil {
		return domain.Invalid("amount is required")
	}

	view, err := h.service.Restock(c.Request().Context(), c.Param("id"), *req.Amount)
	if err != nil {
		return err
	}

	metrics.RestocksTotal.Inc()
	metrics.UnitsRestockedTotal.Add(float64(*req.Amount))
	return c.JSON(http.StatusOK, view)
}
