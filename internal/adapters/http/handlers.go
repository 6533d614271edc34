package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shoplist/core/internal/domain/entities"
	"github.com/shoplist/core/internal/infrastructure/logger"
	"github.com/shoplist/core/internal/ports"
)

// Client-facing messages
const (
	MsgInvalidRequest = "잘못된 요청 형식입니다."
	MsgNameRequired   = "이름은 필수 항목입니다."
	MsgItemNotFound   = "아이템을 찾을 수 없습니다."
	MsgItemDeleted    = "아이템이 삭제되었습니다."
	MsgListFailed     = "데이터를 불러오는 중 오류가 발생했습니다."
	MsgCreateFailed   = "아이템을 추가하는 중 오류가 발생했습니다."
	MsgUpdateFailed   = "아이템을 업데이트하는 중 오류가 발생했습니다."
	MsgDeleteFailed   = "아이템을 삭제하는 중 오류가 발생했습니다."
)

// ItemHandler handles shopping item requests
type ItemHandler struct {
	itemService ports.ItemService
	logger      *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService ports.ItemService, logger *logger.Logger) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// ListItems godoc
// @Summary List shopping items
// @Description Get every item in insertion order
// @Tags items
// @Produce json
// @Success 200 {array} entities.Item
// @Failure 500 {object} ErrorResponse
// @Router /items [get]
func (h *ItemHandler) ListItems(c echo.Context) error {
	items, err := h.itemService.ListItems(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List items failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, MsgListFailed).SetInternal(err)
	}

	return c.JSON(http.StatusOK, items)
}

// CreateItem godoc
// @Summary Create a shopping item
// @Description Create an item; quantity defaults to 1 and category to 기타
// @Tags items
// @Accept json
// @Produce json
// @Param request body ports.CreateItemRequest true "Item data"
// @Success 201 {object} entities.Item
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /items [post]
func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req ports.CreateItemRequest
	if err := bindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidRequest)
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgNameRequired)
	}

	item, err := h.itemService.CreateItem(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrNameRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, MsgNameRequired)
		}
		h.logger.Errorw("Create item failed", "error", err, "name", req.Name)
		return echo.NewHTTPError(http.StatusInternalServerError, MsgCreateFailed).SetInternal(err)
	}

	return c.JSON(http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary Update a shopping item
// @Description Merge the supplied fields over the stored item; the id cannot change
// @Tags items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body entities.ItemPatch true "Fields to change"
// @Success 200 {object} entities.Item
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /items/{id} [put]
func (h *ItemHandler) UpdateItem(c echo.Context) error {
	id := c.Param("id")

	var patch entities.ItemPatch
	if err := bindBody(c, &patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidRequest)
	}

	item, err := h.itemService.UpdateItem(c.Request().Context(), id, patch)
	if err != nil {
		if errors.Is(err, entities.ErrItemNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, MsgItemNotFound)
		}
		h.logger.Errorw("Update item failed", "error", err, "item_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, MsgUpdateFailed).SetInternal(err)
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete a shopping item
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /items/{id} [delete]
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	id := c.Param("id")

	if err := h.itemService.DeleteItem(c.Request().Context(), id); err != nil {
		if errors.Is(err, entities.ErrItemNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, MsgItemNotFound)
		}
		h.logger.Errorw("Delete item failed", "error", err, "item_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, MsgDeleteFailed).SetInternal(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: MsgItemDeleted})
}

// bindBody binds a JSON body. A body sent without a content type is
// ignored, leaving i empty.
func bindBody(c echo.Context, i interface{}) error {
	if err := c.Bind(i); err != nil && !errors.Is(err, echo.ErrUnsupportedMediaType) {
		return err
	}
	return nil
}

// Request/Response types

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
