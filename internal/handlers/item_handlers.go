package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"zaikan/internal/common"
	"zaikan/internal/models"
	"zaikan/internal/services"

	"github.com/labstack/echo/v4"
)

// presignedURLExpiry bounds how long a presigned image link stays valid.
// Links are minted at read time; only the object name is persisted.
const presignedURLExpiry = 7 * 24 * time.Hour

// isStoredObject reports whether an image reference is an object name in our
// bucket rather than an absolute external URL (demo data links external
// images directly).
func isStoredObject(imageURL *string) bool {
	return imageURL != nil && !strings.HasPrefix(*imageURL, "http")
}

// resolveImageURL swaps a stored object name for a fresh presigned link on
// the way out. Absolute URLs pass through untouched; a presign failure keeps
// the stored reference rather than failing the read.
func resolveImageURL(c echo.Context, images services.ImageService, item *models.Item) *models.Item {
	if !isStoredObject(item.ImageURL) {
		return item
	}
	url, err := images.PresignedURL(*item.ImageURL, presignedURLExpiry)
	if err != nil {
		c.Logger().Errorf("presign failed for item %s: %v", item.ID, err)
		return item
	}
	item.ImageURL = &url
	return item
}

// ItemHandlers handles HTTP requests for inventory items
type ItemHandlers struct {
	ledgerService services.LedgerService
	imageService  services.ImageService
}

// NewItemHandlers creates a new item handlers instance
func NewItemHandlers(ledgerService services.LedgerService, imageService services.ImageService) *ItemHandlers {
	return &ItemHandlers{
		ledgerService: ledgerService,
		imageService:  imageService,
	}
}

// ListItems handles GET /items
func (h *ItemHandlers) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var filter models.ItemSearchFilter
	if err := c.Bind(&filter); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	items, err := h.ledgerService.ListItems(ctx, userID, &filter)
	if err != nil {
		return h.mapLedgerError(c, err)
	}
	for _, item := range items {
		resolveImageURL(c, h.imageService, item)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// CreateItem handles POST /items
func (h *ItemHandlers) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Name     string  `json:"name"`
		Code     string  `json:"code"`
		Quantity int     `json:"quantity"`
		Location string  `json:"location"`
		ImageURL *string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item := &models.Item{
		Name:     req.Name,
		Code:     req.Code,
		Quantity: req.Quantity,
		Location: req.Location,
		ImageURL: req.ImageURL,
	}
	if err := h.ledgerService.CreateItem(ctx, userID, item); err != nil {
		return h.mapLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, resolveImageURL(c, h.imageService, item))
}

// GetItem handles GET /items/:id
func (h *ItemHandlers) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	item, err := h.ledgerService.GetItem(ctx, userID, itemID)
	if err != nil {
		return h.mapLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, resolveImageURL(c, h.imageService, item))
}

// UpdateItem handles PUT /items/:id. The product code cannot be changed
// after creation and is rejected if present in the payload.
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		models.ItemUpdate
		Code *string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Code != nil {
		return common.SendValidationError(c, "code", "Product code cannot be changed after creation")
	}

	item, err := h.ledgerService.EditItem(ctx, userID, itemID, &req.ItemUpdate)
	if err != nil {
		return h.mapLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, resolveImageURL(c, h.imageService, item))
}

// DeleteItem handles DELETE /items/:id. Movement logs referencing the item
// are kept; log listings flag them as orphaned. The stored image object, if
// any, is removed from the bucket best-effort.
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	// Read first: after the ledger delete the image reference is gone.
	item, err := h.ledgerService.GetItem(ctx, userID, itemID)
	if err != nil {
		return h.mapLedgerError(c, err)
	}

	if err := h.ledgerService.DeleteItem(ctx, userID, itemID); err != nil {
		return h.mapLedgerError(c, err)
	}

	if isStoredObject(item.ImageURL) {
		if err := h.imageService.DeleteItemImage(ctx, *item.ImageURL); err != nil {
			c.Logger().Warnf("failed to remove image object for deleted item %s: %v", itemID, err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadItemImage handles POST /items/:id/image (multipart form, field "image")
func (h *ItemHandlers) UploadItemImage(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	// Confirm ownership before touching object storage.
	if _, err := h.ledgerService.GetItem(ctx, userID, itemID); err != nil {
		return h.mapLedgerError(c, err)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "Image file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	objectName, err := h.imageService.UploadItemImage(ctx, userID, itemID, file, fileHeader.Size, contentType)
	if err != nil {
		c.Logger().Errorf("image upload failed: %v", err)
		return common.SendServerError(c, "Failed to store image")
	}

	// Persist the object name, not a presigned link: links expire, the
	// object name does not. Reads mint a fresh link on the way out.
	item, err := h.ledgerService.EditItem(ctx, userID, itemID, &models.ItemUpdate{ImageURL: &objectName})
	if err != nil {
		return h.mapLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, resolveImageURL(c, h.imageService, item))
}

// mapLedgerError translates domain errors into HTTP responses
func (h *ItemHandlers) mapLedgerError(c echo.Context, err error) error {
	if ve, ok := models.AsValidationError(err); ok {
		return common.SendValidationError(c, ve.Field, ve.Message)
	}
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		return common.SendNotFoundError(c, "Item")
	case errors.Is(err, models.ErrDuplicateCode):
		return common.SendConflictError(c, "DUPLICATE_CODE", "Product code already registered")
	case errors.Is(err, models.ErrInsufficientStock):
		return common.SendConflictError(c, "INSUFFICIENT_STOCK", err.Error())
	default:
		c.Logger().Errorf("ledger operation failed: %v", err)
		return common.SendServerError(c, "Internal server error")
	}
}
