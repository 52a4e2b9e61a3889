package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nutritrack/nutritrack-server/internal/model"
	"github.com/nutritrack/nutritrack-server/internal/queue"
	"github.com/nutritrack/nutritrack-server/internal/repository"
	queue_publisher "github.com/nutritrack/nutritrack-server/internal/service"
)

// FoodHandler bundles dependencies for the food-item endpoints. Events is
// optional; when false no broker publishes are attempted.
type FoodHandler struct {
	Items  *repository.FoodItemRepo
	Events bool
}

func NewFoodHandler(items *repository.FoodItemRepo, events bool) *FoodHandler {
	if items == nil {
		panic("nil repository passed to NewFoodHandler")
	}
	return &FoodHandler{Items: items, Events: events}
}

type addFoodReq struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	MealType string `json:"mealType"`
}

// Add handles POST /api/food-items. Calories arrive as a JSON number and
// are validated as a positive integer; a string value fails the bind rather
// than being coerced. The entry's date defaults to today (UTC).
func (h *FoodHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addFoodReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.MealType = strings.ToLower(strings.TrimSpace(req.MealType))
	if req.Name == "" || req.Calories == 0 || req.MealType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all fields are required"})
	}
	if req.Calories < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "calories must be a positive integer"})
	}
	if !model.ValidMealType(req.MealType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "mealType must be one of breakfast, lunch, dinner, snack"})
	}

	item := &model.FoodItem{
		UserID:   uid,
		Name:     req.Name,
		Calories: req.Calories,
		MealType: req.MealType,
		Date:     today(),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Create(ctx, item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save food item"})
	}

	if h.Events {
		evt := queue.MealLoggedEvent{
			FoodItemID: item.ID,
			UserID:     item.UserID,
			Name:       item.Name,
			Calories:   item.Calories,
			MealType:   item.MealType,
			Date:       item.Date,
			LoggedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		// Fire and forget: a broker outage must never fail the request.
		go func() { _ = queue_publisher.PublishMealLogged(context.Background(), evt) }()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "food item added successfully",
		"foodItem": item,
	})
}

// List handles GET /api/food-items. The optional ?date= parameter filters
// to entries logged on that exact calendar day.
func (h *FoodHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.ListByUser(ctx, uid, strings.TrimSpace(c.QueryParam("date")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// Delete handles DELETE /api/food-items/:id. The row must be owned by the
// caller; a miss is always 404, never a hint that the id belongs to
// somebody else.
func (h *FoodHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.DeleteByIDAndUser(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrFoodItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "food item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "food item deleted successfully"})
}
