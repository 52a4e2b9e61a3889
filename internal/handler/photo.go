package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nutritrack/nutritrack-server/internal/model"
	"github.com/nutritrack/nutritrack-server/internal/queue"
	"github.com/nutritrack/nutritrack-server/internal/repository"
	queue_publisher "github.com/nutritrack/nutritrack-server/internal/service"
	"github.com/nutritrack/nutritrack-server/internal/storage"
)

// PhotoHandler bundles dependencies for the photo endpoints: the metadata
// repository and the on-disk store for the actual bytes.
type PhotoHandler struct {
	Photos *repository.PhotoRepo
	Store  *storage.LocalStore
	Events bool
}

func NewPhotoHandler(photos *repository.PhotoRepo, store *storage.LocalStore, events bool) *PhotoHandler {
	if photos == nil || store == nil {
		panic("nil dependency passed to NewPhotoHandler")
	}
	return &PhotoHandler{Photos: photos, Store: store, Events: events}
}

// Upload handles POST /api/photos (multipart, file field "photo", optional
// "calories" form field). The bytes are written to disk first under a
// generated name; if the metadata insert then fails the file is removed
// again so no orphan remains.
func (h *PhotoHandler) Upload(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no file uploaded"})
	}

	var calories *int
	if raw := strings.TrimSpace(c.FormValue("calories")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "calories must be a positive integer"})
		}
		calories = &n
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read upload"})
	}
	defer src.Close()

	stored, err := h.Store.Save(src, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidType):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "only image files are allowed"})
		case errors.Is(err, storage.ErrTooLarge):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file too large"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store file"})
		}
	}

	photo := &model.Photo{
		UserID:       uid,
		Filename:     stored,
		OriginalName: fh.Filename,
		Date:         today(),
		Calories:     calories,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Photos.Create(ctx, photo); err != nil {
		if rmErr := h.Store.Remove(stored); rmErr != nil {
			log.Printf("photo upload: orphan cleanup failed for %s: %v", stored, rmErr)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save photo"})
	}

	if h.Events {
		evt := queue.PhotoUploadedEvent{
			PhotoID:      photo.ID,
			UserID:       photo.UserID,
			Filename:     photo.Filename,
			OriginalName: photo.OriginalName,
			Date:         photo.Date,
			Calories:     photo.Calories,
			UploadedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = queue_publisher.PublishPhotoUploaded(context.Background(), evt) }()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "photo uploaded successfully",
		"photo":   photo,
	})
}

// List handles GET /api/photos and returns the caller's photos newest
// first.
func (h *PhotoHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	photos, err := h.Photos.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, photos)
}

// Delete handles DELETE /api/photos/:id. The backing file is removed
// best-effort before the metadata row: a file that cannot be deleted is
// logged and the row is deleted anyway, so the photo disappears from the
// user's listing either way.
func (h *PhotoHandler) Delete(c echo.Context) error {
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

	photo, err := h.Photos.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Store.Remove(photo.Filename); err != nil {
		log.Printf("photo delete: file removal failed for %s: %v", photo.Filename, err)
	}

	if err := h.Photos.DeleteByIDAndUser(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "photo deleted successfully"})
}

// Serve handles GET /api/photos/:filename and streams the stored bytes.
// The route accepts the token as a header or ?token= query parameter (see
// JWTAuthWithQuery); ownership is enforced by looking the filename up
// scoped to the caller, so guessing another user's filename yields 404.
func (h *PhotoHandler) Serve(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	filename := c.Param("filename")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	photo, err := h.Photos.GetByFilenameAndUser(ctx, filename, uid)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	path, err := h.Store.Path(photo.Filename)
	if err != nil || !h.Store.Exists(photo.Filename) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found"})
	}
	return c.File(path)
}
