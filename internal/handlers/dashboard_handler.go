package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/Pakhtun2017/compliance-checker/internal/models"
	"github.com/Pakhtun2017/compliance-checker/internal/services"
	"github.com/Pakhtun2017/compliance-checker/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/minio/minio-go/v7"
)

type DashboardHandler struct {
	service  *services.DashboardService
	sessions session.Store
}

func NewDashboardHandler(service *services.DashboardService, sessions session.Store) *DashboardHandler {
	return &DashboardHandler{service: service, sessions: sessions}
}

// Index renders the bucket listing together with any queued notifications
func (h *DashboardHandler) Index(c echo.Context) error {
	sess, err := GetSessionOrRedirect(c)
	if err != nil || sess == nil {
		return err
	}

	objects, failure := h.service.ListObjects(c.Request().Context())

	notifications := sess.PopFlashes()
	if len(notifications) > 0 {
		if err := h.sessions.Save(c, sess); err != nil {
			return err
		}
	}
	if failure != nil {
		notifications = append(notifications, *failure)
	}

	return c.Render(http.StatusOK, "dashboard", map[string]interface{}{
		"Title":         "Dashboard",
		"Bucket":        h.service.Bucket(),
		"Objects":       objects,
		"Notifications": notifications,
		"CSRF":          CSRFToken(c),
	})
}

// Upload stores the submitted file. A request without a file is a no-op.
func (h *DashboardHandler) Upload(c echo.Context) error {
	sess, err := GetSessionOrRedirect(c)
	if err != nil || sess == nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return Redirect(c, "/")
		}
		return h.flashAndRedirect(c, sess, models.Error(fmt.Sprintf("Upload failed: %v", err)))
	}

	src, err := file.Open()
	if err != nil {
		return h.flashAndRedirect(c, sess, models.Error(fmt.Sprintf("Upload of %s failed: %v", file.Filename, err)))
	}
	defer func() { _ = src.Close() }()

	n := h.service.UploadObject(c.Request().Context(), file.Filename, src, file.Size, file.Header.Get(echo.HeaderContentType))
	return h.flashAndRedirect(c, sess, n)
}

// Delete removes the object named by the "key" form field
func (h *DashboardHandler) Delete(c echo.Context) error {
	sess, err := GetSessionOrRedirect(c)
	if err != nil || sess == nil {
		return err
	}

	n := h.service.DeleteObject(c.Request().Context(), c.FormValue("key"))
	return h.flashAndRedirect(c, sess, n)
}

// Download streams the object named by the "key" query parameter
func (h *DashboardHandler) Download(c echo.Context) error {
	key := strings.TrimSpace(c.QueryParam("key"))
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Object key is required")
	}

	reader, info, err := h.service.OpenObject(c.Request().Context(), key)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return echo.NewHTTPError(http.StatusNotFound, "Object not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to get object")
	}
	defer func() { _ = reader.Close() }()

	contentType := info.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}))
	header.Set(echo.HeaderContentLength, strconv.FormatInt(info.Size, 10))

	return c.Stream(http.StatusOK, contentType, reader)
}

func (h *DashboardHandler) flashAndRedirect(c echo.Context, sess *session.Session, n models.Notification) error {
	sess.AddFlash(n)
	if err := h.sessions.Save(c, sess); err != nil {
		return err
	}
	return Redirect(c, "/")
}
