package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/api/shared"
	"github.com/dayloop/dayloop-api/internal/platform/logger"
	"github.com/dayloop/dayloop-api/internal/service"
)

// maxPictureBytes caps profile picture uploads at 5 MiB.
const maxPictureBytes = 5 << 20

// pictureFormField is the multipart field carrying the uploaded image.
const pictureFormField = "profilePicture"

// allowedPictureExts lists the accepted image file extensions.
var allowedPictureExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UserHandler handles profile-related API requests.
type UserHandler struct {
	userService *service.UserService
	uploadDir   string
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler. uploadDir is where profile
// pictures are written; it is created on demand.
func NewUserHandler(userService *service.UserService, uploadDir string, logger *slog.Logger) *UserHandler {
	if userService == nil {
		panic("userService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserHandler{
		userService: userService,
		uploadDir:   uploadDir,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// Me handles GET /users/me, returning the authenticated user's profile
// with a fresh tasks count.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user), "")
}

// UpdateProfile handles PUT /users/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, service.ProfileInput{
		Fullname: req.Fullname,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user), "Profile updated successfully")
}

// ChangePassword handles PUT /users/profile/change-password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}

	// Existing sessions still carry the old credential; tell the client
	// to log in again.
	shared.RespondWithJSON(w, r, http.StatusOK,
		ChangePasswordResponse{RequireReLogin: true}, "Password changed successfully")
}

// UploadPicture handles POST /users/profile/picture. The image arrives as
// the profilePicture multipart field and is stored under the upload
// directory with a random name; the stored URL is served from /uploads/.
func (h *UserHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPictureBytes)
	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid or oversized upload")
		return
	}

	file, header, err := r.FormFile(pictureFormField)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing profilePicture file")
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedPictureExts[ext] {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Unsupported image format")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		log.Error("failed to create upload directory", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to store image")
		return
	}

	filename := uuid.New().String() + ext
	dstPath := filepath.Join(h.uploadDir, filename)
	dst, err := os.Create(dstPath)
	if err != nil {
		log.Error("failed to create upload file", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to store image")
		return
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		log.Error("failed to write upload file", slog.String("error", err.Error()))
		_ = os.Remove(dstPath)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to store image")
		return
	}

	pictureURL := fmt.Sprintf("/uploads/%s", filename)
	user, err := h.userService.SetProfilePicture(r.Context(), userID, pictureURL)
	if err != nil {
		_ = os.Remove(dstPath)
		HandleAPIError(w, r, err, "Failed to update profile picture")
		return
	}

	log.Info("profile picture updated",
		slog.String("user_id", userID.String()),
		slog.String("url", pictureURL))
	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user), "Profile picture updated successfully")
}
