package profile

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seoforge/core/internal/middleware"
	"github.com/seoforge/core/internal/models"
	"github.com/seoforge/core/internal/pkg/jwt"
	"github.com/seoforge/core/internal/pkg/response"
	"gorm.io/gorm"
)

var errEmailTaken = errors.New("email already registered")

// Service manages user profiles and their API credentials.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// newAPIKey mints a credential the auth middleware recognizes by prefix.
func newAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return middleware.APIKeyPrefix + hex.EncodeToString(buf), nil
}

// Create registers a profile and issues its API key.
func (s *Service) Create(email, fullName, webhookURL string) (*models.ProfileModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	var count int64
	if err := s.db.Model(&models.ProfileModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errEmailTaken
	}

	apiKey, err := newAPIKey()
	if err != nil {
		return nil, err
	}

	profile := models.ProfileModel{
		Email:           email,
		FullName:        strings.TrimSpace(fullName),
		APIKey:          apiKey,
		WebhookURL:      strings.TrimSpace(webhookURL),
		AutoSaveEnabled: true,
	}
	if err := s.db.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Get returns the profile by id.
func (s *Service) Get(userID string) (*models.ProfileModel, error) {
	var profile models.ProfileModel
	if err := s.db.First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateRequest is a partial profile update. Nil fields are left untouched.
type UpdateRequest struct {
	Email           *string `json:"email"`
	FullName        *string `json:"fullName"`
	WebhookURL      *string `json:"webhookUrl"`
	AutoSaveEnabled *bool   `json:"autoSaveEnabled"`
	RegenerateKey   bool    `json:"regenerateApiKey"`
}

// Update applies the partial update and returns the fresh profile.
func (s *Service) Update(userID string, req UpdateRequest) (*models.ProfileModel, error) {
	profile, err := s.Get(userID)
	if err != nil || profile == nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, errors.New("email cannot be empty")
		}
		if email != profile.Email {
			var count int64
			if err := s.db.Model(&models.ProfileModel{}).Where("email = ? AND id <> ?", email, userID).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, errEmailTaken
			}
			updates["email"] = email
		}
	}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.WebhookURL != nil {
		updates["webhook_url"] = strings.TrimSpace(*req.WebhookURL)
	}
	if req.AutoSaveEnabled != nil {
		updates["auto_save_enabled"] = *req.AutoSaveEnabled
	}
	if req.RegenerateKey {
		apiKey, err := newAPIKey()
		if err != nil {
			return nil, err
		}
		updates["api_key"] = apiKey
	}

	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(userID)
}

// AutosaveEnabled reports whether the user opted in to autosave. Missing
// profiles default to enabled so a session can still be created.
func (s *Service) AutosaveEnabled(userID string) bool {
	profile, err := s.Get(userID)
	if err != nil || profile == nil {
		return true
	}
	return profile.AutoSaveEnabled
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/profiles", h.create)

	g := rg.Group("/profile", authMW)
	g.GET("", h.get)
	g.PATCH("", h.update)
}

type createDTO struct {
	Email      string `json:"email"      binding:"required,email"`
	FullName   string `json:"fullName"`
	WebhookURL string `json:"webhookUrl"`
}

// POST /profiles
func (h *Handler) create(c *gin.Context) {
	var dto createDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.svc.Create(dto.Email, dto.FullName, dto.WebhookURL)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}

	token, err := jwt.Sign(profile.ID, 30*24*time.Hour)
	if err != nil {
		response.InternalError(c, fmt.Errorf("profile created but token signing failed: %w", err))
		return
	}
	response.Created(c, gin.H{
		"profile": profile,
		"apiKey":  profile.APIKey,
		"token":   token,
	})
}

// GET /profile
func (h *Handler) get(c *gin.Context) {
	profile, err := h.svc.Get(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if profile == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, profile)
}

// PATCH /profile
func (h *Handler) update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.svc.Update(middleware.CurrentUserID(c), req)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if profile == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, profile)
}
