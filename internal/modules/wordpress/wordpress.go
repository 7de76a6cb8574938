package wordpress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seoforge/core/internal/middleware"
	"github.com/seoforge/core/internal/models"
	"github.com/seoforge/core/internal/pkg/response"
	"gorm.io/gorm"
)

const defaultFileName = "blog-image.jpg"

// Credentials identify a WordPress site and an application password.
type Credentials struct {
	WordpressURL string `json:"wordpressUrl" binding:"required"`
	Username     string `json:"username"     binding:"required"`
	AppPassword  string `json:"appPassword"  binding:"required"`
}

func (c Credentials) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.WordpressURL), "/")
}

// PublishResult is the outcome of pushing a post to WordPress.
type PublishResult struct {
	PostID  int64  `json:"postId"`
	PostURL string `json:"postUrl"`
}

// MediaResult is the outcome of a media library upload.
type MediaResult struct {
	MediaID  int64  `json:"mediaId"`
	MediaURL string `json:"mediaUrl"`
}

// Service pushes finished posts and images to WordPress sites over its REST API.
type Service struct {
	db         *gorm.DB
	httpClient *http.Client
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:         db,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Publish creates the post on the remote site as a WordPress draft and marks
// the local row published on success.
func (s *Service) Publish(userID, postID string, creds Credentials) (*PublishResult, error) {
	var post models.BlogPostModel
	err := s.db.First(&post, "id = ? AND user_id = ?", postID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	result, err := s.createRemotePost(creds, &post)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&post).Update("status", models.PostStatusPublished).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) createRemotePost(creds Credentials, post *models.BlogPostModel) (*PublishResult, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"title":   post.Title,
		"content": post.Content,
		"status":  "draft",
		"meta": map[string]string{
			"description": post.MetaDescription,
		},
		"slug": post.URLSlug,
	})

	req, err := http.NewRequest(http.MethodPost, creds.baseURL()+"/wp-json/wp/v2/posts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(creds.Username, creds.AppPassword)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("wordpress api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var data struct {
		ID   int64  `json:"id"`
		Link string `json:"link"`
	}
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("unexpected wordpress response: %w", err)
	}
	if data.ID == 0 {
		return nil, errors.New("wordpress response carried no post id")
	}
	return &PublishResult{PostID: data.ID, PostURL: data.Link}, nil
}

// UploadMedia downloads imageURL and re-uploads it to the site's media library.
func (s *Service) UploadMedia(creds Credentials, imageURL, fileName string) (*MediaResult, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, errors.New("imageUrl is required")
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = defaultFileName
	}

	imgResp, err := s.httpClient.Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer imgResp.Body.Close()
	if imgResp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("failed to download image: status %d", imgResp.StatusCode)
	}

	imgData, err := io.ReadAll(imgResp.Body)
	if err != nil {
		return nil, err
	}
	contentType := imgResp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(imgData)
	}

	req, err := http.NewRequest(http.MethodPost, creds.baseURL()+"/wp-json/wp/v2/media", bytes.NewReader(imgData))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(creds.Username, creds.AppPassword)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("wordpress media upload error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var data struct {
		ID        int64  `json:"id"`
		SourceURL string `json:"source_url"`
	}
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("unexpected wordpress response: %w", err)
	}
	return &MediaResult{MediaID: data.ID, MediaURL: data.SourceURL}, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/wordpress", authMW)
	g.POST("/publish", h.publish)
	g.POST("/media", h.uploadMedia)
}

type publishDTO struct {
	PostID string `json:"postId" binding:"required"`
	Credentials
}

// POST /wordpress/publish
func (h *Handler) publish(c *gin.Context) {
	var dto publishDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Publish(middleware.CurrentUserID(c), dto.PostID, dto.Credentials)
	if err != nil {
		response.BadGateway(c, err.Error())
		return
	}
	if result == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, result)
}

type mediaDTO struct {
	Credentials
	ImageURL string `json:"imageUrl" binding:"required"`
	FileName string `json:"fileName"`
}

// POST /wordpress/media
func (h *Handler) uploadMedia(c *gin.Context) {
	var dto mediaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.UploadMedia(dto.Credentials, dto.ImageURL, dto.FileName)
	if err != nil {
		response.BadGateway(c, err.Error())
		return
	}
	response.OK(c, result)
}
