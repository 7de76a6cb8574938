package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"

	"github.com/seoforge/core/internal/middleware"
	"github.com/seoforge/core/internal/models"
	"github.com/seoforge/core/internal/modules/configs"
	"github.com/seoforge/core/internal/pkg/response"
	"github.com/seoforge/core/internal/pkg/s3"
)

// Export formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatDocx     = "docx"
)

var errUnknownFormat = errors.New("unknown export format")

// Artifact is a rendered export ready for download or upload.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithXHTML(),
		htmlrenderer.WithUnsafe(),
	),
)

type Service struct {
	db       *gorm.DB
	cfgSvc   *configs.Service
	localDir string
}

func NewService(db *gorm.DB, cfgSvc *configs.Service, localDir string) *Service {
	return &Service{db: db, cfgSvc: cfgSvc, localDir: localDir}
}

// Export renders the user's post in the requested format.
func (s *Service) Export(userID, postID, format string) (*Artifact, error) {
	var post models.BlogPostModel
	err := s.db.First(&post, "id = ? AND user_id = ?", postID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	base := strings.TrimSpace(post.URLSlug)
	if base == "" {
		base = "blog-post"
	}

	switch format {
	case FormatMarkdown, "":
		return &Artifact{
			FileName:    base + ".md",
			ContentType: "text/markdown; charset=utf-8",
			Data:        []byte(renderMarkdown(&post)),
		}, nil
	case FormatHTML:
		html, err := renderHTMLDocument(&post)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			FileName:    base + ".html",
			ContentType: "text/html; charset=utf-8",
			Data:        []byte(html),
		}, nil
	case FormatDocx:
		data, err := renderDocx(&post)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			FileName:    base + ".docx",
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Data:        data,
		}, nil
	default:
		return nil, errUnknownFormat
	}
}

// Store uploads the artifact to the configured S3 bucket and returns its URL.
func (s *Service) Store(c *gin.Context, userID string, artifact *Artifact) (string, error) {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return "", err
	}
	client, err := s3.NewClient(c.Request.Context(), cfg.S3Options)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("exports/%s/%s", userID, artifact.FileName)
	return client.Upload(c.Request.Context(), key, artifact.Data, artifact.ContentType)
}

// StoreLocal writes the artifact under the configured export directory and
// returns the written path.
func (s *Service) StoreLocal(userID string, artifact *Artifact) (string, error) {
	dir := filepath.Join(s.localDir, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, artifact.FileName)
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func exportTitle(post *models.BlogPostModel) string {
	if t := strings.TrimSpace(post.MetaTitle); t != "" {
		return t
	}
	return post.Title
}

func renderMarkdown(post *models.BlogPostModel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", exportTitle(post))
	fmt.Fprintf(&b, "**Meta Description:** %s\n\n", post.MetaDescription)
	fmt.Fprintf(&b, "**URL Slug:** %s\n\n", post.URLSlug)
	b.WriteString("## Short Intro\n\n")
	b.WriteString(post.ShortIntro)
	b.WriteString("\n\n## Full Content\n\n")
	b.WriteString(post.Content)

	if len(post.FaqContent) > 0 {
		b.WriteString("\n\n## Frequently Asked Questions\n\n")
		parts := make([]string, 0, len(post.FaqContent))
		for i, faq := range post.FaqContent {
			parts = append(parts, fmt.Sprintf("### %d. %s\n\n%s", i+1, faq.Question, faq.Answer))
		}
		b.WriteString(strings.Join(parts, "\n\n"))
	}
	return b.String()
}

func renderHTMLDocument(post *models.BlogPostModel) (string, error) {
	var body bytes.Buffer
	if err := markdownEngine.Convert([]byte(renderMarkdown(post)), &body); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(body.Len() + 512)
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n")
	b.WriteString("  <head>\n")
	b.WriteString("    <meta charset=\"UTF-8\" />\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\" />\n")
	if desc := strings.TrimSpace(post.MetaDescription); desc != "" {
		fmt.Fprintf(&b, "    <meta name=\"description\" content=%q />\n", desc)
	}
	fmt.Fprintf(&b, "    <title>%s</title>\n", htmlEscape(exportTitle(post)))
	b.WriteString("  </head>\n")
	b.WriteString("  <body>\n    <article>\n")
	b.WriteString(body.String())
	b.WriteString("    </article>\n  </body>\n</html>")
	return b.String(), nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/posts", authMW)
	g.GET("/:id/export", h.export)
}

// GET /posts/:id/export?format=markdown|html|docx&store=s3|local
func (h *Handler) export(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))

	artifact, err := h.svc.Export(userID, c.Param("id"), format)
	if err != nil {
		if errors.Is(err, errUnknownFormat) {
			response.BadRequest(c, "format must be markdown, html or docx")
			return
		}
		response.InternalError(c, err)
		return
	}
	if artifact == nil {
		response.NotFound(c)
		return
	}

	if c.Query("store") == "local" {
		path, err := h.svc.StoreLocal(userID, artifact)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{"path": path, "fileName": artifact.FileName})
		return
	}

	if c.Query("store") == "s3" {
		url, err := h.svc.Store(c, userID, artifact)
		if err != nil {
			if errors.Is(err, s3.ErrNotConfigured) {
				response.BadRequest(c, err.Error())
				return
			}
			response.BadGateway(c, err.Error())
			return
		}
		response.OK(c, gin.H{"url": url, "fileName": artifact.FileName})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	c.Data(200, artifact.ContentType, artifact.Data)
}
