package ai

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	appcfg "github.com/seoforge/core/internal/config"
	"github.com/seoforge/core/internal/middleware"
	"github.com/seoforge/core/internal/models"
	"github.com/seoforge/core/internal/modules/configs"
	"github.com/seoforge/core/internal/pkg/response"
	"github.com/seoforge/core/internal/pkg/taskqueue"
)

const (
	TaskTypeContent = "ai:content"

	maxTokensKeywords = 1024
	maxTokensMeta     = 512
	maxTokensHeadings = 2048
	maxTokensIntro    = 1024
	maxTokensContent  = 8192
	maxTokensFaq      = 8192
	maxTokensLinks    = 2048
	maxTokensQuality  = 2048
	maxTokensHumanize = 8192
)

// ContentRequest carries everything the content stage needs. It doubles as
// the queued task payload for async generation.
type ContentRequest struct {
	Keywords        models.KeywordSet  `json:"keywords"`
	MetaTags        models.MetaTags    `json:"metaTags"`
	Headings        models.HeadingTree `json:"headings"`
	ShortIntro      string             `json:"shortIntro"`
	FaqContent      []models.FaqItem   `json:"faqContent"`
	Framework       string             `json:"framework"`
	Location        string             `json:"location"`
	BrandName       string             `json:"brandName"`
	TargetWordCount int                `json:"targetWordCount"`
	KeywordDensity  float64            `json:"keywordDensity"`
	CtaTypes        []string           `json:"ctaTypes"`
}

// FaqRequest carries the FAQ stage inputs.
type FaqRequest struct {
	Keywords          models.KeywordSet `json:"keywords"`
	MetaTags          models.MetaTags   `json:"metaTags"`
	Framework         string            `json:"framework"`
	Location          string            `json:"location"`
	BrandName         string            `json:"brandName"`
	FaqCount          int               `json:"faqCount"`
	MinWordsPerAnswer int               `json:"minWordsPerAnswer"`
	KeywordDensity    float64           `json:"keywordDensity"`
}

// LinkSuggestion is one suggested internal or external link.
type LinkSuggestion struct {
	Anchor string `json:"anchor"`
	URL    string `json:"url"`
	Type   string `json:"type"` // internal | external
}

// QualityReport is the structured result of the content quality analysis.
type QualityReport struct {
	GrammarScore            float64  `json:"grammarScore"`
	SpellingIssues          []string `json:"spellingIssues"`
	AIDetectionScore        float64  `json:"aiDetectionScore"`
	HumanizationSuggestions []string `json:"humanizationSuggestions"`
	OverallQuality          float64  `json:"overallQuality"`
}

// Service runs the generation stages against the configured AI providers.
type Service struct {
	cfgSvc  *configs.Service
	taskSvc *taskqueue.Service
}

func NewService(cfgSvc *configs.Service, taskSvc *taskqueue.Service) *Service {
	return &Service{cfgSvc: cfgSvc, taskSvc: taskSvc}
}

func (s *Service) generationProvider() (*appcfg.AIProvider, *appcfg.FullConfig, error) {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, nil, err
	}
	provider := selectAIProvider(cfg.AI, cfg.AI.GenerationModel)
	if provider == nil {
		return nil, nil, errNoProvider
	}
	return provider, cfg, nil
}

func (s *Service) qualityProvider() (*appcfg.AIProvider, error) {
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, err
	}
	assignment := cfg.AI.QualityModel
	if assignment == nil {
		assignment = cfg.AI.GenerationModel
	}
	provider := selectAIProvider(cfg.AI, assignment)
	if provider == nil {
		return nil, errNoProvider
	}
	return provider, nil
}

// GenerateKeywords expands primary keywords into one of the derived lists.
func (s *Service) GenerateKeywords(keywordType string, primary []string) ([]string, error) {
	provider, cfg, err := s.generationProvider()
	if err != nil {
		return nil, err
	}

	count := cfg.Generation.KeywordsPerType
	if count <= 0 {
		count = 8
	}

	systemPrompt, prompt := buildKeywordsPrompt(keywordType, primary, count)
	raw, err := callAIWithSystemPrompt(provider, systemPrompt, prompt, maxTokensKeywords)
	if err != nil {
		return nil, err
	}

	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := unmarshalAIJSON(raw, &out); err != nil {
		// Bare array answers are common for this prompt shape.
		var list []string
		if err2 := unmarshalAIJSON(raw, &list); err2 != nil {
			return nil, err
		}
		out.Keywords = list
	}
	if len(out.Keywords) == 0 {
		return nil, errors.New("AI returned no keywords")
	}
	return out.Keywords, nil
}

// GenerateMeta produces the title, description, and slug for the keyword set.
func (s *Service) GenerateMeta(keywords models.KeywordSet) (*models.MetaTags, error) {
	provider, _, err := s.generationProvider()
	if err != nil {
		return nil, err
	}

	systemPrompt, prompt := buildMetaPrompt(keywords)
	raw, err := callAIWithSystemPrompt(provider, systemPrompt, prompt, maxTokensMeta)
	if err != nil {
		return nil, err
	}

	var meta models.MetaTags
	if err := unmarshalAIJSON(raw, &meta); err != nil {
		return nil, err
	}
	if strings.TrimSpace(meta.Title) == "" {
		return nil, errors.New("meta title is empty in AI response")
	}
	return &meta, nil
}

// GenerateHeadings produces the H1/H2/H3 outline for the keyword set.
func (s *Service) GenerateHeadings(keywords models.KeywordSet) (*models.HeadingTree, error) {
	provider, _, err := s.generationProvider()
	if err != nil {
		return nil, err
	}

	systemPrompt, prompt := buildHeadingsPrompt(keywords)
	raw, err := callAIWithSystemPrompt(provider, systemPrompt, prompt, maxTokensHeadings)
	if err != nil {
		return nil, err
	}

	var headings models.HeadingTree
	if err := unmarshalAIJSON(raw, &headings); err != nil {
		return nil, err
	}
	if strings.TrimSpace(headings.H1) == "" || len(headings.H2s) == 0 {
		return nil, errors.New("heading structure is incomplete in AI response")
	}
	return &headings, nil
}

// GenerateIntro writes the short HTML introduction for the post.
func (s *Service) GenerateIntro(keywords models.KeywordSet, metaTags models.MetaTags) (string, error) {
	provider, _, err := s.generationProvider()
	if err != nil {
		return "", err
	}

	systemPrompt, prompt := buildIntroPrompt(keywords, metaTags)
	intro, err := callAIWithSystemPrompt(provider, systemPrompt, prompt, maxTokensIntro)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(intro) == "" {
		return "", errors.New("empty response from AI")
	}
	return intro, nil
}

// GenerateContent writes the full post body and scores it.
func (s *Service) GenerateContent(req ContentRequest) (content string, seoScore int, err error) {
	provider, cfg, err := s.generationProvider()
	if err != nil {
		return "", 0, err
	}
	s.applyContentDefaults(&req, cfg)

	systemPrompt, prompt := buildContentPrompt(req)
	content, err = callAIWithSystemPrompt(provider, systemPrompt, prompt, maxTokensContent)
	if err != nil {
		return "", 0, err
	}
	if strings.TrimSpace(content) == "" {
		return "", 0, errors.New("empty response from AI")
	}

	seoScore = ScoreContent(content, req.Keywords, req.MetaTags, req.Headings, req.TargetWordCount)
	return content, seoScore, nil
}

func (s *Service) applyContentDefaults(req *ContentRequest, cfg *appcfg.FullConfig) {
	if req.Framework == "" {
		req.Framework = cfg.Generation.ContentFramework
	}
	if req.TargetWordCount <= 0 {
		req.TargetWordCount = cfg.Generation.TargetWordCount
	}
	if req.KeywordDensity <= 0 {
		req.KeywordDensity = cfg.Generation.KeywordDensity
	}
}

// EnqueueContent queues content generation as a background task. A repeated
// request with the same payload dedups onto the existing task.
func (s *Service) EnqueueContent(ctx context.Context, userID string, req ContentRequest) (*taskqueue.Task, error) {
	payloadJSON, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(payloadJSON)
	dedupKey := fmt.Sprintf("%s:%x", userID, h[:8])

	task, err := s.taskSvc.Enqueue(ctx, TaskTypeContent, req, dedupKey, userID)
	if err != nil {
		return nil, err
	}

	if task.Status == taskqueue.TaskPending {
		go s.executeContent(context.Background(), task.ID, req)
	}
	return task, nil
}

func (s *Service) executeContent(ctx context.Context, taskID string, req ContentRequest) {
	s.taskSvc.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")

	content, seoScore, err := s.GenerateContent(req)
	if err != nil {
		s.taskSvc.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}

	s.taskSvc.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, gin.H{
		"content":  content,
		"seoScore": seoScore,
	}, "")
}

// GenerateFaq produces the FAQ list through a forced tool call so the answer
// arrives as structured data rather than prose.
func (s *Service) GenerateFaq(req FaqRequest) ([]models.FaqItem, error) {
	provider, cfg, err := s.generationProvider()
	if err != nil {
		return nil, err
	}
	if req.Framework == "" {
		req.Framework = cfg.Generation.FaqFramework
	}
	if req.FaqCount <= 0 {
		req.FaqCount = cfg.Generation.FaqCount
	}
	if req.MinWordsPerAnswer <= 0 {
		req.MinWordsPerAnswer = cfg.Generation.MinWordsPerFaq
	}
	if req.KeywordDensity <= 0 {
		req.KeywordDensity = cfg.Generation.KeywordDensity
	}

	systemPrompt, prompt := buildFaqPrompt(req)
	parameters := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"faqs": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"question": map[string]interface{}{"type": "string"},
						"answer":   map[string]interface{}{"type": "string"},
					},
					"required": []string{"question", "answer"},
				},
			},
		},
		"required": []string{"faqs"},
	}

	args, err := callAIForcedTool(provider, systemPrompt, prompt, "generate_faqs", parameters, maxTokensFaq)
	if err != nil {
		return nil, err
	}

	var out struct {
		Faqs []models.FaqItem `json:"faqs"`
	}
	if err := json.Unmarshal(args, &out); err != nil {
		return nil, fmt.Errorf("invalid FAQ tool arguments: %w", err)
	}
	if len(out.Faqs) == 0 {
		return nil, errors.New("AI returned no FAQs")
	}
	return out.Faqs, nil
}

// GenerateLinks suggests internal and external links for the content.
func (s *Service) GenerateLinks(keywords models.KeywordSet, metaTags models.MetaTags, content string) ([]LinkSuggestion, error) {
	provider, _, err := s.generationProvider()
	if err != nil {
		return nil, err
	}

	systemPrompt, prompt := buildLinksPrompt(keywords, metaTags, content)
	raw, err := callAIWithSystemPrompt(provider, systemPrompt, prompt, maxTokensLinks)
	if err != nil {
		return nil, err
	}

	var out struct {
		Links []LinkSuggestion `json:"links"`
	}
	if err := unmarshalAIJSON(raw, &out); err != nil {
		var list []LinkSuggestion
		if err2 := unmarshalAIJSON(raw, &list); err2 != nil {
			return nil, err
		}
		out.Links = list
	}
	if len(out.Links) == 0 {
		return nil, errors.New("AI returned no link suggestions")
	}
	return out.Links, nil
}

// CheckQuality analyzes the content via a forced tool call.
func (s *Service) CheckQuality(content string) (*QualityReport, error) {
	provider, err := s.qualityProvider()
	if err != nil {
		return nil, err
	}

	systemPrompt, prompt := buildQualityPrompt(content)
	parameters := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"grammarScore":            map[string]interface{}{"type": "number"},
			"spellingIssues":          map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"aiDetectionScore":        map[string]interface{}{"type": "number"},
			"humanizationSuggestions": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"overallQuality":          map[string]interface{}{"type": "number"},
		},
		"required": []string{"grammarScore", "spellingIssues", "aiDetectionScore", "humanizationSuggestions", "overallQuality"},
	}

	args, err := callAIForcedTool(provider, systemPrompt, prompt, "analyze_content_quality", parameters, maxTokensQuality)
	if err != nil {
		return nil, err
	}

	var report QualityReport
	if err := json.Unmarshal(args, &report); err != nil {
		return nil, fmt.Errorf("invalid quality tool arguments: %w", err)
	}
	return &report, nil
}

// Humanize rewrites the content for a more natural tone, HTML preserved.
func (s *Service) Humanize(content string) (string, error) {
	provider, _, err := s.generationProvider()
	if err != nil {
		return "", err
	}

	systemPrompt, prompt := buildHumanizePrompt(content)
	humanized, err := callAIWithSystemPrompt(provider, systemPrompt, prompt, maxTokensHumanize)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(humanized) == "" {
		return "", errors.New("empty response from AI")
	}
	return humanized, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/ai", authMW)

	g.POST("/keywords", h.generateKeywords)
	g.POST("/meta", h.generateMeta)
	g.POST("/headings", h.generateHeadings)
	g.POST("/intro", h.generateIntro)
	g.POST("/content", h.generateContent)
	g.POST("/content/task", h.createContentTask)
	g.POST("/faq", h.generateFaq)
	g.POST("/links", h.generateLinks)
	g.POST("/quality", h.checkQuality)
	g.POST("/humanize", h.humanize)

	g.GET("/tasks/:id", h.getTask)
}

type keywordsDTO struct {
	Type    string   `json:"type"    binding:"required"`
	Primary []string `json:"primary" binding:"required"`
}

type metaDTO struct {
	Keywords models.KeywordSet `json:"keywords" binding:"required"`
}

type headingsDTO struct {
	Keywords models.KeywordSet `json:"keywords" binding:"required"`
}

type introDTO struct {
	Keywords models.KeywordSet `json:"keywords"`
	MetaTags models.MetaTags   `json:"metaTags" binding:"required"`
}

type linksDTO struct {
	Keywords models.KeywordSet `json:"keywords"`
	MetaTags models.MetaTags   `json:"metaTags"`
	Content  string            `json:"content"  binding:"required"`
}

type contentBodyDTO struct {
	Content string `json:"content" binding:"required"`
}

// POST /ai/keywords
func (h *Handler) generateKeywords(c *gin.Context) {
	var dto keywordsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	keywordType := strings.ToLower(strings.TrimSpace(dto.Type))
	switch keywordType {
	case models.KeywordTypeSecondary, models.KeywordTypeSemantic, models.KeywordTypeLSI:
	default:
		response.BadRequest(c, "type must be secondary, semantic, or lsi")
		return
	}
	if len(dto.Primary) == 0 {
		response.BadRequest(c, "primary keywords are required")
		return
	}

	keywords, err := h.svc.GenerateKeywords(keywordType, dto.Primary)
	if err != nil {
		h.respondAIError(c, err)
		return
	}
	response.OK(c, gin.H{"keywords": keywords})
}

// POST /ai/meta
func (h *Handler) generateMeta(c *gin.Context) {
	var dto metaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if len(dto.Keywords.Primary) == 0 {
		response.BadRequest(c, "primary keywords are required")
		return
	}

	meta, err := h.svc.GenerateMeta(dto.Keywords)
	if err != nil {
		h.respondAIError(c, err)
		return
	}
	response.OK(c, meta)
}

// POST /ai/headings
func (h *Handler) generateHeadings(c *gin.Context) {
	var dto headingsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if len(dto.Keywords.Primary) == 0 {
		response.BadRequest(c, "primary keywords are required")
		return
	}

	headings, err := h.svc.GenerateHeadings(dto.Keywords)
	if err != nil {
		h.respondAIError(c, err)
		return
	}
	response.OK(c, headings)
}

// POST /ai/intro
func (h *Handler) generateIntro(c *gin.Context) {
	var dto introDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(dto.MetaTags.Title) == "" {
		response.BadRequest(c, "metaTags.title is required")
		return
	}

	intro, err := h.svc.GenerateIntro(dto.Keywords, dto.MetaTags)
	if err != nil {
		h.respondAIError(c, err)
		return
	}
	response.OK(c, gin.H{"intro": intro})
}

// POST /ai/content
func (h *Handler) generateContent(c *gin.Context) {
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.MetaTags.Title) == "" {
		response.BadRequest(c, "metaTags.title is required")
		return
	}

	content, seoScore, err := h.svc.GenerateContent(req)
	if err != nil {
		h.respondAIError(c, err)
		return
	}
	response.OK(c, gin.H{"content": content, "seoScore": seoScore})
}

// POST /ai/content/task
func (h *Handler) createContentTask(c *gin.Context) {
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.MetaTags.Title) == "" {
		response.BadRequest(c, "metaTags.title is required")
		return
	}

	userID := middleware.CurrentUserID(c)
	task, err := h.svc.EnqueueContent(c.Request.Context(), userID, req)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Accepted(c, gin.H{"taskId": task.ID, "status": task.Status})
}

// GET /ai/tasks/:id
func (h *Handler) getTask(c *gin.Context) {
	task, err := h.svc.taskSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	// Another user's task looks identical to a missing one.
	if !task.OwnedBy(middleware.CurrentUserID(c)) {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

// POST /ai/faq
func (h *Handler) generateFaq(c *gin.Context) {
	var req FaqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.MetaTags.Title) == "" {
		response.BadRequest(c, "metaTags.title is required")
		return
	}

	faqs, err := h.svc.GenerateFaq(req)
	if err != nil {
		h.respondAIError(c, err)
		return
	}
	response.OK(c, gin.H{"faqs": faqs})
}

// POST /ai/links
func (h *Handler) generateLinks(c *gin.Context) {
	var dto linksDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	links, err := h.svc.GenerateLinks(dto.Keywords, dto.MetaTags, dto.Content)
	if err != nil {
		h.respondAIError(c, err)
		return
	}
	response.OK(c, gin.H{"links": links})
}

// POST /ai/quality
func (h *Handler) checkQuality(c *gin.Context) {
	var dto contentBodyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	report, err := h.svc.CheckQuality(dto.Content)
	if err != nil {
		h.respondAIError(c, err)
		return
	}
	response.OK(c, report)
}

// POST /ai/humanize
func (h *Handler) humanize(c *gin.Context) {
	var dto contentBodyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	humanized, err := h.svc.Humanize(dto.Content)
	if err != nil {
		h.respondAIError(c, err)
		return
	}
	response.OK(c, gin.H{"humanizedContent": humanized})
}

func (h *Handler) respondAIError(c *gin.Context, err error) {
	if errors.Is(err, errNoProvider) || errors.Is(err, errMissingAPIKey) {
		response.BadRequest(c, err.Error())
		return
	}
	response.BadGateway(c, err.Error())
}
