package translation

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/luminpress/core/internal/models"
	"github.com/luminpress/core/internal/pkg/pagination"
	"github.com/luminpress/core/internal/pkg/response"
	"github.com/luminpress/core/internal/pkg/taskqueue"
	"gorm.io/gorm"
)

// Handler exposes the translation pipeline over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts translation endpoints on the API group. Everything
// here is admin surface.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc) {
	g := api.Group("/translations")
	g.POST("/articles/:id", auth, h.triggerArticle)
	g.GET("/articles/:id", auth, h.articleStatus)
	g.GET("/tasks", auth, h.listTasks)
	g.GET("/tasks/:id", auth, h.getTask)
}

type triggerRequest struct {
	Languages []string `json:"languages"`
	Force     bool     `json:"force"`
}

// POST /translations/articles/:id  [auth]
func (h *Handler) triggerArticle(c *gin.Context) {
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	var article models.ArticleModel
	if err := h.svc.db.First(&article, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}

	languages := targetLanguagesOf(&article, req.Languages)
	if len(languages) == 0 {
		response.BadRequest(c, "no target languages to translate")
		return
	}

	task, err := h.svc.QueueRun(c.Request.Context(), article.ID, languages, req.Force)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Accepted(c, task)
}

// GET /translations/articles/:id  [auth]
func (h *Handler) articleStatus(c *gin.Context) {
	articleID := c.Param("id")
	var article models.ArticleModel
	if err := h.svc.db.First(&article, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}

	translations, jobs, err := h.svc.ListArticleState(c.Request.Context(), articleID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{
		"article_id":          articleID,
		"available_languages": article.AvailableLanguages,
		"translations":        translations,
		"jobs":                jobs,
	})
}

// GET /translations/tasks  [auth]
func (h *Handler) listTasks(c *gin.Context) {
	q := pagination.FromContext(c)

	taskType := TaskTypeTranslate
	statusStr := c.Query("status")
	var statusPtr *taskqueue.TaskStatus
	if statusStr != "" {
		s := taskqueue.TaskStatus(statusStr)
		statusPtr = &s
	}

	tasks, total, err := h.svc.tasks.List(c.Request.Context(), q.Page, q.Size, &taskType, statusPtr)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	totalPages := int((total + int64(q.Size) - 1) / int64(q.Size))
	response.Paged(c, tasks, response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPages,
		Size:        q.Size,
		HasNextPage: q.Page < totalPages,
	})
}

// GET /translations/tasks/:id  [auth]
func (h *Handler) getTask(c *gin.Context) {
	task, err := h.svc.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil || task.Type != TaskTypeTranslate {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}
