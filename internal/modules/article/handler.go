package article

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/luminpress/core/internal/middleware"
	"github.com/luminpress/core/internal/pkg/pagination"
	"github.com/luminpress/core/internal/pkg/response"
)

// Handler handles article HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts article routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	articles := rg.Group("/articles")

	articles.GET("", h.list)
	articles.GET("/:identifier", h.get)

	authed := articles.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/:id", h.update)
	authed.POST("/:id/publish", h.publish)
	authed.DELETE("/:id", h.delete)
}

// list GET /articles
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	var lq ListQuery
	if err := c.ShouldBindQuery(&lq); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	articles, pag, err := h.svc.List(q, lq, middleware.IsAdmin(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, articles, pag)
}

// get GET /articles/:identifier?lang=fr&rendered=1
func (h *Handler) get(c *gin.Context) {
	isAdmin := middleware.IsAdmin(c)

	article, err := h.svc.GetByIdentifier(c.Param("identifier"), isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if article == nil {
		response.NotFound(c)
		return
	}

	resp := articleResponse{ArticleModel: article, Language: article.OriginalLanguage}
	if lang := c.Query("lang"); lang != "" {
		localized, translated := h.svc.Localize(article, lang)
		resp.ArticleModel = localized
		resp.Translated = translated
		if translated {
			resp.Language = lang
		}
		h.svc.TouchAvailability(article.ID)
	}

	if c.Query("rendered") == "1" {
		html, err := renderHTML(resp.ArticleModel.Text)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		resp.HTML = html
	}
	response.OK(c, resp)
}

// create POST /articles  [auth]
func (h *Handler) create(c *gin.Context) {
	var dto CreateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	article, err := h.svc.Create(&dto)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, article)
}

// update PUT /articles/:id  [auth]
func (h *Handler) update(c *gin.Context) {
	var dto UpdateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	article, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if article == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, article)
}

// publish POST /articles/:id/publish  [auth]
func (h *Handler) publish(c *gin.Context) {
	article, err := h.svc.Publish(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if article == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, article)
}

// delete DELETE /articles/:id  [auth]
func (h *Handler) delete(c *gin.Context) {
	article, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if article == nil {
		response.NotFound(c)
		return
	}
	if err := h.svc.Delete(article.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
