package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	lookupUC "github.com/khoahotran/codejourney/internal/application/usecase/lookup"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/pkg/apperror"
	"github.com/khoahotran/codejourney/pkg/logger"
)

type HistoryHandler struct {
	listUseCase *lookupUC.ListLookupsUseCase
	rssUseCase  *lookupUC.RSSUseCase
	catalog     *platform.Catalog
	logger      logger.Logger
}

func NewHistoryHandler(list *lookupUC.ListLookupsUseCase, rss *lookupUC.RSSUseCase, catalog *platform.Catalog, log logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		listUseCase: list,
		rssUseCase:  rss,
		catalog:     catalog,
		logger:      log,
	}
}

func (h *HistoryHandler) ListLookups(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	output, err := h.listUseCase.Execute(c.Request.Context(), lookupUC.ListLookupsInput{
		Handle:   c.Query("handle"),
		Platform: c.Query("platform"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lookups": ToLookupDTOs(output.Lookups, h.catalog),
		"page":    page,
		"limit":   limit,
	})
}

func (h *HistoryHandler) GenerateRSS(c *gin.Context) {
	feed, err := h.rssUseCase.Execute(c.Request.Context(), c.Query("handle"))
	if err != nil {
		c.Error(apperror.NewInternal("failed to generate RSS feed", err))
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}
