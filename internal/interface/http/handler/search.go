package handler

import (
	"github.com/gin-gonic/gin"

	appsearch "github.com/xiebiao/bookmarket/internal/application/search"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// SearchHandler 检索HTTP处理器(搜索服务)
type SearchHandler struct {
	searchBooks *appsearch.SearchBooksUseCase
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(searchBooks *appsearch.SearchBooksUseCase) *SearchHandler {
	return &SearchHandler{searchBooks: searchBooks}
}

// SearchBooks 全文检索
// @Summary      检索图书
// @Description  全文检索(空查询词或*返回全部),索引由图书事件异步同步
// @Tags         检索
// @Produce      json
// @Param        q query string false "查询词" example(go)
// @Param        from query int false "偏移量" example(0)
// @Param        size query int false "页大小(默认20,上限100)" example(20)
// @Success      200 {object} response.Response{data=dto.SearchBooksResponse}
// @Failure      200 {object} response.Response "搜索服务不可用"
// @Router       /api/v1/search [get]
func (h *SearchHandler) SearchBooks(c *gin.Context) {
	var req dto.SearchBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.searchBooks.Execute(c.Request.Context(), req.Q, req.From, req.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToSearchBooksResponse(result))
}

// GetBook 按ISBN点查索引文档
// @Summary      查询索引文档
// @Description  按ISBN查询搜索索引里的图书文档
// @Tags         检索
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=dto.SearchBookItem}
// @Failure      200 {object} response.Response "文档不存在"
// @Router       /api/v1/search/{isbn} [get]
func (h *SearchHandler) GetBook(c *gin.Context) {
	doc, err := h.searchBooks.ExecuteGet(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToSearchBookItem(*doc))
}
