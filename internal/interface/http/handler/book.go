package handler

import (
	"github.com/gin-gonic/gin"

	appwarehouse "github.com/xiebiao/bookmarket/internal/application/warehouse"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// BookHandler 图书HTTP处理器(仓库服务)
type BookHandler struct {
	createBook *appwarehouse.CreateBookUseCase
	updateBook *appwarehouse.UpdateBookUseCase
	deleteBook *appwarehouse.DeleteBookUseCase
	getBook    *appwarehouse.GetBookUseCase
	addListing *appwarehouse.AddListingUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBook *appwarehouse.CreateBookUseCase,
	updateBook *appwarehouse.UpdateBookUseCase,
	deleteBook *appwarehouse.DeleteBookUseCase,
	getBook *appwarehouse.GetBookUseCase,
	addListing *appwarehouse.AddListingUseCase,
) *BookHandler {
	return &BookHandler{
		createBook: createBook,
		updateBook: updateBook,
		deleteBook: deleteBook,
		getBook:    getBook,
		addListing: addListing,
	}
}

// CreateBook 创建图书
// @Summary      创建图书
// @Description  创建图书聚合(可附带初始挂单),并发布book-created事件
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      200 {object} response.Response "参数错误/ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	listings := make([]appwarehouse.ListingRequest, 0, len(req.Listings))
	for _, l := range req.Listings {
		listings = append(listings, appwarehouse.ListingRequest{
			SellerID:  l.SellerID,
			Price:     l.Price,
			Stock:     l.Stock,
			Condition: l.Condition,
		})
	}

	b, err := h.createBook.Execute(c.Request.Context(), appwarehouse.CreateBookRequest{
		ISBN:          req.ISBN,
		Title:         req.Title,
		Authors:       req.Authors,
		Description:   req.Description,
		Categories:    req.Categories,
		PublishedDate: req.PublishedDate,
		Tags:          req.Tags,
		Listings:      listings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookResponse(b))
}

// GetBook 查询图书
// @Summary      查询图书
// @Description  按ISBN查询图书聚合(cache-aside读路径)
// @Tags         图书
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      200 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	b, err := h.getBook.Execute(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponse(b))
}

// BatchGetBooks 批量查询图书
// @Summary      批量查询图书
// @Description  按ISBN列表批量查询,不存在的ISBN静默跳过
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.BatchGetBooksRequest true "ISBN列表"
// @Success      200 {object} response.Response{data=[]dto.BookResponse}
// @Router       /api/v1/books/batch [post]
func (h *BookHandler) BatchGetBooks(c *gin.Context) {
	var req dto.BatchGetBooksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	books, err := h.getBook.ExecuteBatch(c.Request.Context(), req.ISBNs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponses(books))
}

// UpdateBook 更新图书
// @Summary      更新图书元数据
// @Description  更新描述性字段(不触碰挂单),并发布book-updated事件
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Param        request body dto.UpdateBookRequest true "更新字段"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      200 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	b, err := h.updateBook.Execute(c.Request.Context(), appwarehouse.UpdateBookRequest{
		ISBN:          c.Param("isbn"),
		Title:         req.Title,
		Authors:       req.Authors,
		Description:   req.Description,
		Categories:    req.Categories,
		PublishedDate: req.PublishedDate,
		Tags:          req.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponse(b))
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  删除图书聚合并发布book-deleted事件
// @Tags         图书
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.deleteBook.Execute(c.Request.Context(), c.Param("isbn")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// AddListing 追加挂单
// @Summary      追加挂单
// @Description  在指定图书下追加卖家挂单,并发布book-updated事件
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Param        request body dto.ListingRequest true "挂单信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      200 {object} response.Response "图书不存在/库存非法"
// @Router       /api/v1/books/{isbn}/listings [post]
func (h *BookHandler) AddListing(c *gin.Context) {
	var req dto.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	b, err := h.addListing.Execute(c.Request.Context(), c.Param("isbn"), appwarehouse.ListingRequest{
		SellerID:  req.SellerID,
		Price:     req.Price,
		Stock:     req.Stock,
		Condition: req.Condition,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponse(b))
}
