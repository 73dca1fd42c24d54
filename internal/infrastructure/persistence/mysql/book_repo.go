package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 聚合整体序列化为JSON文档读写,不拆表
// 3. 数据库特定错误(主键冲突)转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// GetByISBN 按ISBN查询聚合
func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model)
}

// Create 创建聚合,ISBN冲突返回业务错误
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model, err := toBookModel(b)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}
	return nil
}

// Save 整体保存聚合(upsert:不存在则插入,存在则覆盖payload)
func (r *bookRepository) Save(ctx context.Context, b *book.Book) error {
	model, err := toBookModel(b)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "isbn"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return apperrors.Wrap(err, "保存图书失败")
	}
	return nil
}

// Delete 按ISBN删除聚合
func (r *bookRepository) Delete(ctx context.Context, isbn string) error {
	result := r.db.WithContext(ctx).Where("isbn = ?", isbn).Delete(&BookModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// toBookModel 领域实体 → GORM模型(序列化为JSON文档)
func toBookModel(b *book.Book) (*BookModel, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return nil, apperrors.Wrap(err, "序列化图书聚合失败")
	}
	return &BookModel{
		ISBN:      b.ISBN,
		Payload:   payload,
		UpdatedAt: b.UpdatedAt,
	}, nil
}

// toBookEntity GORM模型 → 领域实体(反序列化JSON文档)
func toBookEntity(model *BookModel) (*book.Book, error) {
	var b book.Book
	if err := json.Unmarshal(model.Payload, &b); err != nil {
		return nil, apperrors.Wrap(err, "反序列化图书聚合失败")
	}
	return &b, nil
}

// isDuplicateError 判断是否为唯一键冲突错误(MySQL错误码1062)
func isDuplicateError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
