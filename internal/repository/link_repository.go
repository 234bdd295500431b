package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shorturl-go/internal/model"
)

var (
	// ErrCodeConflict 短码已存在（唯一约束冲突）
	ErrCodeConflict = errors.New("short code already exists")
	// ErrNotFound 短链不存在
	ErrNotFound = errors.New("short link not found")
)

// AggregateStats 全局统计结果
type AggregateStats struct {
	TotalLinks       int64             `json:"totalLinks"`
	TotalAccessCount int64             `json:"totalAccessCount"`
	TopLinks         []model.ShortLink `json:"topLinks"`
}

// LinkRepository 短链存储层，唯一性约束和计数器原子性都由数据库保证
type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Insert 插入新短链记录
// 并发插入同一短码时由唯一索引裁决：恰好一个成功，其余得到 ErrCodeConflict
func (r *LinkRepository) Insert(ctx context.Context, link *model.ShortLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCodeConflict
		}
		return err
	}
	return nil
}

// FindByCode 按短码查询（包含已过期记录）
func (r *LinkRepository) FindByCode(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	var link model.ShortLink
	err := r.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// UpdateTargetURL 替换目标 URL 并刷新 updated_at，返回更新后的记录
// 只更新 target_url 单列，避免 Save 整条记录时把读到的旧
// access_count 写回去、覆盖掉并发的计数递增
func (r *LinkRepository) UpdateTargetURL(ctx context.Context, shortCode string, targetURL string) (*model.ShortLink, error) {
	var existing model.ShortLink
	if err := r.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&model.ShortLink{}).
		Where("short_code = ?", shortCode).
		Updates(map[string]interface{}{"target_url": targetURL}).Error; err != nil {
		return nil, err
	}

	return r.FindByCode(ctx, shortCode)
}

// Delete 删除短链，幂等：记录不存在也不报错
func (r *LinkRepository) Delete(ctx context.Context, shortCode string) error {
	return r.db.WithContext(ctx).Where("short_code = ?", shortCode).
		Delete(&model.ShortLink{}).Error
}

// IncrementAccess 原子递增访问计数并返回递增后的记录
// 递增是单条 UPDATE 语句（access_count = access_count + 1），
// 不走读-改-写，两次并发解析同一短码不会丢失计数
func (r *LinkRepository) IncrementAccess(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	result := r.db.WithContext(ctx).Model(&model.ShortLink{}).
		Where("short_code = ?", shortCode).
		UpdateColumn("access_count", gorm.Expr("access_count + ?", 1))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.FindByCode(ctx, shortCode)
}

// Aggregate 返回总链接数、总访问量和访问量前 topK 的记录
// 并列时 created_at 较早的排前面（排序稳定）
func (r *LinkRepository) Aggregate(ctx context.Context, topK int) (*AggregateStats, error) {
	if topK <= 0 {
		topK = 5
	}

	stats := &AggregateStats{TopLinks: []model.ShortLink{}}

	if err := r.db.WithContext(ctx).Model(&model.ShortLink{}).Count(&stats.TotalLinks).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&model.ShortLink{}).
		Select("COALESCE(SUM(access_count), 0)").
		Scan(&stats.TotalAccessCount).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&model.ShortLink{}).
		Order("access_count DESC, created_at ASC").
		Limit(topK).
		Find(&stats.TopLinks).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// List 分页查询短链列表，可按短码模糊过滤
func (r *LinkRepository) List(ctx context.Context, page, size int, shortCode string) ([]model.ShortLink, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.ShortLink{})
	if shortCode != "" {
		db = db.Where("short_code LIKE ?", "%"+shortCode+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var links []model.ShortLink
	if total == 0 {
		return links, 0, nil
	}

	err := db.Limit(size).
		Offset((page - 1) * size).
		Order("id DESC").
		Find(&links).Error
	return links, total, err
}
