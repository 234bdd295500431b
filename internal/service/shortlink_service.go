package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"shorturl-go/constant"
	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/dto"
	"shorturl-go/internal/model"
	"shorturl-go/internal/repository"
	"shorturl-go/pkg/logging"
	"shorturl-go/pkg/utils"
	"shorturl-go/response"
)

const (
	// DefaultCodeLength 随机短码长度
	DefaultCodeLength = 6
	// MaxGenerateAttempts 随机短码冲突重试上限，用尽后返回 GenerationExhausted
	MaxGenerateAttempts = 10
)

// LinkService 短链生命周期服务：编排校验、短码生成、冲突重试和存储调用
type LinkService struct {
	repo       *repository.LinkRepository
	pool       *redis.Pool // 可为 nil，nil 时跳过缓存失效
	codeLength int
	generate   func(int) (string, error)

	// enforceWhitelist 开启后创建时校验目标域名在白名单内
	enforceWhitelist bool
}

func NewLinkService(repo *repository.LinkRepository, pool *redis.Pool, codeLength int, enforceWhitelist bool) *LinkService {
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	return &LinkService{
		repo:             repo,
		pool:             pool,
		codeLength:       codeLength,
		generate:         utils.GenerateShortCode,
		enforceWhitelist: enforceWhitelist,
	}
}

// Create 创建短链
// 自定义短码冲突直接失败（CodeTaken），随机短码冲突重新生成重试：
// 自定义短码是一次预订，随机短码只是尽力而为
func (s *LinkService) Create(ctx context.Context, req dto.CreateShortLinkRequest) (*model.ShortLink, error) {
	if err := utils.ValidateTargetURL(req.TargetURL); err != nil {
		return nil, apperrors.InvalidURLError()
	}

	if s.enforceWhitelist {
		parsed, _ := url.Parse(req.TargetURL)
		allowed, err := DomainAllowed(ctx, parsed.Hostname())
		if err != nil {
			return nil, apperrors.SystemError(err)
		}
		if !allowed {
			return nil, apperrors.BusinessError(http.StatusForbidden, "目标域名不在白名单内")
		}
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, apperrors.InvalidDateError()
		}
		expiresAt = &parsed
	}

	// 自定义短码：单次插入，冲突即失败
	if req.CustomCode != "" {
		if err := utils.ValidateShortCode(req.CustomCode); err != nil {
			return nil, apperrors.InvalidCodeError()
		}
		link := &model.ShortLink{
			ShortCode: req.CustomCode,
			TargetURL: req.TargetURL,
			ExpiresAt: expiresAt,
		}
		if err := s.repo.Insert(ctx, link); err != nil {
			if errors.Is(err, repository.ErrCodeConflict) {
				return nil, apperrors.CodeTakenError()
			}
			logging.Logger.Error("数据库操作失败",
				zap.String("short_code", req.CustomCode),
				zap.Error(err))
			return nil, apperrors.SystemError(err)
		}
		// 该短码可能残留未命中的负缓存，创建成功后必须清掉
		s.invalidateCache(link.ShortCode)
		return link, nil
	}

	// 随机短码：每次重试用新的随机值，冲突概率由字母表规模决定
	for attempt := 0; attempt < MaxGenerateAttempts; attempt++ {
		code, err := s.generate(s.codeLength)
		if err != nil {
			return nil, apperrors.SystemError(err)
		}
		link := &model.ShortLink{
			ShortCode: code,
			TargetURL: req.TargetURL,
			ExpiresAt: expiresAt,
		}
		err = s.repo.Insert(ctx, link)
		if err == nil {
			s.invalidateCache(link.ShortCode)
			return link, nil
		}
		if errors.Is(err, repository.ErrCodeConflict) {
			logging.Logger.Warn("生成的短码冲突，重新生成",
				zap.String("short_code", code),
				zap.Int("attempt", attempt+1))
			continue
		}
		logging.Logger.Error("数据库操作失败", zap.Error(err))
		return nil, apperrors.SystemError(err)
	}

	return nil, apperrors.GenerationExhaustedError()
}

// Retrieve 按短码查询记录，不递增计数，过期记录照常返回（响应里带 expired 标记）
func (s *LinkService) Retrieve(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	link, err := s.repo.FindByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundError()
		}
		logging.Logger.Error("查询短链失败",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return nil, apperrors.SystemError(err)
	}
	return link, nil
}

// Update 仅更新短链的 target_url 字段并刷新 updated_at
func (s *LinkService) Update(ctx context.Context, shortCode string, targetURL string) (*model.ShortLink, error) {
	if err := utils.ValidateTargetURL(targetURL); err != nil {
		return nil, apperrors.InvalidURLError()
	}

	link, err := s.repo.UpdateTargetURL(ctx, shortCode, targetURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundError()
		}
		logging.Logger.Error("更新短链失败",
			zap.String("short_code", shortCode),
			zap.String("target_url", targetURL),
			zap.Error(err))
		return nil, apperrors.SystemError(err)
	}

	s.invalidateCache(shortCode)
	return link, nil
}

// Delete 删除短链，幂等：重复删除和删除不存在的短码都视为成功
func (s *LinkService) Delete(ctx context.Context, shortCode string) error {
	if err := s.repo.Delete(ctx, shortCode); err != nil {
		logging.Logger.Error("删除短链失败",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return apperrors.SystemError(err)
	}

	s.invalidateCache(shortCode)
	return nil
}

// Stats 返回单条短链的统计信息（含访问计数和过期时间）
func (s *LinkService) Stats(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	return s.Retrieve(ctx, shortCode)
}

// AggregateStats 返回全局统计：总链接数、总访问量和访问量 Top 5
func (s *LinkService) AggregateStats(ctx context.Context) (*repository.AggregateStats, error) {
	stats, err := s.repo.Aggregate(ctx, 5)
	if err != nil {
		logging.Logger.Error("统计短链失败", zap.Error(err))
		return nil, apperrors.SystemError(err)
	}
	return stats, nil
}

// List 支持分页查询短链列表
func (s *LinkService) List(ctx context.Context, page, size int, shortCode string) (*response.PageResponse[model.ShortLink], error) {
	// 参数校验
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10 // 默认每页10条，最大100条
	}

	links, total, err := s.repo.List(ctx, page, size, shortCode)
	if err != nil {
		logging.Logger.Error("查询短链列表失败", zap.Error(err))
		return nil, apperrors.SystemError(err)
	}
	if links == nil {
		links = []model.ShortLink{}
	}

	totalPage := (int(total) + size - 1) / size
	return &response.PageResponse[model.ShortLink]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      links,
	}, nil
}

// invalidateCache 创建、更新或删除后清掉解析路径的缓存
func (s *LinkService) invalidateCache(shortCode string) {
	if s.pool == nil {
		return
	}
	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Warn("Redis connection close failed", zap.Error(err))
		}
	}()

	cacheKey := constant.GetShortCodeKey(shortCode)
	if _, err := conn.Do("DEL", cacheKey); err != nil {
		logging.Logger.Warn("Redis 删除缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}
}
