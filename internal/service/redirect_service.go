package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"shorturl-go/constant"
	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/model"
	"shorturl-go/internal/repository"
	"shorturl-go/pkg/logging"
)

// RedirectService 公开访问的解析路径，与 Retrieve 分开：
// 有副作用（计数递增）并强制执行过期语义
type RedirectService struct {
	repo    *repository.LinkRepository
	pool    *redis.Pool // 可为 nil，nil 时退化为纯数据库查询
	nowFunc func() time.Time
}

func NewRedirectService(repo *repository.LinkRepository, pool *redis.Pool) *RedirectService {
	return &RedirectService{
		repo:    repo,
		pool:    pool,
		nowFunc: time.Now,
	}
}

// Resolve 解析短码并原子记录一次访问，返回递增后的记录
// 过期检查在递增之前：计数只反映成功的解析，过期链接不累计访问
func (s *RedirectService) Resolve(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	link, err := s.lookup(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	if link.Expired(s.nowFunc()) {
		return nil, apperrors.LinkExpiredError()
	}

	// 计数永远走数据库的单语句原子递增，缓存只省掉读查询
	updated, err := s.repo.IncrementAccess(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 缓存命中与删除竞争时记录可能刚被删掉
			return nil, apperrors.NotFoundError()
		}
		logging.Logger.Error("递增访问计数失败",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return nil, apperrors.SystemError(err)
	}
	return updated, nil
}

// lookup 先查缓存再查库，未命中时回填缓存，查无此码时写负缓存防穿透
func (s *RedirectService) lookup(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	if s.pool == nil {
		return s.findFromDB(ctx, shortCode, nil)
	}

	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Warn("Redis connection close failed", zap.Error(err))
		}
	}()

	cacheKey := constant.GetShortCodeKey(shortCode)
	cachedValue, err := redis.Bytes(conn.Do("GET", cacheKey))
	if err == nil {
		if len(cachedValue) == 0 {
			// 负缓存命中
			return nil, apperrors.NotFoundError()
		}
		var link model.ShortLink
		if err := json.Unmarshal(cachedValue, &link); err == nil {
			return &link, nil
		}
		logging.Logger.Warn("Failed to unmarshal cached value",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	} else if err != redis.ErrNil {
		logging.Logger.Warn("Error getting from Redis",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}

	return s.findFromDB(ctx, shortCode, conn)
}

func (s *RedirectService) findFromDB(ctx context.Context, shortCode string, conn redis.Conn) (*model.ShortLink, error) {
	link, err := s.repo.FindByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.cacheNotFound(conn, shortCode)
			return nil, apperrors.NotFoundError()
		}
		logging.Logger.Error("查询短链失败",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return nil, apperrors.SystemError(err)
	}

	s.cacheLink(conn, link)
	return link, nil
}

// cacheLink 缓存记录元数据，TTL 不超过链接剩余有效期
func (s *RedirectService) cacheLink(conn redis.Conn, link *model.ShortLink) {
	if conn == nil {
		return
	}

	ttl := int64(constant.CacheTTLSeconds)
	if link.ExpiresAt != nil {
		remaining := int64(time.Until(*link.ExpiresAt).Seconds())
		if remaining <= 0 {
			return // 已过期的记录不进缓存
		}
		if remaining < ttl {
			ttl = remaining
		}
	}

	cachedValue, err := json.Marshal(link)
	if err != nil {
		return
	}
	cacheKey := constant.GetShortCodeKey(link.ShortCode)
	if _, err := conn.Do("SET", cacheKey, cachedValue, "EX", ttl); err != nil {
		logging.Logger.Error("设置缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}
}

func (s *RedirectService) cacheNotFound(conn redis.Conn, shortCode string) {
	if conn == nil {
		return
	}
	cacheKey := constant.GetShortCodeKey(shortCode)
	if _, err := conn.Do("SET", cacheKey, "", "EX", constant.NegativeCacheTTLSeconds); err != nil {
		logging.Logger.Error("设置缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}
}
