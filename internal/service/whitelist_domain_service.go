package service

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/model"
	"shorturl-go/internal/repository"
	"shorturl-go/response"
)

// CreateWhitelistDomain 创建白名单域名
func CreateWhitelistDomain(ctx context.Context, domain string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return apperrors.BusinessError(http.StatusBadRequest, "域名不能为空")
	}

	var existing model.WhitelistDomain
	if err := repository.DB.WithContext(ctx).Where("domain = ?", domain).First(&existing).Error; err == nil {
		return apperrors.BusinessError(http.StatusBadRequest, "该域名已存在")
	}

	whitelist := &model.WhitelistDomain{
		Domain: domain,
	}
	if err := repository.DB.WithContext(ctx).Create(whitelist).Error; err != nil {
		zap.L().Info("创建白名单域名失败", zap.Error(err))
		return apperrors.SystemError(err)
	}
	return nil
}

// ListWhitelistDomains 支持分页查询白名单列表
func ListWhitelistDomains(ctx context.Context, page, size int, domain string) (*response.PageResponse[model.WhitelistDomain], error) {
	// 参数校验
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	db := repository.DB.WithContext(ctx).Model(&model.WhitelistDomain{})
	if domain != "" {
		db = db.Where("domain LIKE ?", "%"+domain+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, apperrors.SystemError(err)
	}

	if total == 0 {
		return &response.PageResponse[model.WhitelistDomain]{
			Page:      page,
			Size:      size,
			Total:     0,
			TotalPage: 0,
			List:      []model.WhitelistDomain{},
		}, nil
	}

	var domains []model.WhitelistDomain
	if err := db.
		Limit(size).
		Offset((page - 1) * size).
		Order("id DESC").
		Find(&domains).Error; err != nil {
		return nil, apperrors.SystemError(err)
	}

	totalPage := (int(total) + size - 1) / size

	return &response.PageResponse[model.WhitelistDomain]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      domains,
	}, nil
}

// DeleteWhitelistDomain 删除白名单域名
func DeleteWhitelistDomain(ctx context.Context, id uint) error {
	if err := repository.DB.WithContext(ctx).Delete(&model.WhitelistDomain{}, id).Error; err != nil {
		return apperrors.SystemError(err)
	}
	return nil
}

// DomainAllowed 判断 host 是否在白名单内（大小写不敏感，精确匹配）
func DomainAllowed(ctx context.Context, host string) (bool, error) {
	host = strings.ToLower(host)
	var count int64
	if err := repository.DB.WithContext(ctx).Model(&model.WhitelistDomain{}).
		Where("domain = ?", host).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
