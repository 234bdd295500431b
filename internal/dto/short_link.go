package dto

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"shorturl-go/internal/model"
	"shorturl-go/pkg/utils"
)

// CreateShortLinkRequest 用于创建短链的请求参数
// customShortCode 省略时由服务端生成随机短码
type CreateShortLinkRequest struct {
	TargetURL  string `json:"url" binding:"required"`
	CustomCode string `json:"customShortCode" binding:"omitempty,shortcode"`
	ExpiresAt  string `json:"expiresAt" binding:"omitempty"` // ISO 8601
}

// UpdateShortLinkRequest 用于更新短链目标地址的请求参数
type UpdateShortLinkRequest struct {
	TargetURL string `json:"url" binding:"required"`
}

// ShortLinkResponse 短链记录的响应结构
// Expired 是读取时计算的状态，过期记录照常返回但会被标记
type ShortLinkResponse struct {
	ID          uint       `json:"id"`
	ShortCode   string     `json:"shortCode"`
	TargetURL   string     `json:"url"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	AccessCount int64      `json:"accessCount"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	Expired     bool       `json:"expired"`
}

// FromModel 由存储模型构造响应
func FromModel(link *model.ShortLink, now time.Time) ShortLinkResponse {
	return ShortLinkResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		TargetURL:   link.TargetURL,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
		AccessCount: link.AccessCount,
		ExpiresAt:   link.ExpiresAt,
		Expired:     link.Expired(now),
	}
}

// RegisterValidations 注册自定义的 binding 校验规则
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
			return utils.ValidateShortCode(fl.Field().String()) == nil
		})
	}
}
