package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/dto"
	"shorturl-go/internal/service"
	"shorturl-go/response"
)

// ShortLinkHandler 短链相关的 HTTP handlers
type ShortLinkHandler struct {
	links    *service.LinkService
	redirect *service.RedirectService
}

func NewShortLinkHandler(links *service.LinkService, redirect *service.RedirectService) *ShortLinkHandler {
	return &ShortLinkHandler{
		links:    links,
		redirect: redirect,
	}
}

// Create 创建短链
func (h *ShortLinkHandler) Create(c *gin.Context) {
	var req dto.CreateShortLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(bindingError(err))
		return
	}

	link, err := h.links.Create(c.Request.Context(), req)
	if err != nil {
		zap.L().Warn("Short link creation failed",
			zap.Error(err),
			zap.String("custom_code", req.CustomCode),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(dto.FromModel(link, time.Now()), "Short link created"))
}

// Retrieve 查询单条短链（不递增计数，过期记录带 expired 标记返回）
func (h *ShortLinkHandler) Retrieve(c *gin.Context) {
	link, err := h.links.Retrieve(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(dto.FromModel(link, time.Now()), "success"))
}

// Resolve 解析短码：递增访问计数并返回递增后的记录
func (h *ShortLinkHandler) Resolve(c *gin.Context) {
	link, err := h.redirect.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(dto.FromModel(link, time.Now()), "success"))
}

// Update 更新短链的目标地址
func (h *ShortLinkHandler) Update(c *gin.Context) {
	var req dto.UpdateShortLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	link, err := h.links.Update(c.Request.Context(), c.Param("code"), req.TargetURL)
	if err != nil {
		zap.L().Warn("Short link update failed",
			zap.Error(err),
			zap.String("short_code", c.Param("code")),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(dto.FromModel(link, time.Now()), "Short link updated"))
}

// Delete 删除短链，幂等，总是返回 204
func (h *ShortLinkHandler) Delete(c *gin.Context) {
	if err := h.links.Delete(c.Request.Context(), c.Param("code")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats 查询单条短链统计
func (h *ShortLinkHandler) Stats(c *gin.Context) {
	link, err := h.links.Stats(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(dto.FromModel(link, time.Now()), "success"))
}

// AggregateStats 全局统计
func (h *ShortLinkHandler) AggregateStats(c *gin.Context) {
	stats, err := h.links.AggregateStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(stats, "success"))
}

// List 分页查询短链列表
func (h *ShortLinkHandler) List(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "10")
	shortCode := c.Query("shortCode")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		_ = c.Error(apperrors.InvalidRequestError("page 必须为正整数"))
		return
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		_ = c.Error(apperrors.InvalidRequestError("size 必须为 1-100 之间的整数"))
		return
	}

	pageResp, err := h.links.List(c.Request.Context(), page, size, shortCode)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pageResp, "success"))
}

// RedirectToTarget 根路径重定向：解析短码并 302 跳转到目标地址
// 404/410 直接用状态码返回（浏览器访问，没有 JSON 消费方）
func (h *ShortLinkHandler) RedirectToTarget(c *gin.Context) {
	// 去掉前导 '/' 得到完整短码
	shortCode := c.Request.URL.Path[1:]

	link, err := h.redirect.Resolve(c.Request.Context(), shortCode)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			c.Status(appErr.Code)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusFound, link.TargetURL)
}

// bindingError 把 binding 失败映射为对应的参数错误
// customShortCode 校验失败单独映射为 InvalidCode
func bindingError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "CustomCode" {
				return apperrors.InvalidCodeError()
			}
		}
	}
	return apperrors.InvalidRequestErrorDefault()
}
