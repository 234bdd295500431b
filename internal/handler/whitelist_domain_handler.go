package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shorturl-go/internal/apperrors"
	"shorturl-go/internal/dto"
	"shorturl-go/internal/service"
	"shorturl-go/response"
)

// CreateWhitelistDomainHandler 创建白名单域名
func CreateWhitelistDomainHandler(c *gin.Context) {
	var req dto.CreateWhitelistDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	if err := service.CreateWhitelistDomain(c.Request.Context(), req.Domain); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(struct{}{}, "白名单域名已创建"))
}

// ListWhitelistDomainsHandler 分页查询白名单列表
func ListWhitelistDomainsHandler(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "10")
	domain := c.Query("domain")

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

	pageResp, err := service.ListWhitelistDomains(c.Request.Context(), page, size, domain)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pageResp, "success"))
}

// DeleteWhitelistDomainHandler 删除白名单域名
func DeleteWhitelistDomainHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		_ = c.Error(apperrors.InvalidRequestError("无效的 ID"))
		return
	}

	if err := service.DeleteWhitelistDomain(c.Request.Context(), uint(id)); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(struct{}{}, "白名单域名已删除"))
}
