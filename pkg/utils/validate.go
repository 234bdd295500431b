package utils

import (
	"fmt"
	"net/url"
	"regexp"
)

const (
	MinShortCodeLength = 3
	MaxShortCodeLength = 20
	MaxTargetURLLength = 2048
)

// 自定义短码允许的字符集：生成器字母表的超集（额外允许连字符和下划线）
var shortCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateShortCode 校验自定义短码是否合法（3-20 个字符，[A-Za-z0-9_-]）
func ValidateShortCode(shortCode string) error {
	if len(shortCode) < MinShortCodeLength || len(shortCode) > MaxShortCodeLength {
		return fmt.Errorf("error.shortcode_length")
	}

	if !shortCodePattern.MatchString(shortCode) {
		return fmt.Errorf("error.shortcode_invalid")
	}

	return nil
}

// ValidateTargetURL 校验目标 URL 的合法性
func ValidateTargetURL(targetURL string) error {
	// 1. 检查目标 URL 是否为空
	if targetURL == "" {
		return fmt.Errorf("error.target_url_required")
	}

	// 2. URL 长度限制
	if len(targetURL) > MaxTargetURLLength {
		return fmt.Errorf("error.target_url_max_length")
	}

	// 3. 必须是带 scheme 和 host 的绝对 URL
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return fmt.Errorf("error.target_url_invalid")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("error.target_url_invalid")
	}

	return nil
}
