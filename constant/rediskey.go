package constant

import "fmt"

// Redis 键模板
const (
	BasePrefix = "shorturl:"

	// 短码 → 记录元数据缓存（JSON），命中空串表示负缓存
	ShortCodeKey = BasePrefix + "code:%s"
)

const (
	// CacheTTLSeconds 记录缓存时长（带过期时间的链接会截短到剩余有效期）
	CacheTTLSeconds = 3600
	// NegativeCacheTTLSeconds 负缓存时长，防止缓存穿透
	NegativeCacheTTLSeconds = 300
)

// GetShortCodeKey 生成 shortCode 缓存键
func GetShortCodeKey(shortCode string) string {
	return fmt.Sprintf(ShortCodeKey, shortCode)
}
