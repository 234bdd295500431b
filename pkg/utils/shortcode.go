package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Alphabet 生成短码使用的 62 个字符
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// GenerateShortCode 生成 length 位随机短码，字符均匀取自 62 进制字母表
// 本身不保证唯一性，冲突由调用方通过存储层的唯一约束反馈解决
func GenerateShortCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b.WriteByte(Alphabet[idx.Int64()])
	}
	return b.String(), nil
}
