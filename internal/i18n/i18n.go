package i18n

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// SupportedLanguages 是手动维护的支持语言列表
var SupportedLanguages []string

// InitI18n 初始化 i18n 包（加载 TOML 消息文件）
func InitI18n(filePaths []string, defaultLang string) (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.MustParse(defaultLang))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	SupportedLanguages = make([]string, 0)

	for _, filePath := range filePaths {
		file, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}

		// 解析文件名中的语言标签（如 en.toml -> "en"）
		lang := extractLanguageFromPath(filePath)
		SupportedLanguages = append(SupportedLanguages, lang)

		_, err = bundle.ParseMessageFileBytes(file, filePath)
		if err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

func extractLanguageFromPath(filePath string) string {
	baseName := filepath.Base(filePath)
	return strings.TrimSuffix(baseName, filepath.Ext(baseName))
}

// Localize 用上下文里的 Localizer 翻译消息键。
// 上下文里没有 Localizer 或消息键缺失时返回空串，由调用方决定兜底文案。
func Localize(ctx context.Context, key string) string {
	localizer, ok := ctx.Value("i18n.Localizer").(*i18n.Localizer)
	if !ok {
		return ""
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return ""
	}
	return msg
}
