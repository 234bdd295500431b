package i18n

import (
	"context"
	"testing"

	thirdPartyI18n "github.com/nicksnyder/go-i18n/v2/i18n"
)

func newTestBundle(t *testing.T) *thirdPartyI18n.Bundle {
	t.Helper()
	bundle, err := InitI18n([]string{"../../i18n/en.toml", "../../i18n/zh.toml"}, "en")
	if err != nil {
		t.Fatalf("InitI18n failed: %v", err)
	}
	return bundle
}

func TestInitI18nRegistersLanguages(t *testing.T) {
	newTestBundle(t)

	if len(SupportedLanguages) != 2 {
		t.Fatalf("expected 2 supported languages, got %v", SupportedLanguages)
	}
	if SupportedLanguages[0] != "en" || SupportedLanguages[1] != "zh" {
		t.Fatalf("unexpected supported languages: %v", SupportedLanguages)
	}
}

func TestLocalize(t *testing.T) {
	bundle := newTestBundle(t)
	localizer := thirdPartyI18n.NewLocalizer(bundle, "en")
	ctx := context.WithValue(context.Background(), "i18n.Localizer", localizer)

	if got := Localize(ctx, "error.not_found"); got != "Short URL not found" {
		t.Fatalf("unexpected message: %q", got)
	}
	// 缺失的消息键返回空串而不是 panic
	if got := Localize(ctx, "error.no_such_key"); got != "" {
		t.Fatalf("expected empty string for missing key, got %q", got)
	}
	// 上下文里没有 Localizer 时同样兜底为空串
	if got := Localize(context.Background(), "error.not_found"); got != "" {
		t.Fatalf("expected empty string without a localizer, got %q", got)
	}
}
