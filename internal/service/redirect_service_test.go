package service

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gomodule/redigo/redis"

	"shorturl-go/constant"
	"shorturl-go/internal/dto"
)

// fakeRedisStore 是进程内键值存储，多个连接共享同一份数据，模拟单实例 Redis
type fakeRedisStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *fakeRedisStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

type fakeRedisConn struct {
	store *fakeRedisStore
}

func (c *fakeRedisConn) Close() error { return nil }
func (c *fakeRedisConn) Err() error   { return nil }

func (c *fakeRedisConn) Do(command string, args ...interface{}) (interface{}, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	switch strings.ToUpper(command) {
	case "GET":
		value, ok := c.store.data[args[0].(string)]
		if !ok {
			return nil, nil
		}
		return value, nil
	case "SET":
		var value []byte
		switch v := args[1].(type) {
		case string:
			value = []byte(v)
		case []byte:
			value = v
		}
		c.store.data[args[0].(string)] = value
		return "OK", nil
	case "DEL":
		delete(c.store.data, args[0].(string))
		return int64(1), nil
	}
	return nil, nil
}

func (c *fakeRedisConn) Send(string, ...interface{}) error { return nil }
func (c *fakeRedisConn) Flush() error                      { return nil }
func (c *fakeRedisConn) Receive() (interface{}, error)     { return nil, nil }

func newFakeRedisPool() (*redis.Pool, *fakeRedisStore) {
	store := &fakeRedisStore{data: make(map[string][]byte)}
	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return &fakeRedisConn{store: store}, nil
		},
	}
	return pool, store
}

// 未命中的解析会写负缓存，随后创建同名短码必须把残留的负缓存清掉，
// 否则新链接在负缓存过期前一直解析 404
func TestCreateClearsStaleNegativeCache(t *testing.T) {
	repo := newTestRepo(t)
	pool, store := newFakeRedisPool()
	links := NewLinkService(repo, pool, 6, false)
	redirect := NewRedirectService(repo, pool)
	ctx := context.Background()

	_, err := redirect.Resolve(ctx, "abc")
	if code := appErrorCode(t, err); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", code)
	}
	if !store.has(constant.GetShortCodeKey("abc")) {
		t.Fatal("expected a negative cache entry after a failed resolve")
	}

	if _, err := links.Create(ctx, dto.CreateShortLinkRequest{
		TargetURL:  "https://example.com",
		CustomCode: "abc",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if store.has(constant.GetShortCodeKey("abc")) {
		t.Fatal("expected Create to invalidate the stale cache entry")
	}

	link, err := redirect.Resolve(ctx, "abc")
	if err != nil {
		t.Fatalf("Resolve after Create failed: %v", err)
	}
	if link.TargetURL != "https://example.com" {
		t.Fatalf("unexpected target URL: %s", link.TargetURL)
	}
	if link.AccessCount != 1 {
		t.Fatalf("expected access count 1, got %d", link.AccessCount)
	}
}

// 生成短码的创建路径同样要清缓存
func TestCreateGeneratedCodeClearsStaleNegativeCache(t *testing.T) {
	repo := newTestRepo(t)
	pool, store := newFakeRedisPool()
	links := NewLinkService(repo, pool, 6, false)
	links.generate = func(int) (string, error) { return "AAAAAA", nil }
	redirect := NewRedirectService(repo, pool)
	ctx := context.Background()

	if _, err := redirect.Resolve(ctx, "AAAAAA"); err == nil {
		t.Fatal("expected resolve of unknown code to fail")
	}
	if !store.has(constant.GetShortCodeKey("AAAAAA")) {
		t.Fatal("expected a negative cache entry after a failed resolve")
	}

	if _, err := links.Create(ctx, dto.CreateShortLinkRequest{TargetURL: "https://example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	link, err := redirect.Resolve(ctx, "AAAAAA")
	if err != nil {
		t.Fatalf("Resolve after Create failed: %v", err)
	}
	if link.AccessCount != 1 {
		t.Fatalf("expected access count 1, got %d", link.AccessCount)
	}
}

// 缓存命中省掉的是读查询，计数递增仍然走数据库
func TestResolveCacheHitStillCounts(t *testing.T) {
	repo := newTestRepo(t)
	pool, store := newFakeRedisPool()
	links := NewLinkService(repo, pool, 6, false)
	redirect := NewRedirectService(repo, pool)
	ctx := context.Background()

	created, err := links.Create(ctx, dto.CreateShortLinkRequest{TargetURL: "https://example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, err := redirect.Resolve(ctx, created.ShortCode)
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	if first.AccessCount != 1 {
		t.Fatalf("expected access count 1, got %d", first.AccessCount)
	}
	if !store.has(constant.GetShortCodeKey(created.ShortCode)) {
		t.Fatal("expected the record to be cached after a database hit")
	}

	second, err := redirect.Resolve(ctx, created.ShortCode)
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if second.AccessCount != 2 {
		t.Fatalf("expected access count 2, got %d", second.AccessCount)
	}
}

func TestUpdateInvalidatesCache(t *testing.T) {
	repo := newTestRepo(t)
	pool, _ := newFakeRedisPool()
	links := NewLinkService(repo, pool, 6, false)
	redirect := NewRedirectService(repo, pool)
	ctx := context.Background()

	if _, err := links.Create(ctx, dto.CreateShortLinkRequest{
		TargetURL:  "https://old.example.com",
		CustomCode: "news",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := redirect.Resolve(ctx, "news"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if _, err := links.Update(ctx, "news", "https://new.example.com"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	link, err := redirect.Resolve(ctx, "news")
	if err != nil {
		t.Fatalf("Resolve after Update failed: %v", err)
	}
	if link.TargetURL != "https://new.example.com" {
		t.Fatalf("expected updated target URL, got %s", link.TargetURL)
	}
}

func TestDeleteInvalidatesCache(t *testing.T) {
	repo := newTestRepo(t)
	pool, _ := newFakeRedisPool()
	links := NewLinkService(repo, pool, 6, false)
	redirect := NewRedirectService(repo, pool)
	ctx := context.Background()

	if _, err := links.Create(ctx, dto.CreateShortLinkRequest{
		TargetURL:  "https://example.com",
		CustomCode: "gone",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := redirect.Resolve(ctx, "gone"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if err := links.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := redirect.Resolve(ctx, "gone")
	if code := appErrorCode(t, err); code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", code)
	}
}
