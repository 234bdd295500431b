package limiter

import (
	"sync"
	"testing"
	"time"
)

func TestAllowRejectsSixthRequest(t *testing.T) {
	l := New(5, 60*time.Second)

	for i := 0; i < 5; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("sixth request within the window should be rejected")
	}
}

func TestAllowResetsAfterWindow(t *testing.T) {
	now := time.Now()
	l := New(5, 60*time.Second)
	l.nowFunc = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		l.Allow("1.2.3.4")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("sixth request should be rejected")
	}

	// 时间推进到窗口之外
	now = now.Add(61 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Error("request after the window elapsed should be admitted")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New(1, 60*time.Second)

	if !l.Allow("a") {
		t.Fatal("first request for key a should be admitted")
	}
	if l.Allow("a") {
		t.Error("second request for key a should be rejected")
	}
	if !l.Allow("b") {
		t.Error("first request for key b should be admitted")
	}
}

func TestAllowConcurrentAdmitsExactlyMax(t *testing.T) {
	const max = 5
	const attempts = 50
	l := New(max, 60*time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("same-client") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != max {
		t.Errorf("expected exactly %d admitted requests, got %d", max, admitted)
	}
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	now := time.Now()
	l := New(5, 60*time.Second)
	l.nowFunc = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	now = now.Add(30 * time.Second)
	l.Allow("c") // 窗口过期时间比 a、b 晚 30 秒

	now = now.Add(45 * time.Second) // a、b 已过期，c 还在窗口内
	if removed := l.Sweep(); removed != 2 {
		t.Errorf("expected 2 swept entries, got %d", removed)
	}
	if l.Size() != 1 {
		t.Errorf("expected 1 remaining entry, got %d", l.Size())
	}
}
