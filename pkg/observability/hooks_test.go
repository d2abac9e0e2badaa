package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAdaptHooks{}
	a.OnAdaptStart(ctx, 3, 6)
	a.OnAdaptComplete(ctx, "solved", 2, 7, time.Second, nil)
	a.OnRankStart(ctx, 10)
	a.OnRankComplete(ctx, 10, time.Second, nil)
	a.OnDistance(ctx, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "adapt")
	c.OnCacheMiss(ctx, "rank")
	c.OnCacheSet(ctx, "distance", 1024)

	NoopServerHooks{}.OnRequest(ctx, "POST", "/v1/adapt", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Adapt().(NoopAdaptHooks); !ok {
		t.Error("Adapt() should return NoopAdaptHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	customAdapt := &testAdaptHooks{}
	SetAdaptHooks(customAdapt)
	if Adapt() != customAdapt {
		t.Error("SetAdaptHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	Reset()
	if _, ok := Adapt().(NoopAdaptHooks); !ok {
		t.Error("Reset() should restore NoopAdaptHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testAdaptHooks{}
	SetAdaptHooks(custom)
	SetAdaptHooks(nil)
	if Adapt() != custom {
		t.Error("SetAdaptHooks(nil) should be ignored")
	}
}

type testAdaptHooks struct{ NoopAdaptHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
