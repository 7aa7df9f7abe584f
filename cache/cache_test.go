package cache

import (
	"testing"
	"time"

	"github.com/reissbruno/monitoramento-processual-tjsp/models"
)

func success() *models.FetchResult {
	return models.NewSuccessResult(time.Now(), []models.Movement{{DateTime: "01/01/2024"}})
}

func TestKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1000000-00.2024.8.26.0100", "10000000020248260100"},
		{" 10000000020248260100 ", "10000000020248260100"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCache_GetSet(t *testing.T) {
	c := New(10)
	defer c.Close()

	r := success()
	c.Set("k", r)

	got, hit := c.Get("k", 60_000)
	if !hit || got != r {
		t.Fatalf("Get = %v, %v; want cached result", got, hit)
	}

	if _, hit := c.Get("k", 0); hit {
		t.Error("maxAge 0 must bypass the cache")
	}
	if _, hit := c.Get("missing", 60_000); hit {
		t.Error("unexpected hit for missing key")
	}
}

func TestCache_MaxAge(t *testing.T) {
	c := New(10)
	defer c.Close()

	c.Set("k", success())
	c.store["k"].createdAt = time.Now().Add(-2 * time.Second)

	if _, hit := c.Get("k", 1000); hit {
		t.Error("entry older than maxAge should miss")
	}
	if _, hit := c.Get("k", 5000); !hit {
		t.Error("entry younger than maxAge should hit")
	}
}

func TestCache_IgnoresErrors(t *testing.T) {
	c := New(10)
	defer c.Close()

	c.Set("k", models.NewErrorResult(models.CodeInternal, models.MsgInternal, nil))
	c.Set("nil", nil)
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestCache_Capacity(t *testing.T) {
	c := New(2)
	defer c.Close()

	c.Set("a", success())
	c.Set("b", success())
	c.Set("b", success())
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	c.Set("c", success())
	if c.Len() != 2 {
		t.Errorf("Len = %d after eviction, want 2", c.Len())
	}
	if _, hit := c.Get("c", 60_000); !hit {
		t.Error("newest entry should be present")
	}
}

func TestCache_EvictExpired(t *testing.T) {
	c := New(10)
	defer c.Close()

	c.Set("old", success())
	c.Set("new", success())
	c.store["old"].createdAt = time.Now().Add(-2 * time.Hour)

	c.evictExpired(time.Now())

	if _, ok := c.store["old"]; ok {
		t.Error("expired entry not evicted")
	}
	if _, ok := c.store["new"]; !ok {
		t.Error("fresh entry evicted")
	}
}
