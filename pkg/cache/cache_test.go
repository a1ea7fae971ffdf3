package cache

import (
	"errors"
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := NewCache()

	c.Set("key", "value", time.Minute)

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("Expected key to be present")
	}
	if got != "value" {
		t.Errorf("Expected value, got %v", got)
	}
}

func TestExpiration(t *testing.T) {
	c := NewCache()

	c.Set("key", "value", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Error("Expected expired key to be absent")
	}
}

func TestDelete(t *testing.T) {
	c := NewCache()

	c.Set("key", "value", time.Minute)
	c.Delete("key")

	if _, ok := c.Get("key"); ok {
		t.Error("Expected deleted key to be absent")
	}
}

func TestGetOrLoad(t *testing.T) {
	c := NewCache()
	calls := 0

	load := func() (interface{}, error) {
		calls++
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrLoad("key", time.Minute, load)
		if err != nil {
			t.Fatalf("GetOrLoad returned %v", err)
		}
		if got != "loaded" {
			t.Errorf("Expected loaded, got %v", got)
		}
	}

	if calls != 1 {
		t.Errorf("Expected loader to run once, ran %d times", calls)
	}
}

func TestGetOrLoadPropagatesError(t *testing.T) {
	c := NewCache()
	wantErr := errors.New("load failed")

	_, err := c.GetOrLoad("key", time.Minute, func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected load error, got %v", err)
	}

	// Failed loads are not cached
	if _, ok := c.Get("key"); ok {
		t.Error("Expected failed load to leave no entry")
	}
}
