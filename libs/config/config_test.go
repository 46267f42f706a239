package config

import "testing"

func TestInt(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	if got := Int("RATE_LIMIT_PER_MINUTE", 60); got != 30 {
		t.Fatalf("Int = %d, want 30", got)
	}
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	if got := Int("RATE_LIMIT_PER_MINUTE", 60); got != 60 {
		t.Fatalf("Int fallback = %d, want 60", got)
	}
}

func TestBool(t *testing.T) {
	if !Bool("RATE_LIMIT_FAIL_OPEN", true) {
		t.Fatal("unset key must use the fallback")
	}
	t.Setenv("RATE_LIMIT_FAIL_OPEN", "no")
	if Bool("RATE_LIMIT_FAIL_OPEN", true) {
		t.Fatal("explicit \"no\" must win over the fallback")
	}
	t.Setenv("RATE_LIMIT_FAIL_OPEN", "YES")
	if !Bool("RATE_LIMIT_FAIL_OPEN", false) {
		t.Fatal("\"YES\" must parse as true")
	}
}

func TestPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := Port("PORT", "8080"); err == nil {
		t.Fatal("out-of-range port must error")
	}
	t.Setenv("PORT", "")
	if v, err := Port("PORT", "8080"); err != nil || v != "8080" {
		t.Fatalf("Port = %q, %v", v, err)
	}
}
