package logger

import "testing"

func TestBuild(t *testing.T) {
	for _, env := range []string{"production", "test", "development", ""} {
		l, err := build(env)
		if err != nil {
			t.Fatalf("build(%q) returned error: %v", env, err)
		}
		if l == nil {
			t.Fatalf("build(%q) returned nil logger", env)
		}
	}
}

func TestGetInitialisesLogger(t *testing.T) {
	if Get() == nil {
		t.Fatal("expected non-nil logger")
	}
	Sync()
}
