package handler

import (
	"testing"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/formatter"
)

func TestUserSinkInvokesFunc(t *testing.T) {
	var gotLevel core.Level
	var gotMsg string
	var gotBytes []byte
	sink, err := NewUserSink(UserConfig{
		TemplateCfg: formatter.Config{Template: "{level}:{message}"},
		Fn: func(level core.Level, message string, fields []core.Field, md *core.Metadata, rendered []byte) error {
			gotLevel, gotMsg, gotBytes = level, message, rendered
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteStructured(core.WarnLevel, "uh oh", nil, nil); err != nil {
		t.Fatal(err)
	}
	if gotLevel != core.WarnLevel || gotMsg != "uh oh" || string(gotBytes) != "WARN:uh oh" {
		t.Fatalf("got level=%v msg=%q bytes=%q", gotLevel, gotMsg, gotBytes)
	}
}

func TestUserSinkLevelGate(t *testing.T) {
	called := false
	sink, err := NewUserSink(UserConfig{
		MinLevel: core.ErrorLevel,
		Fn: func(level core.Level, message string, fields []core.Field, md *core.Metadata, rendered []byte) error {
			called = true
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteStructured(core.InfoLevel, "skip", nil, nil); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Fatal("expected Fn not to be called below min level")
	}
}

func TestUserSinkRequiresFunc(t *testing.T) {
	if _, err := NewUserSink(UserConfig{}); err == nil {
		t.Fatal("expected error when Fn is nil")
	}
}
