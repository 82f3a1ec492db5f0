package handler

import (
	"sync"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/errs"
	"github.com/nexlog-go/nexlog/formatter"
)

// UserFunc receives a fully rendered record. It is the extension point
// for destinations nexlog doesn't ship a sink for (metrics pipes,
// test spies, in-memory ring buffers for a UI).
type UserFunc func(level core.Level, message string, fields []core.Field, md *core.Metadata, rendered []byte) error

// UserConfig configures a UserSink.
type UserConfig struct {
	MinLevel core.Level
	Fn       UserFunc
	// TemplateCfg renders the bytes passed to Fn for WriteStructured
	// calls; WritePreformatted bypasses it entirely.
	TemplateCfg  formatter.Config
	CustomFields map[string]formatter.CustomHandlerFunc
}

// UserSink adapts an arbitrary UserFunc to the Sink contract (§4.C).
type UserSink struct {
	mu    sync.Mutex
	fn    UserFunc
	tpl   *formatter.Template
	level core.Level
}

// NewUserSink builds a UserSink around fn.
func NewUserSink(cfg UserConfig) (*UserSink, error) {
	if cfg.Fn == nil {
		return nil, errs.New(errs.KindConfig, "user sink requires a function")
	}
	tplCfg := cfg.TemplateCfg
	if tplCfg.Template == "" {
		tplCfg.Template = formatter.DefaultConsoleTemplate
	}
	tpl, err := formatter.Compile(tplCfg, cfg.CustomFields)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "compile user sink template", err)
	}
	return &UserSink{fn: cfg.Fn, tpl: tpl, level: cfg.MinLevel}, nil
}

func (s *UserSink) Kind() Kind           { return KindUser }
func (s *UserSink) MinLevel() core.Level { return s.level }

func (s *UserSink) WriteStructured(level core.Level, message string, fields []core.Field, md *core.Metadata) error {
	if level < s.level {
		return nil
	}
	s.mu.Lock()
	b, err := s.tpl.Render(level, message, md)
	s.mu.Unlock()
	if err != nil {
		return errs.Wrap(errs.KindConfig, "render user sink template", err)
	}
	return s.fn(level, message, fields, md, b)
}

func (s *UserSink) WritePreformatted(b []byte) error {
	return s.fn(core.InfoLevel, "", nil, nil, b)
}

func (s *UserSink) Flush() error { return nil }
func (s *UserSink) Close() error { return nil }
