package handler

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nexlog-go/nexlog/core"
	"github.com/nexlog-go/nexlog/errs"
	"github.com/nexlog-go/nexlog/formatter"
	"github.com/nexlog-go/nexlog/ringbuffer"
)

// RotationMode selects which condition(s) trigger file rotation (§4.C).
type RotationMode uint8

const (
	RotationSize RotationMode = iota
	RotationTime
	RotationBoth
)

// FileConfig configures a FileSink.
type FileConfig struct {
	Path     string
	MinLevel core.Level

	// BufferSize is the ring buffer's capacity in bytes (default 4096).
	BufferSize int
	// FlushThresholdPct flushes once the buffer crosses this occupancy
	// percentage (default 50, i.e. half-full).
	FlushThresholdPct int
	// FlushInterval flushes if this much wall-clock time has elapsed
	// since the last flush, even under the threshold (default 5s).
	FlushInterval time.Duration

	RotationMode     RotationMode
	MaxSize          int64
	RotationInterval time.Duration
	MaxRotatedFiles  int
	Compress         bool

	TemplateCfg  formatter.Config
	CustomFields map[string]formatter.CustomHandlerFunc
	ErrorHandler errs.ErrorHandler
}

// FileSink writes log entries to a file with rotation support,
// staging writes through a circular buffer (§4.A, §4.C).
type FileSink struct {
	mu   sync.Mutex
	path string
	file *os.File
	buf  *ringbuffer.Buffer
	tpl  *formatter.Template
	level core.Level

	flushThresholdPct int
	flushInterval     time.Duration
	lastFlush         time.Time

	rotMode     RotationMode
	maxSize     int64
	rotInterval time.Duration
	maxRotated  int
	compress    bool

	currentSize  int64
	lastRotation time.Time

	errH errs.ErrorHandler
}

// NewFileSink opens (creating if necessary) the file at cfg.Path and
// returns a ready FileSink.
func NewFileSink(cfg FileConfig) (*FileSink, error) {
	if cfg.Path == "" {
		return nil, errs.New(errs.KindConfig, "file sink requires a path")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4096
	}
	if cfg.FlushThresholdPct <= 0 {
		cfg.FlushThresholdPct = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.MaxRotatedFiles <= 0 {
		cfg.MaxRotatedFiles = 5
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.Wrap(errs.KindIO, "create log directory", err)
		}
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "open log file", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.KindIO, "stat log file", err)
	}

	tplCfg := cfg.TemplateCfg
	if tplCfg.Template == "" {
		tplCfg.Template = formatter.DefaultFileTemplate
	}
	tplCfg.UseColor = false // file output never carries ANSI (§9, open question c)
	tpl, err := formatter.Compile(tplCfg, cfg.CustomFields)
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.KindConfig, "compile file template", err)
	}

	return &FileSink{
		path:              cfg.Path,
		file:              f,
		buf:               ringbuffer.New(cfg.BufferSize),
		tpl:               tpl,
		level:             cfg.MinLevel,
		flushThresholdPct: cfg.FlushThresholdPct,
		flushInterval:     cfg.FlushInterval,
		lastFlush:         time.Now(),
		rotMode:           cfg.RotationMode,
		maxSize:           cfg.MaxSize,
		rotInterval:       cfg.RotationInterval,
		maxRotated:        cfg.MaxRotatedFiles,
		compress:          cfg.Compress,
		currentSize:       info.Size(),
		lastRotation:      time.Now(),
		errH:              cfg.ErrorHandler,
	}, nil
}

func (s *FileSink) Kind() Kind          { return KindFile }
func (s *FileSink) MinLevel() core.Level { return s.level }

func (s *FileSink) WriteStructured(level core.Level, message string, fields []core.Field, md *core.Metadata) error {
	if level < s.level {
		return nil
	}
	b, err := s.tpl.Render(level, message, md)
	if err != nil {
		return errs.Wrap(errs.KindConfig, "render file template", err)
	}
	return s.WritePreformatted(append(b, '\n'))
}

func (s *FileSink) WritePreformatted(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.buf.Write(b); err != nil {
		// Proactively flush under pressure and retry once (§4.A/§4.C).
		if flushErr := s.flushLocked(); flushErr != nil {
			return flushErr
		}
		if _, err := s.buf.Write(b); err != nil {
			s.report(errs.KindIO, fmt.Sprintf("buffer write after flush: %v", err))
			return errs.Wrap(errs.KindIO, "file sink buffer write", err)
		}
	}

	if s.shouldFlushLocked() {
		return s.flushLocked()
	}
	return nil
}

func (s *FileSink) shouldFlushLocked() bool {
	occ := s.buf.Occupancy()
	capacity := s.buf.Cap()
	if capacity > 0 && occ*100/capacity >= s.flushThresholdPct {
		return true
	}
	return time.Since(s.lastFlush) >= s.flushInterval
}

// Flush drains the staging buffer into the file with a single writeAll
// per contiguous segment, syncs, and checks rotation (§4.C).
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *FileSink) flushLocked() error {
	first, second := s.buf.Segments()
	if len(first) == 0 && len(second) == 0 {
		s.lastFlush = time.Now()
		return s.checkRotationLocked()
	}

	var written int64
	if len(first) > 0 {
		n, err := writeAll(s.file, first)
		written += int64(n)
		if err != nil {
			s.report(errs.KindIO, fmt.Sprintf("file write: %v", err))
			return errs.Wrap(errs.KindIO, "file sink flush", err)
		}
	}
	if len(second) > 0 {
		n, err := writeAll(s.file, second)
		written += int64(n)
		if err != nil {
			s.report(errs.KindIO, fmt.Sprintf("file write: %v", err))
			return errs.Wrap(errs.KindIO, "file sink flush", err)
		}
	}
	if err := s.file.Sync(); err != nil {
		s.report(errs.KindIO, fmt.Sprintf("file sync: %v", err))
		return errs.Wrap(errs.KindIO, "file sink sync", err)
	}

	s.buf.Drain()
	s.currentSize += written
	s.lastFlush = time.Now()

	return s.checkRotationLocked()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeAll(w io.Writer, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := w.Write(p[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *FileSink) checkRotationLocked() error {
	needRotate := false
	switch s.rotMode {
	case RotationSize:
		needRotate = s.maxSize > 0 && s.currentSize >= s.maxSize
	case RotationTime:
		needRotate = s.rotInterval > 0 && time.Since(s.lastRotation) >= s.rotInterval
	case RotationBoth:
		needRotate = (s.maxSize > 0 && s.currentSize >= s.maxSize) ||
			(s.rotInterval > 0 && time.Since(s.lastRotation) >= s.rotInterval)
	}
	if !needRotate {
		return nil
	}
	return s.rotateLocked()
}

// rotateLocked implements §4.C's rotation steps. The caller holds s.mu
// and has already flushed (drain-before-rotate).
func (s *FileSink) rotateLocked() error {
	if err := s.file.Close(); err != nil {
		s.report(errs.KindIO, fmt.Sprintf("close before rotation: %v", err))
		return errs.Wrap(errs.KindIO, "rotation close", err)
	}
	s.file = nil

	// Shift path.(i-1) -> path.i from the top down, dropping the oldest
	// surviving backup (index maxRotated-1) so that at most maxRotated
	// backups plus the active file exist on disk (§8 scenario 6).
	top := fmt.Sprintf("%s.%d", s.path, s.maxRotated-1)
	if _, err := os.Stat(top); err == nil {
		os.Remove(top)
	}
	if gz := top + ".gz"; fileExists(gz) {
		os.Remove(gz)
	}
	for i := s.maxRotated - 1; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", s.path, i-1)
		dst := fmt.Sprintf("%s.%d", s.path, i)
		if _, err := os.Stat(src); err == nil {
			os.Rename(src, dst)
			continue
		}
		gsrc := src + ".gz"
		gdst := dst + ".gz"
		if _, err := os.Stat(gsrc); err == nil {
			os.Rename(gsrc, gdst)
		}
	}

	// Stage the previous active file into path.0 via a .tmp sidecar;
	// fall back to a direct rename if the sidecar step fails (§9,
	// open question b).
	tmp := s.path + ".tmp"
	dest := s.path + ".0"
	if err := os.Rename(s.path, tmp); err == nil {
		if err := os.Rename(tmp, dest); err != nil {
			s.report(errs.KindIO, fmt.Sprintf("sidecar rename to .0: %v", err))
			os.Rename(tmp, dest)
		}
	} else if err := os.Rename(s.path, dest); err != nil {
		s.report(errs.KindIO, fmt.Sprintf("direct rename to .0: %v", err))
	}

	if s.compress {
		if err := compressFile(dest); err != nil {
			s.report(errs.KindIO, fmt.Sprintf("compress rotated file: %v", err))
			// Non-fatal: keep dest uncompressed (§4.C step 4).
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errs.Wrap(errs.KindIO, "open fresh log file after rotation", err)
	}
	s.file = f
	s.currentSize = 0
	s.lastRotation = time.Now()
	return nil
}

// compressFile gzips src to src+".gz.tmp", renames atomically to
// src+".gz", then removes the uncompressed src.
func compressFile(src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmpDst := src + ".gz.tmp"
	out, err := os.Create(tmpDst)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		os.Remove(tmpDst)
		return err
	}
	if err := gz.Close(); err != nil {
		out.Close()
		os.Remove(tmpDst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpDst)
		return err
	}

	finalDst := src + ".gz"
	if err := os.Rename(tmpDst, finalDst); err != nil {
		os.Remove(tmpDst)
		return err
	}
	return os.Remove(src)
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushLocked(); err != nil {
		if s.file != nil {
			s.file.Close()
		}
		return err
	}
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *FileSink) report(kind errs.Kind, msg string) {
	if s.errH == nil {
		return
	}
	file, line, _ := core.GetCaller(2)
	s.errH.HandleError(errs.ErrorContext{Kind: kind, Message: msg, File: file, Line: line, Timestamp: time.Now()})
}
