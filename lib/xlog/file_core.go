package xlog

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	_ xLogCore       = (*fileCore)(nil)
	_ io.WriteCloser = (*appendLog)(nil)
)

type FileCoreConfig struct {
	FilePath string `json:"filePath" yaml:"filePath"`
	Filename string `json:"filename" yaml:"filename"`
}

// fileCore appends the entries to a single log file, the write syncer
// given by the options is ignored.
type fileCore struct {
	cfg *FileCoreConfig
}

func (fc *fileCore) build(
	lvlEnabler zapcore.LevelEnabler,
	encoder LogEncoderType,
	_ zapcore.WriteSyncer,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) (zapcore.Core, error) {
	w := &appendLog{
		filePath: fc.cfg.FilePath,
		filename: fc.cfg.Filename,
	}
	if err := w.openOrCreate(); err != nil {
		return nil, err
	}

	config := zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		EncodeLevel:   lvlEnc,
		TimeKey:       "ts",
		EncodeTime:    tsEnc,
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   "fn",
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
	core := zapcore.NewCore(getEncoderByType(encoder)(config), zapcore.Lock(w), lvlEnabler)
	runtime.SetFinalizer(w, func(w *appendLog) {
		_ = w.Close()
	})
	return core, nil
}

// appendLog is not thread-safe, the core locks it and the finalizer
// closes it.
type appendLog struct {
	filePath  string
	filename  string
	wroteSize uint64
	file      *os.File
}

func (log *appendLog) Write(p []byte) (n int, err error) {
	if log.file == nil {
		if err = log.openOrCreate(); err != nil {
			return 0, err
		}
	}
	n, err = log.file.Write(p)
	log.wroteSize += uint64(n)
	return n, err
}

func (log *appendLog) Sync() error {
	if log.file == nil {
		return nil
	}
	return log.file.Sync()
}

func (log *appendLog) Close() error {
	if log.file == nil {
		return nil
	}
	err := multierr.Combine(log.file.Sync(), log.file.Close())
	log.file = nil
	return err
}

func (log *appendLog) openOrCreate() error {
	if log.filePath == "" {
		log.filePath = os.TempDir()
	}
	if log.filename == "" {
		log.filename = filepath.Base(os.Args[0]) + "_xlog.log"
	}
	if err := os.MkdirAll(log.filePath, 0o755); err != nil {
		return infra.WrapErrorStackWithMessage(err, "unable to create log dir: "+log.filePath)
	}

	pathToLog := filepath.Join(log.filePath, log.filename)
	info, err := os.Stat(pathToLog)
	if err == nil && info.IsDir() {
		return infra.NewErrorStack("log file <" + pathToLog + "> is a dir")
	} else if err != nil && !os.IsNotExist(err) {
		return infra.WrapErrorStack(err)
	}

	f, err := os.OpenFile(pathToLog, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "unable to open log file: "+pathToLog)
	}
	log.file = f
	if info != nil {
		log.wroteSize = uint64(info.Size())
	}
	return nil
}
