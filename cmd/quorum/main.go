// =============================================================================
// Quorum 主入口
// =============================================================================
// 多 Provider LLM 客户端命令行
//
// 使用方法:
//
//	quorum chat -provider openai "Hello"     # 单次对话
//	quorum chat -provider claude -stream ... # 流式输出
//	quorum models [-provider gemini]         # 查看可用模型
//	quorum validate                          # 校验已设置的 API Key
//	quorum version                           # 显示版本信息
// =============================================================================

package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sapientpants/quorum-sub001/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "chat":
		return runChat(args[1:], stdout, stderr)
	case "models":
		return runModels(args[1:], stdout, stderr)
	case "validate":
		return runValidate(args[1:], stdout, stderr)
	case "version":
		printVersion(stdout)
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 2
	}
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Quorum %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Quorum - multi-provider LLM client

Usage:
  quorum <command> [options]

Commands:
  chat      Send a prompt to one provider
  models    List models and capabilities
  validate  Check every API key found in the environment
  version   Show version information
  help      Show this help message

Options for 'chat':
  -config <path>        Path to configuration file (YAML)
  -provider <id>        openai, anthropic (claude), gemini (google), grok (xai)
  -model <name>         Model, defaults to the provider default
  -stream               Print tokens as they arrive
  -system <text>        System prompt
  -temperature <t>      Sampling temperature
  -max-tokens <n>       Maximum answer tokens
  -metrics-addr <addr>  Serve Prometheus metrics while chatting

API keys are read from OPENAI_API_KEY, ANTHROPIC_API_KEY,
GEMINI_API_KEY and XAI_API_KEY.

Examples:
  quorum chat -provider openai "What is a monad?"
  quorum chat -provider claude -stream -system "Be terse" "Explain TCP"
  quorum models -provider gemini
  quorum validate`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Format == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
