package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type LoggerTestSuite struct {
	suite.Suite
	originalLogger *zap.Logger
	observedLogs   *observer.ObservedLogs
}

func (suite *LoggerTestSuite) SetupSuite() {
	suite.originalLogger = zap.L()
}

func (suite *LoggerTestSuite) TearDownSuite() {
	zap.ReplaceGlobals(suite.originalLogger)
}

func (suite *LoggerTestSuite) SetupTest() {
	core, logs := observer.New(zap.DebugLevel)
	suite.observedLogs = logs
	zap.ReplaceGlobals(zap.New(core))
}

func (suite *LoggerTestSuite) TestGetLogLevelFromString() {
	testCases := []struct {
		name     string
		input    string
		expected zapcore.Level
	}{
		{"debug lowercase", "debug", zapcore.DebugLevel},
		{"info mixed case", "Info", zapcore.InfoLevel},
		{"warn uppercase", "WARN", zapcore.WarnLevel},
		{"error short", "err", zapcore.ErrorLevel},
		{"warning full", "warning", zapcore.WarnLevel},
		{"dpanic", "dpanic", zapcore.DPanicLevel},
		{"fatal", "fatal", zapcore.FatalLevel},
		{"with whitespace", "  debug\t", zapcore.DebugLevel},
		{"empty string", "", zapcore.InfoLevel},
		{"unknown", "verbose", zapcore.InfoLevel},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			assert.Equal(suite.T(), tc.expected, getLogLevelFromString(tc.input))
		})
	}
}

func (suite *LoggerTestSuite) TestInit() {
	configs := []*Config{
		{Level: "info", Env: "test", ServiceName: "caisse"},
		{Level: "debug", Env: "development", ServiceName: "caisse", Encoding: "console"},
		{},
	}

	for _, cfg := range configs {
		require.NotPanics(suite.T(), func() {
			Init(cfg)
			LogInfo("after init")
		})
		assert.NotNil(suite.T(), zap.L())
	}
}

func (suite *LoggerTestSuite) TestLoggingFunctions() {
	testCases := []struct {
		name    string
		logFunc func()
		level   zapcore.Level
		message string
	}{
		{"LogDebug", func() { LogDebug("debug message") }, zapcore.DebugLevel, "debug message"},
		{"LogInfo", func() { LogInfo("info message") }, zapcore.InfoLevel, "info message"},
		{"LogWarn", func() { LogWarn("warn message") }, zapcore.WarnLevel, "warn message"},
		{"LogError", func() { LogError("error message") }, zapcore.ErrorLevel, "error message"},
		{"LogInfof with args", func() { LogInfof("cashier %s logged in with ID %d", "awa", 7) }, zapcore.InfoLevel, "cashier awa logged in with ID 7"},
		{"LogWarnf without args", func() { LogWarnf("plain message") }, zapcore.WarnLevel, "plain message"},
		{"LogErrorf with args", func() { LogErrorf("refresh failed: %v", "timeout") }, zapcore.ErrorLevel, "refresh failed: timeout"},
		{"LogDebugf with args", func() { LogDebugf("page %d", 2) }, zapcore.DebugLevel, "page 2"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.observedLogs.TakeAll()

			tc.logFunc()

			logs := suite.observedLogs.All()
			require.Len(suite.T(), logs, 1)
			assert.Equal(suite.T(), tc.level, logs[0].Level)
			assert.Equal(suite.T(), tc.message, logs[0].Message)
		})
	}
}

func (suite *LoggerTestSuite) TestNamedLoggerKeepsFields() {
	Named("gateway").Info("request sent", zap.String("path", "user"), zap.Int("status", 200))

	logs := suite.observedLogs.All()
	require.Len(suite.T(), logs, 1)
	assert.Equal(suite.T(), "gateway", logs[0].LoggerName)
	assert.Equal(suite.T(), map[string]interface{}{"path": "user", "status": int64(200)}, logs[0].ContextMap())
}

func TestLoggerTestSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func BenchmarkLogInfo(b *testing.B) {
	Init(&Config{Level: "error", Env: "benchmark", ServiceName: "bench"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LogInfo("benchmark message")
	}
}
