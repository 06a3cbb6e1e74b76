package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerInitialization(t *testing.T) {
	assert.NotNil(t, User, "User logger should not be nil after init")
	assert.NotNil(t, Op, "Op logger should not be nil after init")
}

func TestUnifiedLoggerInitialization(t *testing.T) {
	ul := GetLogger()
	require.NotNil(t, ul)
	assert.Same(t, ul, GetLogger(), "GetLogger should return the same instance")
}

func TestLoggerSetup(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		jsonLogs bool
		quiet    bool
		level    logrus.Level
	}{
		{"Default", false, false, false, logrus.InfoLevel},
		{"Verbose", true, false, false, logrus.DebugLevel},
		{"Quiet", false, false, true, logrus.ErrorLevel},
		{"JSON", false, true, false, logrus.InfoLevel},
		{"Verbose JSON", true, true, false, logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_MODE", "")
			t.Setenv("LOG_FORMAT", "")
			Setup(tt.verbose, tt.jsonLogs, tt.quiet)

			assert.NotNil(t, User)
			assert.NotNil(t, Op)
			assert.Equal(t, tt.level, GetLogger().GetInternalLogger().GetLevel())
		})
	}
}

func TestSetup_EnvironmentOverridesFlags(t *testing.T) {
	t.Setenv("LOG_MODE", "quiet")
	Setup(true, false, false)
	assert.Equal(t, logrus.ErrorLevel, GetLogger().GetInternalLogger().GetLevel())

	t.Setenv("LOG_MODE", "debug")
	Setup(false, false, true)
	assert.Equal(t, logrus.DebugLevel, GetLogger().GetInternalLogger().GetLevel())
}

func TestUserLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	testLogger := logrus.New()
	testLogger.SetOutput(&buf)
	testLogger.SetLevel(logrus.InfoLevel)

	userLogger := &UserLogger{logger: testLogger}

	userLogger.Info("test message")
	assert.Contains(t, buf.String(), "test message")

	buf.Reset()
	userLogger.Compilef("compiling %s", "Valid.wml")
	assert.Contains(t, buf.String(), "compiling Valid.wml")
}

func TestOpLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer

	testLogger := logrus.New()
	testLogger.SetOutput(&buf)
	testLogger.SetLevel(logrus.DebugLevel)

	opLogger := &OpLogger{logger: testLogger}
	opLogger.WithFields(map[string]interface{}{"task": "task1"}).Debug("renamed task")

	output := buf.String()
	assert.Contains(t, output, "renamed task")
	assert.Contains(t, output, "task=task1")
}

func TestOutputRouterHook_RoutesByLogType(t *testing.T) {
	var user, op bytes.Buffer

	hook := NewOutputRouterHook()
	hook.UserWriter = &user
	hook.OpWriter = &op

	testLogger := logrus.New()
	testLogger.SetOutput(&bytes.Buffer{})
	testLogger.AddHook(hook)

	(&UserLogger{logger: testLogger}).Success("compiled")
	(&OpLogger{logger: testLogger}).Info("loaded program")
	(&UserLogger{logger: testLogger}).Error("broken")
	(&UserLogger{logger: testLogger}).Successf("Wrote %s", "dags/nightly.star")

	assert.Contains(t, user.String(), "✅ compiled")
	assert.Contains(t, user.String(), "✅ Wrote dags/nightly.star")
	assert.NotContains(t, user.String(), "loaded program")
	assert.Contains(t, op.String(), "loaded program")
	assert.Contains(t, op.String(), "broken")
}

func TestCLIFormatter_SkipsInternalFields(t *testing.T) {
	f := &CLIFormatter{DisableTimestamp: true, DisableColors: true}
	entry := logrus.NewEntry(logrus.New())
	entry.Level = logrus.WarnLevel
	entry.Message = "skipped attribute"
	entry.Data = logrus.Fields{"log_type": "op", "emoji": "x", "attr": "owner"}

	b, err := f.Format(entry)
	require.NoError(t, err)

	line := string(b)
	assert.True(t, strings.HasPrefix(line, "WARNING: skipped attribute"))
	assert.Contains(t, line, "attr=owner")
	assert.NotContains(t, line, "log_type")
}
