package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

const (
	UserIDKey    = "userID"
	RequestIDKey = "requestID"
)

type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	UserID    *string                `json:"user_id,omitempty"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

type Logger struct {
	mu     sync.Mutex
	output io.Writer
	color  bool
}

var globalLogger *Logger

func New(output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}
	return &Logger{output: output, color: output == os.Stdout}
}

func Init() {
	globalLogger = New(os.Stdout)
}

// SetOutput redirects the global logger, mostly for tests.
func SetOutput(output io.Writer) {
	globalLogger = New(output)
}

func (l *Logger) log(level LogLevel, action string, userID *string, details map[string]interface{}, err error) {
	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		UserID:    userID,
		Action:    action,
		Details:   details,
		Caller:    caller(),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		data = []byte(fmt.Sprintf(`{"level":%q,"action":%q,"error":"unencodable details"}`, level, action))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.color {
		fmt.Fprintf(l.output, "%s\n", data)
		return
	}

	colorCode := "\033[36m"
	switch level {
	case LevelError:
		colorCode = "\033[31m"
	case LevelWarn:
		colorCode = "\033[33m"
	}
	fmt.Fprintf(l.output, "%s%s\033[0m\n", colorCode, data)
}

func Info(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelInfo, action, nil, details, nil)
	}
}

func InfoWithUser(userID string, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelInfo, action, &userID, details, nil)
	}
}

func Warn(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelWarn, action, nil, details, nil)
	}
}

func WarnWithUser(userID string, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelWarn, action, &userID, details, nil)
	}
}

func Error(action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelError, action, nil, details, err)
	}
}

func ErrorWithUser(userID string, action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelError, action, &userID, details, err)
	}
}

func GetUserIDFromContext(c *fiber.Ctx) *string {
	if userID := c.Locals(UserIDKey); userID != nil {
		if id, ok := userID.(string); ok {
			return &id
		}
	}
	return nil
}

func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func GenerateRequestID() string {
	return uuid.New().String()
}

// caller skips log, the exported helper and this function.
func caller() string {
	if _, file, line, ok := runtime.Caller(3); ok {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return ""
}

func GetResponseSizeSummary(c *fiber.Ctx) string {
	body := c.Response().Body()
	switch {
	case len(body) == 0:
		return "empty"
	case len(body) > 1024:
		return fmt.Sprintf("large (%d bytes)", len(body))
	default:
		return fmt.Sprintf("small (%d bytes)", len(body))
	}
}
