package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Gruvbox Dark color palette (warm, muted, easy on eyes)
const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"

	colorFg       = "\x1b[38;5;223m" // Soft cream (#ebdbb2)
	colorAqua     = "\x1b[38;5;108m" // Muted cyan-green (#8ec07c)
	colorOrange   = "\x1b[38;5;208m" // Warm orange (#fe8019)
	colorYellow   = "\x1b[38;5;214m" // Soft yellow (#fabd2f)
	colorGreen    = "\x1b[38;5;142m" // Muted green (#b8bb26)
	colorBlue     = "\x1b[38;5;109m" // Soft blue (#83a598)
	colorPurple   = "\x1b[38;5;175m" // Muted purple (#d3869b)
	colorRed      = "\x1b[38;5;167m" // Warm red (#fb4934)
	colorRedBg    = "\x1b[48;5;88m"  // Dark red background
	colorYellowBg = "\x1b[48;5;58m"  // Dark yellow background
)

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  p.server  request completed  r_1a2b 42ms"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	buf             *buffer.Buffer
}

func newMinimalEncoder() *minimalEncoder {
	// Create a base JSON encoder for field serialization (internal use only)
	baseEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	return &minimalEncoder{
		Encoder: baseEncoder,
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	// Time
	final.AppendString(colorAqua)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for WARN/ERROR with bold + background
	if ent.Level != zapcore.InfoLevel && ent.Level != zapcore.DebugLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	// Component name (abbreviated) for visual grouping
	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	// Message
	final.AppendString("  ")
	final.AppendString(colorMessage(ent.Message))
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	// Fields: extract and color values
	if len(fields) > 0 {
		if extracted := extractFieldValues(fields); extracted != "" {
			final.AppendString("  ")
			final.AppendString(extracted)
		}
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + colorYellowBg + colorYellow + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + colorRedBg + colorRed + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + colorRedBg + colorRed + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// colorComponent hashes a component name to a stable color
func colorComponent(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	if hash%2 == 0 {
		return colorOrange
	}
	return colorYellow
}

// colorMessage picks a message color by rough semantic category
func colorMessage(msg string) string {
	lower := strings.ToLower(msg)

	if strings.Contains(lower, "request") || strings.Contains(lower, "connected") ||
		strings.Contains(lower, "browser") {
		return colorBlue
	}
	if strings.Contains(lower, "refine") || strings.Contains(lower, "test") ||
		strings.Contains(lower, "model") || strings.Contains(lower, "completed") {
		return colorGreen
	}
	if strings.Contains(lower, "starting") || strings.Contains(lower, "started") ||
		strings.Contains(lower, "config") || strings.Contains(lower, "migration") {
		return colorOrange
	}
	return colorFg
}

// abbreviateName shortens component names: ollama.client -> o.client
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// getFieldValue extracts the value from a zap field, handling different field types
func getFieldValue(field zapcore.Field) string {
	if field.Type == zapcore.StringType {
		return field.String
	}

	if field.Type == zapcore.Int64Type || field.Type == zapcore.Int32Type ||
		field.Type == zapcore.Int16Type || field.Type == zapcore.Int8Type ||
		field.Type == zapcore.Uint64Type || field.Type == zapcore.Uint32Type ||
		field.Type == zapcore.Uint16Type || field.Type == zapcore.Uint8Type {
		return fmt.Sprintf("%d", field.Integer)
	}

	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}

	return ""
}

// extractFieldValues pulls just the interesting values from structured fields.
// Input: {"request_id": "r_123", "model": "llama3", "duration_ms": 42}
// Output: "r_123 llama3 42ms" (with colored IDs and numbers)
func extractFieldValues(fields []zapcore.Field) string {
	var values []string

	for _, field := range fields {
		switch field.Key {
		case FieldRequestID, FieldPromptID:
			if val := getFieldValue(field); val != "" {
				values = append(values, colorBlue+val+colorReset)
			}
		case FieldModel:
			if val := getFieldValue(field); val != "" {
				values = append(values, colorGreen+val+colorReset)
			}
		case FieldDurationMS:
			if val := getFieldValue(field); val != "" {
				values = append(values, colorPurple+val+colorReset+"ms")
			}
		case FieldCount:
			if val := getFieldValue(field); val != "" {
				values = append(values, colorPurple+val+colorReset)
			}
		case FieldPort, FieldAddress, FieldEndpoint:
			if val := getFieldValue(field); val != "" {
				values = append(values, colorFg+val+colorReset)
			}
		}
	}

	return strings.Join(values, " ")
}
