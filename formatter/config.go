package formatter

// TimestampFormat selects how the timestamp placeholder renders.
type TimestampFormat uint8

const (
	TimestampUnix TimestampFormat = iota
	TimestampISO8601
	TimestampCustom
)

// LevelFormat selects how the level placeholder renders.
type LevelFormat uint8

const (
	LevelUpper LevelFormat = iota
	LevelLower
	LevelShortUpper
	LevelShortLower
)

// StructuredFormat selects the structured-rendering dialect.
type StructuredFormat uint8

const (
	StructuredJSON StructuredFormat = iota
	StructuredLogfmt
	StructuredCustom
)

// Config is the formatter's construction-time configuration (§6).
type Config struct {
	Template        string
	TimestampFormat TimestampFormat
	CustomTimeLayout string // used when TimestampFormat == TimestampCustom
	LevelFormat     LevelFormat
	UseColor        bool

	StructuredFormat         StructuredFormat
	CustomFieldSeparator     string
	CustomKeyValueSeparator string
	IncludeTimestamp        bool
	IncludeLevel            bool

	StackBufferSize int
}

// DefaultConsoleTemplate is used when no template is configured (§6).
const DefaultConsoleTemplate = "[{timestamp}] [{color}{level}{reset}] [{file}:{line}] {message}"

// DefaultFileTemplate is used for file output; colors are always
// disabled regardless of Config.UseColor (§9, open question c).
const DefaultFileTemplate = "[{timestamp}] [{level}] {message}"

func (c Config) withDefaults() Config {
	if c.Template == "" {
		c.Template = DefaultConsoleTemplate
	}
	if c.StackBufferSize <= 0 {
		c.StackBufferSize = 256
	}
	if c.CustomFieldSeparator == "" {
		c.CustomFieldSeparator = " | "
	}
	if c.CustomKeyValueSeparator == "" {
		c.CustomKeyValueSeparator = "="
	}
	return c
}
