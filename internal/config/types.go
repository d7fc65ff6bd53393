package config

// Config is the full treepick configuration. Keys are snake_case in files
// and TREEPICK_SECTION_KEY in the environment.
type Config struct {
	Search    SearchConfig    `mapstructure:"search" yaml:"search"`
	Selection SelectionConfig `mapstructure:"selection" yaml:"selection"`
	View      ViewConfig      `mapstructure:"view" yaml:"view"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
}

// SearchConfig tunes the search box.
type SearchConfig struct {
	// DebounceMs is the quiet period after the last keystroke before a term
	// is applied.
	DebounceMs int    `mapstructure:"debounce_ms" yaml:"debounce_ms" validate:"min=100,max=300"`
	MatchKey   bool   `mapstructure:"match_key" yaml:"match_key"`
	MatchValue bool   `mapstructure:"match_value" yaml:"match_value"`
	Mode       string `mapstructure:"mode" yaml:"mode" validate:"oneof=substring expression"`
}

type SelectionConfig struct {
	AutoSelectChildren bool `mapstructure:"auto_select_children" yaml:"auto_select_children"`
}

// ViewConfig tunes row rendering. Updates touching at least BatchThreshold
// rendered rows are applied BatchSize rows per frame.
type ViewConfig struct {
	BatchThreshold int `mapstructure:"batch_threshold" yaml:"batch_threshold" validate:"min=1"`
	BatchSize      int `mapstructure:"batch_size" yaml:"batch_size" validate:"min=1,ltefield=BatchThreshold"`
	ValueWidth     int `mapstructure:"value_width" yaml:"value_width" validate:"min=10,max=500"`
	// ShowHelp adds key hints to the status line.
	ShowHelp bool `mapstructure:"show_help" yaml:"show_help"`
}

type ExportConfig struct {
	FileName string `mapstructure:"file_name" yaml:"file_name" validate:"required"`
	Indent   int    `mapstructure:"indent" yaml:"indent" validate:"min=1,max=8"`
}

// ServerConfig configures `treepick serve`.
type ServerConfig struct {
	Addr           string  `mapstructure:"addr" yaml:"addr" validate:"required,hostname_port"`
	MaxUploadBytes int64   `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes" validate:"min=1"`
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	Burst          int     `mapstructure:"burst" yaml:"burst" validate:"min=1"`
	ReadTimeoutS   int     `mapstructure:"read_timeout_s" yaml:"read_timeout_s" validate:"min=1"`
}
