// Package settings provides build metadata and per-run settings shared by
// the treepick commands and the packages they drive.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "treepick"

// EnvPrefix prefixes every environment variable treepick reads.
const EnvPrefix = "TREEPICK"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// SourceKind says where the document of a run came from.
type SourceKind string

const (
	SourceFile  SourceKind = "file"
	SourceStdin SourceKind = "stdin"
	SourceHTTP  SourceKind = "http"
)

// Source describes the document being worked on.
type Source struct {
	Kind SourceKind
	Path string
}

// Name returns a display name for the source.
func (s Source) Name() string {
	if s.Path != "" {
		return s.Path
	}
	return string(s.Kind)
}

// Run holds the settings of a single execution.
type Run struct {
	MinLogLevel int8
	Source      Source
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
	LogFile     string
}

// NewCliParams returns the defaults for a CLI run: info logging, errors exit.
func NewCliParams() *Run {
	return &Run{
		Source:      Source{Kind: SourceFile},
		ExitOnError: true,
	}
}
