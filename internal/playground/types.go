package playground

// Channel is the compiler release track.
type Channel string

const (
	ChannelStable  Channel = "stable"
	ChannelBeta    Channel = "beta"
	ChannelNightly Channel = "nightly"
)

// Mode is the optimization level.
type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

// Edition is the language edition.
type Edition string

const (
	Edition2015 Edition = "2015"
	Edition2018 Edition = "2018"
)

// CrateType tells the playground whether to build a binary or a library.
type CrateType string

const (
	CrateBinary  CrateType = "bin"
	CrateLibrary CrateType = "lib"
)

// Flags are the user-selectable execution options of a single invocation.
type Flags struct {
	Channel Channel
	Mode    Mode
	Edition Edition
}

// DefaultFlags returns nightly, debug, 2018.
func DefaultFlags() Flags {
	return Flags{
		Channel: ChannelNightly,
		Mode:    ModeDebug,
		Edition: Edition2018,
	}
}

// ExecuteRequest is the body of a standard execute call.
type ExecuteRequest struct {
	Channel   Channel   `json:"channel"`
	Edition   Edition   `json:"edition"`
	Code      string    `json:"code"`
	CrateType CrateType `json:"crateType"`
	Mode      Mode      `json:"mode"`
	Tests     bool      `json:"tests"`
}

// MiriRequest is the body of an undefined-behavior check.
type MiriRequest struct {
	Edition Edition `json:"edition"`
	Code    string  `json:"code"`
}

// Result is the playground's answer to both execute and miri calls.
type Result struct {
	Success bool   `json:"success"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

type gistRequest struct {
	Code string `json:"code"`
}
