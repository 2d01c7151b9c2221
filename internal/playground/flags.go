package playground

import "strconv"

// ParseChannel accepts stable, beta or nightly.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(s); c {
	case ChannelStable, ChannelBeta, ChannelNightly:
		return c, nil
	}
	return "", &ParseFlagError{Field: "channel", Value: s}
}

// ParseMode accepts debug or release.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDebug, ModeRelease:
		return m, nil
	}
	return "", &ParseFlagError{Field: "mode", Value: s}
}

// ParseEdition accepts 2015 or 2018.
func ParseEdition(s string) (Edition, error) {
	switch e := Edition(s); e {
	case Edition2015, Edition2018:
		return e, nil
	}
	return "", &ParseFlagError{Field: "edition", Value: s}
}

// ParseFlags resolves the recognised keys of params on top of DefaultFlags.
// Bad values keep the default and are reported in errs; unknown keys are
// ignored. The returned bool is the warn flag.
func ParseFlags(params map[string]string) (flags Flags, warn bool, errs []error) {
	flags = DefaultFlags()

	if raw, ok := params["channel"]; ok {
		if c, err := ParseChannel(raw); err != nil {
			errs = append(errs, err)
		} else {
			flags.Channel = c
		}
	}

	if raw, ok := params["mode"]; ok {
		if m, err := ParseMode(raw); err != nil {
			errs = append(errs, err)
		} else {
			flags.Mode = m
		}
	}

	if raw, ok := params["edition"]; ok {
		if e, err := ParseEdition(raw); err != nil {
			errs = append(errs, err)
		} else {
			flags.Edition = e
		}
	}

	if raw, ok := params["warn"]; ok {
		if b, err := strconv.ParseBool(raw); err != nil {
			errs = append(errs, &ParseFlagError{Field: "warn", Value: raw})
		} else {
			warn = b
		}
	}

	return flags, warn, errs
}
