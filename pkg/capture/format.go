package capture

import (
	"fmt"
)

// Format identifies a capture encoding.
type Format string

const (
	FormatPCM16   Format = "pcm_s16le"
	FormatPCM32F  Format = "pcm_f32le"
	FormatPCM24   Format = "pcm_s24le"
	FormatUnknown Format = ""
)

// DefaultPreference is the probe order used when a host offers a choice.
var DefaultPreference = []Format{FormatPCM16, FormatPCM32F, FormatPCM24}

// Negotiate picks a capture format for a host: an override entry for the host
// identifier wins outright (the escape hatch for hosts whose self-reported
// support is known to be wrong), otherwise the first preference the host
// supports is taken.
func Negotiate(host string, prefs []Format, supports func(Format) bool, overrides map[string]Format) (Format, error) {
	if f, ok := overrides[host]; ok {
		return f, nil
	}
	for _, f := range prefs {
		if supports(f) {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("host %q supports none of the preferred formats", host)
}
