package capture

import (
	"testing"
)

func supportsOnly(formats ...Format) func(Format) bool {
	set := map[Format]bool{}
	for _, f := range formats {
		set[f] = true
	}
	return func(f Format) bool { return set[f] }
}

func TestNegotiatePicksFirstSupported(t *testing.T) {
	got, err := Negotiate("linux", DefaultPreference, supportsOnly(FormatPCM32F, FormatPCM16), nil)
	if err != nil {
		t.Fatalf("Negotiate failed: %v", err)
	}
	if got != FormatPCM16 {
		t.Errorf("Expected first preference %s, got %s", FormatPCM16, got)
	}
}

func TestNegotiateSkipsUnsupported(t *testing.T) {
	got, err := Negotiate("linux", DefaultPreference, supportsOnly(FormatPCM24), nil)
	if err != nil {
		t.Fatalf("Negotiate failed: %v", err)
	}
	if got != FormatPCM24 {
		t.Errorf("Expected fallback to %s, got %s", FormatPCM24, got)
	}
}

func TestNegotiateOverrideWins(t *testing.T) {
	overrides := map[string]Format{"darwin": FormatPCM32F}
	got, err := Negotiate("darwin", DefaultPreference, supportsOnly(FormatPCM16), overrides)
	if err != nil {
		t.Fatalf("Negotiate failed: %v", err)
	}
	if got != FormatPCM32F {
		t.Errorf("Override must win even against supported preferences, got %s", got)
	}
}

func TestNegotiateNothingSupported(t *testing.T) {
	_, err := Negotiate("plan9", DefaultPreference, supportsOnly(), nil)
	if err == nil {
		t.Error("Expected error when the host supports nothing")
	}
}
