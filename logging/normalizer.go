package logging

import (
	"fmt"
	"strings"
)

// NormalizationResult carries the normalized config plus any warnings raised
// while reconciling it against its profile's requirements.
type NormalizationResult struct {
	Config   *LoggerConfig
	Warnings []string
}

// NormalizeLoggerConfig reconciles a logger configuration against its
// profile's requirements in place, returning any non-fatal warnings raised
// along the way. New runs this before building a Logger so every
// construction path sees an already-normalized config.
func NormalizeLoggerConfig(config *LoggerConfig) (*NormalizationResult, error) {
	if config == nil {
		return nil, fmt.Errorf("logging: config is nil")
	}

	var warnings []string

	profileWarning, err := normalizeProfile(config)
	if err != nil {
		return nil, err
	}
	if profileWarning != "" {
		warnings = append(warnings, profileWarning)
	}

	config.Middleware = normalizeMiddleware(config.Middleware)
	config.Throttling = normalizeThrottling(config.Throttling)
	warnings = append(warnings, applyProfileDefaults(config)...)

	return &NormalizationResult{Config: config, Warnings: warnings}, nil
}

// normalizeProfile upper-cases a loosely-cased profile string and returns a
// warning when the caller's spelling didn't already match the canonical form.
func normalizeProfile(config *LoggerConfig) (string, error) {
	if config.Profile == "" {
		config.Profile = ProfileSimple
		return "", nil
	}

	original := config.Profile
	canonical := LoggingProfile(strings.ToUpper(string(original)))

	switch canonical {
	case ProfileSimple, ProfileStructured, ProfileEnterprise, ProfileCustom:
		config.Profile = canonical
	default:
		return "", fmt.Errorf("logging: unknown profile %q", original)
	}

	if canonical != original {
		return fmt.Sprintf("profile %q normalized to %q", original, canonical), nil
	}
	return "", nil
}

func normalizeMiddleware(middleware []MiddlewareConfig) []MiddlewareConfig {
	seen := make(map[string]bool, len(middleware))
	out := make([]MiddlewareConfig, 0, len(middleware))
	for _, m := range middleware {
		if seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		if m.Config == nil {
			m.Config = make(map[string]any)
		}
		out = append(out, m)
	}
	return out
}

func normalizeThrottling(throttling *ThrottlingConfig) *ThrottlingConfig {
	if throttling == nil {
		return nil
	}
	normalized := *throttling
	if normalized.MaxRate <= 0 {
		normalized.MaxRate = 1000
	}
	if normalized.BurstSize <= 0 {
		normalized.BurstSize = normalized.MaxRate
	}
	if normalized.WindowSize <= 0 {
		normalized.WindowSize = 1
	}
	if normalized.DropPolicy == "" {
		normalized.DropPolicy = "drop-oldest"
	}
	return &normalized
}

// applyProfileDefaults reconciles structural defaults that New's own
// initializeProfileDefaults doesn't already enforce: SIMPLE ensures a console
// sink exists, STRUCTURED warns when over its middleware budget.
// ENTERPRISE's stricter requirements (throttling, middleware) are left to
// New/initializeEnterpriseProfile, which fails closed instead of guessing.
func applyProfileDefaults(config *LoggerConfig) []string {
	var warnings []string

	switch config.Profile {
	case ProfileSimple:
		hasConsole := false
		for _, sink := range config.Sinks {
			if sink.Type == "console" {
				hasConsole = true
				break
			}
		}
		if !hasConsole {
			config.Sinks = append(config.Sinks, SinkConfig{
				Type:   "console",
				Format: "console",
				Console: &ConsoleSinkConfig{
					Stream: "stderr",
				},
			})
		}

	case ProfileStructured:
		req := GetProfileRequirements(ProfileStructured)
		if req.MaxMiddleware != nil && len(config.Middleware) > *req.MaxMiddleware {
			warnings = append(warnings, fmt.Sprintf(
				"structured profile allows at most %d middleware entries, got %d",
				*req.MaxMiddleware, len(config.Middleware)))
		}
	}

	return warnings
}
