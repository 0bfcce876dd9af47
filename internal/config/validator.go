package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/logging"
	"github.com/NathanEdg/pulse/internal/schedule"
)

// ValidStoreDrivers lists the accepted store.driver values.
func ValidStoreDrivers() []string {
	return []string{"json", "yaml", "sqlite"}
}

// Validate returns every invalid value in c.
func (c *Config) Validate() errors.ValidationErrors {
	var errs errors.ValidationErrors
	errs = append(errs, c.validateTimeline()...)
	errs = append(errs, c.validateViewport()...)
	errs = append(errs, c.validateSchedule()...)
	errs = append(errs, c.validateStore()...)
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateLogging()...)
	return errs
}

func (c *Config) validateTimeline() errors.ValidationErrors {
	var errs errors.ValidationErrors
	t := c.Timeline
	if t.MinPixelsPerDay <= 0 {
		errs = append(errs, errors.NewValidationError("timeline.min_pixels_per_day", t.MinPixelsPerDay, "must be positive"))
	}
	if t.MaxPixelsPerDay < t.MinPixelsPerDay {
		errs = append(errs, errors.NewValidationError("timeline.max_pixels_per_day", t.MaxPixelsPerDay,
			fmt.Sprintf("must be at least min_pixels_per_day (%v)", t.MinPixelsPerDay)))
	}
	if t.PixelsPerDay < t.MinPixelsPerDay || t.PixelsPerDay > t.MaxPixelsPerDay {
		errs = append(errs, errors.NewValidationError("timeline.pixels_per_day", t.PixelsPerDay,
			fmt.Sprintf("must be between %v and %v", t.MinPixelsPerDay, t.MaxPixelsPerDay)))
	}
	return errs
}

func (c *Config) validateViewport() errors.ValidationErrors {
	var errs errors.ValidationErrors
	v := c.Viewport
	if v.InitialMonthsBefore < 0 {
		errs = append(errs, errors.NewValidationError("viewport.initial_months_before", v.InitialMonthsBefore, "must not be negative"))
	}
	if v.InitialMonthsAfter < 0 {
		errs = append(errs, errors.NewValidationError("viewport.initial_months_after", v.InitialMonthsAfter, "must not be negative"))
	}
	if v.BatchMonths < 1 {
		errs = append(errs, errors.NewValidationError("viewport.batch_months", v.BatchMonths, "must be at least 1"))
	}
	if v.EdgeThresholdPx < 0 {
		errs = append(errs, errors.NewValidationError("viewport.edge_threshold_px", v.EdgeThresholdPx, "must not be negative"))
	}
	if v.CooldownMs < 0 {
		errs = append(errs, errors.NewValidationError("viewport.cooldown_ms", v.CooldownMs, "must not be negative"))
	}
	return errs
}

func (c *Config) validateSchedule() errors.ValidationErrors {
	if slices.Contains(schedule.ValidStrategies(), c.Schedule.Strategy) {
		return nil
	}
	return errors.ValidationErrors{errors.NewValidationError("schedule.strategy", c.Schedule.Strategy,
		fmt.Sprintf("must be one of: %s", strings.Join(schedule.ValidStrategies(), ", ")))}
}

func (c *Config) validateStore() errors.ValidationErrors {
	if c.Store.Driver == "" || slices.Contains(ValidStoreDrivers(), c.Store.Driver) {
		return nil
	}
	return errors.ValidationErrors{errors.NewValidationError("store.driver", c.Store.Driver,
		fmt.Sprintf("must be one of: %s", strings.Join(ValidStoreDrivers(), ", ")))}
}

func (c *Config) validateServer() errors.ValidationErrors {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.ValidationErrors{errors.NewValidationError("server.port", c.Server.Port, "must be between 1 and 65535")}
	}
	return nil
}

func (c *Config) validateLogging() errors.ValidationErrors {
	level := strings.ToUpper(c.Logging.Level)
	if level == "" || slices.Contains(logging.ValidLevels(), level) {
		return nil
	}
	return errors.ValidationErrors{errors.NewValidationError("logging.level", c.Logging.Level,
		fmt.Sprintf("must be one of: %s", strings.ToLower(strings.Join(logging.ValidLevels(), ", "))))}
}
