package config

import (
	"errors"
	"fmt"
	"regexp"
)

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateResolution(); err != nil {
		return err
	}
	if err := c.validateCards(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateResolution() error {
	if c.Resolution.MinConfidence < 0 || c.Resolution.MinConfidence > 1 {
		return errors.New("resolution.min_confidence must be between 0 and 1")
	}
	if c.Resolution.TitleSimilarity < 0 || c.Resolution.TitleSimilarity > 1 {
		return errors.New("resolution.title_similarity must be between 0 and 1")
	}
	if c.Resolution.MaxRetries > 10 {
		return errors.New("resolution.max_retries must be at most 10")
	}
	if c.Resolution.RetryBaseDelayMS > c.Resolution.RetryMaxDelayMS {
		return errors.New("resolution.retry_base_delay_ms must not exceed resolution.retry_max_delay_ms")
	}
	return nil
}

func (c *Config) validateCards() error {
	if c.Cards.DPI < 72 || c.Cards.DPI > 1200 {
		return errors.New("cards.dpi must be between 72 and 1200")
	}
	if len(c.Cards.Gradient) < 2 {
		return errors.New("cards.gradient must list at least two colors")
	}
	for idx, anchor := range c.Cards.Gradient {
		if !hexColorPattern.MatchString(anchor) {
			return fmt.Errorf("cards.gradient[%d]: %q is not a #RRGGBB color", idx, anchor)
		}
	}
	if len([]rune(c.Cards.CardLabel)) > 24 {
		return errors.New("cards.card_label must be at most 24 characters")
	}
	return nil
}

func (c *Config) validateLayout() error {
	if err := ensurePositiveMap(map[string]float64{
		"layout.rows":           float64(c.Layout.Rows),
		"layout.columns":        float64(c.Layout.Columns),
		"layout.card_size_mm":   c.Layout.CardSizeMM,
		"layout.page_width_mm":  c.Layout.PageWidthMM,
		"layout.page_height_mm": c.Layout.PageHeightMM,
	}); err != nil {
		return err
	}
	if c.Layout.GapSizeMM < 0 {
		return errors.New("layout.gap_size_mm must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]float64) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
