// Package prefs persists the display preferences (theme, font scale,
// sound) as string key/values and derives the presentation state applied
// on every page load.
package prefs

import (
	"context"
	"fmt"
	"strconv"

	"clash-hub/internal/domain"

	"github.com/rs/zerolog"
)

const (
	KeyThemeInverted = "clash_hub_invert_colours"
	KeyFontScale     = "clash_hub_font_scale"
	KeySoundEnabled  = "clash_hub_sound_enabled"
)

const (
	DefaultFontScale = 100
	MinFontScale     = 100
	MaxFontScale     = 200
)

// Storage is the key/value backing store. Get's second return reports
// whether the key was present at all.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Sounder is the optional confirmation-tone capability. A nil Sounder
// turns the tone into a no-op.
type Sounder interface {
	Beep()
}

type Store struct {
	kv     Storage
	sound  Sounder
	logger zerolog.Logger
}

func NewStore(kv Storage, sound Sounder, logger zerolog.Logger) *Store {
	return &Store{kv: kv, sound: sound, logger: logger}
}

// Get reads all three flags, substituting defaults for absent or
// unreadable values: theme not inverted, 100% font scale, sound on.
func (s *Store) Get(ctx context.Context) (domain.Preferences, error) {
	p := domain.Preferences{
		ThemeInverted:    false,
		FontScalePercent: DefaultFontScale,
		SoundEnabled:     true,
	}

	if v, ok, err := s.kv.Get(ctx, KeyThemeInverted); err != nil {
		return p, err
	} else if ok {
		p.ThemeInverted = v == "true"
	}

	if v, ok, err := s.kv.Get(ctx, KeyFontScale); err != nil {
		return p, err
	} else if ok {
		if n, err := strconv.Atoi(v); err == nil && n >= MinFontScale && n <= MaxFontScale {
			p.FontScalePercent = n
		}
	}

	if v, ok, err := s.kv.Get(ctx, KeySoundEnabled); err != nil {
		return p, err
	} else if ok {
		p.SoundEnabled = v == "true"
	}

	return p, nil
}

// SetThemeInverted persists the theme flag and plays the confirmation
// tone when sound is enabled.
func (s *Store) SetThemeInverted(ctx context.Context, inverted bool) error {
	if err := s.kv.Set(ctx, KeyThemeInverted, strconv.FormatBool(inverted)); err != nil {
		return err
	}
	s.logger.Debug().Bool("inverted", inverted).Msg("theme preference changed")
	s.playTone(ctx, false)
	return nil
}

// SetFontScale persists the font scale. Values outside [100,200] are
// rejected.
func (s *Store) SetFontScale(ctx context.Context, percent int) error {
	if percent < MinFontScale || percent > MaxFontScale {
		return fmt.Errorf("font scale %d out of range [%d,%d]", percent, MinFontScale, MaxFontScale)
	}
	if err := s.kv.Set(ctx, KeyFontScale, strconv.Itoa(percent)); err != nil {
		return err
	}
	s.logger.Debug().Int("percent", percent).Msg("font scale preference changed")
	s.playTone(ctx, false)
	return nil
}

// SetSoundEnabled persists the sound flag. The tone always plays here,
// even when turning sound off, so the user gets confirmation either way.
func (s *Store) SetSoundEnabled(ctx context.Context, enabled bool) error {
	if err := s.kv.Set(ctx, KeySoundEnabled, strconv.FormatBool(enabled)); err != nil {
		return err
	}
	s.logger.Debug().Bool("enabled", enabled).Msg("sound preference changed")
	s.playTone(ctx, true)
	return nil
}

func (s *Store) playTone(ctx context.Context, force bool) {
	if s.sound == nil {
		return
	}
	if !force {
		p, err := s.Get(ctx)
		if err != nil || !p.SoundEnabled {
			return
		}
	}
	s.sound.Beep()
}

// View is the presentation state re-applied on every page load.
type View struct {
	ThemeClass       string `json:"themeClass"`
	FontScalePercent int    `json:"fontScalePercent"`
	SoundEnabled     bool   `json:"soundEnabled"`
}

// View derives the applied state from the stored flags without side
// effects and without playing any tone.
func (s *Store) View(ctx context.Context) (View, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return View{}, err
	}
	themeClass := ""
	if p.ThemeInverted {
		themeClass = "light-theme"
	}
	return View{
		ThemeClass:       themeClass,
		FontScalePercent: p.FontScalePercent,
		SoundEnabled:     p.SoundEnabled,
	}, nil
}
