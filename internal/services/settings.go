package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/Edjery/budget-trackr/internal/amqp"
	"github.com/Edjery/budget-trackr/internal/blob"
	"github.com/Edjery/budget-trackr/internal/currency"
	"github.com/Edjery/budget-trackr/internal/log"
	"github.com/Edjery/budget-trackr/internal/metrics"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

const DefaultLanguage = "en"

// Language is one selectable interface language
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

var languages = map[string]Language{
	"en": {Code: "en", Name: "English", NativeName: "English"},
	"ph": {Code: "ph", Name: "Filipino", NativeName: "Filipino"},
}

// Languages lists the supported languages ordered by code
func Languages() []Language {
	out := make([]Language, 0, len(languages))
	for _, l := range languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

type Appearance struct {
	Theme Theme `json:"theme"`
}

// Visibility holds display privacy toggles
type Visibility struct {
	HideAmounts bool `json:"hideAmounts"`
}

type UserSettings struct {
	Appearance Appearance        `json:"appearance"`
	Currency   currency.Currency `json:"currency"`
	Language   string            `json:"language"`
	Visibility *Visibility       `json:"visibility,omitempty"`
}

// DefaultSettings returns the settings used before anything is persisted
func DefaultSettings() UserSettings {
	return UserSettings{
		Appearance: Appearance{Theme: ThemeSystem},
		Currency:   currency.Default(),
		Language:   DefaultLanguage,
	}
}

// Patch lists the fields an update may override. Nil fields are left alone.
// Currency is selected by code; the rest of the currency comes from the table.
type Patch struct {
	Theme        *Theme
	CurrencyCode *string
	Language     *string
	Visibility   *Visibility
}

// ResolveTheme maps system to light or dark using the caller's preference
func ResolveTheme(theme Theme, systemPrefersDark bool) Theme {
	switch theme {
	case ThemeDark, ThemeLight:
		return theme
	default:
		if systemPrefersDark {
			return ThemeDark
		}
		return ThemeLight
	}
}

// ToggleTheme flips dark and light. System is resolved first.
func ToggleTheme(theme Theme, systemPrefersDark bool) Theme {
	if ResolveTheme(theme, systemPrefersDark) == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// SettingsStore owns the user settings document.
type SettingsStore struct {
	store    blob.Store
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *log.Logger

	writeMu sync.Mutex

	mu       sync.RWMutex
	settings UserSettings
}

// NewSettingsStore creates the store and loads the persisted settings
func NewSettingsStore(ctx context.Context, store blob.Store, opts Options) (*SettingsStore, error) {
	s := &SettingsStore{
		store:    store,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.logger(log.ComponentSettings),
		settings: DefaultSettings(),
	}
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the persisted settings. Missing or corrupt data yields the
// defaults; partial data is merged with them at the appearance and currency
// level. A read failure keeps the current settings and is returned.
func (s *SettingsStore) Load(ctx context.Context) (UserSettings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, ok, err := s.store.Get(ctx, blob.KeyUserSettings)
	if err != nil {
		return s.Current(), fmt.Errorf("load settings: %w", err)
	}

	settings := DefaultSettings()
	if ok && len(data) > 0 {
		merged, err := decodeSettings(data)
		if err != nil {
			s.logger.WarnContext(ctx, "Stored settings are unreadable, using defaults",
				log.FieldOperation, log.OpLoad,
				log.FieldError, err)
		} else {
			settings = merged
		}
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return settings, nil
}

// Current returns the in-memory settings
func (s *SettingsStore) Current() UserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update merges p into the current settings and persists the result. On a
// failed write the previous settings stay in effect.
func (s *SettingsStore) Update(ctx context.Context, p Patch) (UserSettings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, err := applyPatch(s.Current(), p)
	if err != nil {
		return s.Current(), err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return s.Current(), fmt.Errorf("%w: encode settings: %w", ErrPersist, err)
	}
	if err := s.store.Set(ctx, blob.KeyUserSettings, data); err != nil {
		s.metrics.PersistError(blob.KeyUserSettings)
		s.metrics.Mutation(log.OpUpdate, metrics.OutcomeFailed)
		s.logger.ErrorContext(ctx, "Failed to persist settings",
			log.FieldOperation, log.OpPersist,
			log.FieldKey, blob.KeyUserSettings,
			log.FieldError, err)
		return s.Current(), fmt.Errorf("%w: write %s: %w", ErrPersist, blob.KeyUserSettings, err)
	}

	s.mu.Lock()
	s.settings = next
	s.mu.Unlock()

	s.metrics.Mutation(log.OpUpdate, metrics.OutcomeOK)
	s.logger.InfoContext(ctx, "Settings updated",
		log.FieldTheme, next.Appearance.Theme,
		log.FieldCurrency, next.Currency.Code,
		log.FieldLanguage, next.Language)
	notify(ctx, s.notifier, s.logger, amqp.NewChangeEvent(amqp.EntitySettings, log.OpUpdate))
	return next, nil
}

// SetTheme is a shorthand for Update with only a theme
func (s *SettingsStore) SetTheme(ctx context.Context, theme Theme) (UserSettings, error) {
	return s.Update(ctx, Patch{Theme: &theme})
}

// SetCurrency is a shorthand for Update with only a currency code
func (s *SettingsStore) SetCurrency(ctx context.Context, code string) (UserSettings, error) {
	return s.Update(ctx, Patch{CurrencyCode: &code})
}

// SetLanguage is a shorthand for Update with only a language
func (s *SettingsStore) SetLanguage(ctx context.Context, lang string) (UserSettings, error) {
	return s.Update(ctx, Patch{Language: &lang})
}

func applyPatch(cur UserSettings, p Patch) (UserSettings, error) {
	next := cur
	if p.Theme != nil {
		if !p.Theme.IsValid() {
			return cur, fmt.Errorf("%w: %q", ErrInvalidTheme, *p.Theme)
		}
		next.Appearance.Theme = *p.Theme
	}
	if p.CurrencyCode != nil {
		c, ok := currency.Lookup(*p.CurrencyCode)
		if !ok {
			return cur, fmt.Errorf("%w: %q", ErrUnknownCurrency, *p.CurrencyCode)
		}
		next.Currency = c
	}
	if p.Language != nil {
		if _, ok := languages[*p.Language]; !ok {
			return cur, fmt.Errorf("%w: %q", ErrUnknownLanguage, *p.Language)
		}
		next.Language = *p.Language
	}
	if p.Visibility != nil {
		v := *p.Visibility
		next.Visibility = &v
	}
	return next, nil
}

// decodeSettings merges a stored document with the defaults. Fields present in
// the document win; a currency whose code is not in the table falls back to
// the default currency.
func decodeSettings(data []byte) (UserSettings, error) {
	var raw struct {
		Appearance *struct {
			Theme Theme `json:"theme"`
		} `json:"appearance"`
		Currency *struct {
			Code   string `json:"code"`
			Symbol string `json:"symbol"`
			Locale string `json:"locale"`
			Name   string `json:"name"`
		} `json:"currency"`
		Language   string      `json:"language"`
		Visibility *Visibility `json:"visibility"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return UserSettings{}, err
	}

	out := DefaultSettings()
	if raw.Appearance != nil && raw.Appearance.Theme.IsValid() {
		out.Appearance.Theme = raw.Appearance.Theme
	}
	if raw.Currency != nil {
		if c, ok := currency.Lookup(raw.Currency.Code); ok {
			if raw.Currency.Symbol != "" {
				c.Symbol = raw.Currency.Symbol
			}
			if raw.Currency.Locale != "" {
				c.Locale = raw.Currency.Locale
			}
			if raw.Currency.Name != "" {
				c.Name = raw.Currency.Name
			}
			out.Currency = c
		}
	}
	if _, ok := languages[raw.Language]; ok {
		out.Language = raw.Language
	}
	out.Visibility = raw.Visibility
	return out, nil
}
