package adapter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/mmcdole/bilirec/internal/domain"
)

// SettingNames returns the settable keys without the "settings." prefix,
// sorted.
func SettingNames() []string {
	keys := SettingsKeys(domain.DefaultSettings())
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, strings.TrimPrefix(k, "settings."))
	}
	slices.Sort(names)
	return names
}

// GetSetting returns the current value of a single setting
func GetSetting(s domain.Settings, name string) (any, error) {
	value, ok := SettingsKeys(s)["settings."+name]
	if !ok {
		return nil, fmt.Errorf("unknown setting %q", name)
	}
	return value, nil
}

// SetSetting parses raw into the type of the named setting and returns the
// updated record. Lists are comma separated; an empty string clears them.
func SetSetting(s domain.Settings, name, raw string) (domain.Settings, error) {
	keys := SettingsKeys(s)
	full := "settings." + name
	current, ok := keys[full]
	if !ok {
		return s, fmt.Errorf("unknown setting %q", name)
	}

	value, err := parseSettingValue(current, raw)
	if err != nil {
		return s, fmt.Errorf("invalid value for %s: %w", name, err)
	}

	switch name {
	case "last_tab":
		if _, err := domain.ParseTab(raw); err != nil {
			return s, err
		}
	case "enabled_tabs":
		for _, t := range value.([]string) {
			if _, err := domain.ParseTab(t); err != nil {
				return s, err
			}
		}
	}

	// Round-trip through a scratch viper so decoding matches LoadConfig
	v := viper.New()
	for k, val := range keys {
		v.Set(k, val)
	}
	v.Set(full, value)

	var out struct {
		Settings domain.Settings `mapstructure:"settings"`
	}
	if err := v.Unmarshal(&out); err != nil {
		return s, fmt.Errorf("error applying setting: %w", err)
	}
	return out.Settings, nil
}

func parseSettingValue(current any, raw string) (any, error) {
	switch current.(type) {
	case bool:
		return cast.ToBoolE(raw)
	case int:
		return cast.ToIntE(raw)
	case int64:
		return cast.ToInt64E(raw)
	case []string:
		return splitList(raw), nil
	case []int64:
		parts := splitList(raw)
		ids := make([]int64, 0, len(parts))
		for _, p := range parts {
			id, err := cast.ToInt64E(p)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	default:
		return raw, nil
	}
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}
