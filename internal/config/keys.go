package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValueKind is the type a key holds.
type ValueKind string

const (
	KindString  ValueKind = "string"
	KindBool    ValueKind = "bool"
	KindInt     ValueKind = "int"
	KindFloat   ValueKind = "float"
	KindList    ValueKind = "list"
	KindIntList ValueKind = "int list"
)

type keyDef struct {
	kind ValueKind
	get  func(*Configuration) any
	set  func(*Configuration, any)
}

var keyDefs = map[string]keyDef{
	"segmentation.split_chars": {KindString,
		func(c *Configuration) any { return c.Segmentation.SplitChars },
		func(c *Configuration, v any) { c.Segmentation.SplitChars = v.(string) }},
	"segmentation.reference_year": {KindInt,
		func(c *Configuration) any { return c.Segmentation.ReferenceYear },
		func(c *Configuration, v any) { c.Segmentation.ReferenceYear = v.(int) }},
	"layout.headers": {KindList,
		func(c *Configuration) any { return c.Layout.Headers },
		func(c *Configuration, v any) { c.Layout.Headers = v.([]string) }},
	"layout.date_columns": {KindIntList,
		func(c *Configuration) any { return c.Layout.DateColumns },
		func(c *Configuration, v any) { c.Layout.DateColumns = v.([]int) }},
	"files.default_dir": {KindString,
		func(c *Configuration) any { return c.Files.DefaultDir },
		func(c *Configuration, v any) { c.Files.DefaultDir = v.(string) }},
	"files.remember_dir": {KindBool,
		func(c *Configuration) any { return c.Files.RememberDir },
		func(c *Configuration, v any) { c.Files.RememberDir = v.(bool) }},
	"files.backup_dir": {KindString,
		func(c *Configuration) any { return c.Files.BackupDir },
		func(c *Configuration, v any) { c.Files.BackupDir = v.(string) }},
	"files.ignore_patterns": {KindList,
		func(c *Configuration) any { return c.Files.IgnorePatterns },
		func(c *Configuration, v any) { c.Files.IgnorePatterns = v.([]string) }},
	"files.max_depth": {KindInt,
		func(c *Configuration) any { return c.Files.MaxDepth },
		func(c *Configuration, v any) { c.Files.MaxDepth = v.(int) }},
	"files.follow_symlinks": {KindBool,
		func(c *Configuration) any { return c.Files.FollowSymlinks },
		func(c *Configuration, v any) { c.Files.FollowSymlinks = v.(bool) }},
	"files.workers": {KindInt,
		func(c *Configuration) any { return c.Files.Workers },
		func(c *Configuration, v any) { c.Files.Workers = v.(int) }},
	"watch.debounce_seconds": {KindFloat,
		func(c *Configuration) any { return c.Watch.DebounceSeconds },
		func(c *Configuration, v any) { c.Watch.DebounceSeconds = v.(float64) }},
	"watch.stability_seconds": {KindFloat,
		func(c *Configuration) any { return c.Watch.StabilitySeconds },
		func(c *Configuration, v any) { c.Watch.StabilitySeconds = v.(float64) }},
	"store.path": {KindString,
		func(c *Configuration) any { return c.Store.Path },
		func(c *Configuration, v any) { c.Store.Path = v.(string) }},
	"store.retention_days": {KindInt,
		func(c *Configuration) any { return c.Store.RetentionDays },
		func(c *Configuration, v any) { c.Store.RetentionDays = v.(int) }},
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(keyDefs))
	for k := range keyDefs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// normalizeKey accepts "files/backup_dir" as well as "files.backup_dir".
func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "/", "."))
}

func lookupKey(key string) (string, keyDef, error) {
	k := normalizeKey(key)
	def, ok := keyDefs[k]
	if !ok {
		return "", keyDef{}, &ConfigError{Type: UnknownKey, Message: key}
	}
	return k, def, nil
}

// Get returns the typed value of key.
func (c *Configuration) Get(key string) (any, error) {
	_, def, err := lookupKey(key)
	if err != nil {
		return nil, err
	}
	return def.get(c), nil
}

// GetString renders the value of key as text, the form Set accepts.
func (c *Configuration) GetString(key string) (string, error) {
	v, err := c.Get(key)
	if err != nil {
		return "", err
	}
	return FormatValue(v), nil
}

// FormatValue renders a key value as text. Lists are comma separated.
func FormatValue(v any) string {
	switch x := v.(type) {
	case []string:
		return strings.Join(x, ",")
	case []int:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Set parses raw according to the kind of key and stores it.
func (c *Configuration) Set(key, raw string) error {
	k, def, err := lookupKey(key)
	if err != nil {
		return err
	}
	v, err := parseValue(def.kind, raw)
	if err != nil {
		return &ConfigError{
			Type:    InvalidValue,
			Message: fmt.Sprintf("%s = %q: expected %s", k, raw, def.kind),
			Err:     err,
		}
	}
	def.set(c, v)
	return nil
}

func parseValue(kind ValueKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindString:
		return raw, nil
	case KindBool:
		return strconv.ParseBool(raw)
	case KindInt:
		return strconv.Atoi(raw)
	case KindFloat:
		return strconv.ParseFloat(raw, 64)
	case KindList:
		return splitList(raw), nil
	case KindIntList:
		parts := splitList(raw)
		out := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported kind %s", kind)
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
