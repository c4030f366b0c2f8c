package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"eurostat/internal/engine"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value := os.Getenv(envName)
		if alt := field.Tag.Get("envAlt"); value == "" && alt != "" {
			value = os.Getenv(alt)
		}
		if value == "" {
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Chart profile validation errors.
var (
	ErrInvalidCanvas = errors.New("bubble.width and bubble.height must be positive and exceed offset_y")
	ErrInvalidDomain = errors.New("bubble domain minimum must not exceed its maximum")
)

type profileFile struct {
	Bubble engine.BubbleProfile `yaml:"bubble"`
}

// LoadBubbleProfile reads a YAML chart profile on top of the defaults.
// An empty path returns the defaults.
func LoadBubbleProfile(path string) (engine.BubbleProfile, error) {
	pf := profileFile{Bubble: engine.DefaultBubbleProfile()}
	if path == "" {
		return pf.Bubble, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return engine.BubbleProfile{}, fmt.Errorf("read chart profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return engine.BubbleProfile{}, fmt.Errorf("parse chart profile: %w", err)
	}
	if err := validateProfile(pf.Bubble); err != nil {
		return engine.BubbleProfile{}, err
	}
	return pf.Bubble, nil
}

func validateProfile(p engine.BubbleProfile) error {
	if p.Width <= 0 || p.Height <= 0 || p.OffsetY < 0 || p.OffsetY >= p.Height {
		return ErrInvalidCanvas
	}
	if p.SVMin > p.SVMax || p.PIBMin > p.PIBMax || p.POPMin > p.POPMax || p.RadiusMin > p.RadiusMax {
		return ErrInvalidDomain
	}
	return nil
}
