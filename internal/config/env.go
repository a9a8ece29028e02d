package config

import (
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override, e.g. CWTRAIN_PRACTICE_WPM.
const EnvPrefix = "CWTRAIN_"

// ApplyEnv overwrites cfg fields whose environment variable is set.
func ApplyEnv(cfg *FileConfig) error {
	var fromEnv FileConfig
	if err := env.ParseWithOptions(&fromEnv, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse env: %w", err)
	}
	overlay(reflect.ValueOf(cfg).Elem(), reflect.ValueOf(fromEnv))
	return nil
}

// overlay copies every non-nil pointer of src into dst, table by table.
func overlay(dst, src reflect.Value) {
	for i := 0; i < src.NumField(); i++ {
		sf, df := src.Field(i), dst.Field(i)
		switch sf.Kind() {
		case reflect.Struct:
			overlay(df, sf)
		case reflect.Ptr:
			if !sf.IsNil() {
				df.Set(sf)
			}
		}
	}
}
