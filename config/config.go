/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package config loads rechunk bucket configuration files.
//
// YAML, JSON, JSONC, and TOML files are supported. A single string given for
// "only" or "except" is read as a one-element list. Unknown keys and values
// of the wrong type are reported as configuration errors.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"

	"bennypowers.dev/rechunk/bucket"
	"bennypowers.dev/rechunk/fs"
)

// FileNames are the config file names Find looks for, in order.
var FileNames = []string{
	"rechunk.yaml",
	"rechunk.yml",
	"rechunk.json",
	"rechunk.jsonc",
	"rechunk.toml",
}

// ErrNotFound is returned by Find when no config file exists.
var ErrNotFound = errors.New("no rechunk config file found")

// Config is the decoded configuration.
type Config struct {
	Buckets []bucket.Spec `mapstructure:"buckets"`
}

// Registry validates the configured buckets.
func (c *Config) Registry() (*bucket.Registry, error) {
	return bucket.New(c.Buckets)
}

// Find returns the path of the first config file in dir.
func Find(fsys fs.FileSystem, dir string) (string, error) {
	if path, ok := fs.FindFile(fsys, dir, FileNames...); ok {
		return path, nil
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNotFound, dir, strings.Join(FileNames, ", "))
}

// Load reads and decodes a config file. The format follows the extension.
func Load(fsys fs.FileSystem, path string) (*Config, error) {
	configType, err := typeOf(path)
	if err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data, configType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes config data of the given type (yaml, json, jsonc, toml).
func Parse(data []byte, configType string) (*Config, error) {
	switch configType {
	case "json", "jsonc":
		data = jsonc.ToJSON(data)
		configType = "json"
	}

	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var cfg Config
	err := v.Unmarshal(&cfg,
		viper.DecodeHook(mapstructure.DecodeHookFuncType(stringToSlice)),
		func(dc *mapstructure.DecoderConfig) {
			dc.ErrorUnused = true
			dc.WeaklyTypedInput = false
		},
	)
	if err != nil {
		return nil, &bucket.ConfigurationError{Index: -1, Field: "buckets", Err: err}
	}
	return &cfg, nil
}

var stringSliceType = reflect.TypeOf([]string(nil))

// stringToSlice lifts a lone string into a one-element list.
func stringToSlice(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to == stringSliceType {
		return []string{data.(string)}, nil
	}
	return data, nil
}

func typeOf(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	case ".jsonc":
		return "jsonc", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("unsupported config file %s: expected .yaml, .yml, .json, .jsonc, or .toml", path)
	}
}
