// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the fetch timeout (one value for every method)
// and the per-method response-size caps from an optional JSON or YAML
// file, falling back to the
// built-in recommended defaults for anything the file doesn't set.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
)

// configFileEnv is checked for a config path when none is passed to
// Load explicitly.
const configFileEnv = "CERTNET_CONFIG_FILE"

// fileFormat mirrors the teacher's detectConfigFormat/unmarshalConfig
// split between JSON and YAML.
type fileFormat int

const (
	formatJSON fileFormat = iota
	formatYAML
)

func detectFormat(path string) fileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// fileConfig is the on-disk shape. Durations are expressed in whole
// seconds (matching the teacher's TimeoutSeconds convention) rather
// than Go duration strings, since every config file in the pack uses
// plain integer seconds for timeouts.
type fileConfig struct {
	TimeoutSeconds       int `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
	MaxResponseBytesAIA  int `json:"maxResponseBytesAia,omitempty" yaml:"maxResponseBytesAia,omitempty"`
	MaxResponseBytesOCSP int `json:"maxResponseBytesOcsp,omitempty" yaml:"maxResponseBytesOcsp,omitempty"`
	MaxResponseBytesCRL  int `json:"maxResponseBytesCrl,omitempty" yaml:"maxResponseBytesCrl,omitempty"`
}

func unmarshal(data []byte, fc *fileConfig, format fileFormat) error {
	switch format {
	case formatYAML:
		if err := yaml.Unmarshal(data, fc); err != nil {
			return fmt.Errorf("certnet/config: parse YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, fc); err != nil {
			return fmt.Errorf("certnet/config: parse JSON config: %w", err)
		}
	}
	return nil
}

// Load builds a [certnet.Defaults], starting from the package's
// recommended defaults, optionally overridden by a JSON or YAML file.
//
// Resolution order, matching the teacher's loadConfig:
//  1. Built-in defaults are set.
//  2. If path is empty, the CERTNET_CONFIG_FILE environment variable
//     supplies one.
//  3. If a path is available, its contents override the defaults,
//     field by field; a non-positive value in the file is treated as
//     "not set" and the default is kept.
func Load(path string) (certnet.Defaults, error) {
	d := certnet.Defaults{
		Timeout:              certnet.DefaultTimeout,
		MaxResponseBytesAIA:  certnet.DefaultMaxResponseBytesAIA,
		MaxResponseBytesOCSP: certnet.DefaultMaxResponseBytesOCSP,
		MaxResponseBytesCRL:  certnet.DefaultMaxResponseBytesCRL,
	}

	if path == "" {
		path = os.Getenv(configFileEnv)
	}
	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return certnet.Defaults{}, fmt.Errorf("certnet/config: read config file: %w", err)
	}

	var fc fileConfig
	if err := unmarshal(data, &fc, detectFormat(path)); err != nil {
		return certnet.Defaults{}, err
	}

	if fc.TimeoutSeconds > 0 {
		d.Timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if fc.MaxResponseBytesAIA > 0 {
		d.MaxResponseBytesAIA = fc.MaxResponseBytesAIA
	}
	if fc.MaxResponseBytesOCSP > 0 {
		d.MaxResponseBytesOCSP = fc.MaxResponseBytesOCSP
	}
	if fc.MaxResponseBytesCRL > 0 {
		d.MaxResponseBytesCRL = fc.MaxResponseBytesCRL
	}
	return d, nil
}
