// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet/config"
)

func TestLoad_NoPathReturnsDefaults(t *testing.T) {
	d, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Timeout != certnet.DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", d.Timeout, certnet.DefaultTimeout)
	}
	if d.MaxResponseBytesAIA != certnet.DefaultMaxResponseBytesAIA {
		t.Errorf("MaxResponseBytesAIA = %d, want %d", d.MaxResponseBytesAIA, certnet.DefaultMaxResponseBytesAIA)
	}
}

func TestLoad_JSONOverridesSomeFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	writeFile(t, path, `{"timeoutSeconds": 30, "maxResponseBytesCrl": 1048576}`)

	d, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", d.Timeout)
	}
	if d.MaxResponseBytesCRL != 1048576 {
		t.Errorf("MaxResponseBytesCRL = %d, want 1048576", d.MaxResponseBytesCRL)
	}
	// Untouched fields keep the built-in default.
	if d.MaxResponseBytesAIA != certnet.DefaultMaxResponseBytesAIA {
		t.Errorf("MaxResponseBytesAIA = %d, want default %d", d.MaxResponseBytesAIA, certnet.DefaultMaxResponseBytesAIA)
	}
}

func TestLoad_YAMLOverridesSomeFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	writeFile(t, path, "timeoutSeconds: 5\nmaxResponseBytesAia: 2048\n")

	d, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", d.Timeout)
	}
	if d.MaxResponseBytesAIA != 2048 {
		t.Errorf("MaxResponseBytesAIA = %d, want 2048", d.MaxResponseBytesAIA)
	}
}

func TestLoad_NonPositiveValuesTreatedAsNotSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	writeFile(t, path, `{"timeoutSeconds": 0, "maxResponseBytesCrl": -1}`)

	d, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Timeout != certnet.DefaultTimeout {
		t.Errorf("Timeout = %s, want default %s", d.Timeout, certnet.DefaultTimeout)
	}
	if d.MaxResponseBytesCRL != certnet.DefaultMaxResponseBytesCRL {
		t.Errorf("MaxResponseBytesCRL = %d, want default %d", d.MaxResponseBytesCRL, certnet.DefaultMaxResponseBytesCRL)
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err == nil {
		t.Fatal("Load() error = nil, want error for missing file")
	}
}

func TestLoad_MalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	writeFile(t, path, `{not valid json`)

	_, err := config.Load(path)
	if err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestLoad_EnvVarFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	writeFile(t, path, `{"timeoutSeconds": 42}`)

	t.Setenv("CERTNET_CONFIG_FILE", path)

	d, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Timeout != 42*time.Second {
		t.Errorf("Timeout = %s, want 42s", d.Timeout)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
}
