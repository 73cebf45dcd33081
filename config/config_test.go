package config

import (
	"path/filepath"
	"testing"
)

func TestAppLocalDataDir_Linux(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	testCases := []struct {
		name string
		xdg  string
		want string
	}{
		{"xdg set", "/data/xdg", filepath.Join("/data/xdg", "com.example")},
		{"xdg unset", "", filepath.Join("/home/tester", ".local", "share", "com.example")},
		{"xdg relative", "relative/dir", filepath.Join("/home/tester", ".local", "share", "com.example")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("XDG_DATA_HOME", tc.xdg)
			got, err := appLocalDataDir("linux", "com.example")
			if err != nil {
				t.Fatalf("appLocalDataDir() failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("appLocalDataDir() mismatch: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAppLocalDataDir_Darwin(t *testing.T) {
	t.Setenv("HOME", "/Users/tester")

	got, err := appLocalDataDir("darwin", "com.example")
	if err != nil {
		t.Fatalf("appLocalDataDir() failed: %v", err)
	}
	want := filepath.Join("/Users/tester", "Library", "Application Support", "com.example")
	if got != want {
		t.Errorf("appLocalDataDir() mismatch: got %q, want %q", got, want)
	}
}

func TestAppLocalDataDir_Windows(t *testing.T) {
	t.Setenv("LOCALAPPDATA", "")
	if _, err := appLocalDataDir("windows", "com.example"); err == nil {
		t.Error("appLocalDataDir() should fail without LOCALAPPDATA")
	}

	t.Setenv("LOCALAPPDATA", "/appdata/local")
	got, err := appLocalDataDir("windows", "com.example")
	if err != nil {
		t.Fatalf("appLocalDataDir() failed: %v", err)
	}
	if want := filepath.Join("/appdata/local", "com.example"); got != want {
		t.Errorf("appLocalDataDir() mismatch: got %q, want %q", got, want)
	}
}

func TestAppLocalDataDir_EmptyIdentifier(t *testing.T) {
	if _, err := appLocalDataDir("linux", ""); err == nil {
		t.Error("appLocalDataDir() should reject an empty identifier")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("HOME", dataHome)
	t.Setenv("LOCALAPPDATA", dataHome)
	for _, key := range []string{"STORAGE_TYPE", "APP_IDENTIFIER", "LOCAL_STORAGE_PATH", "DATA_SOURCE_NAME", "S3_BUCKET_NAME", "S3_PREFIX", "API_TOKEN_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() failed: %v", err)
	}

	if cfg.AppIdentifier != DefaultAppIdentifier {
		t.Errorf("AppIdentifier mismatch: got %q", cfg.AppIdentifier)
	}
	if cfg.Storage.Type != "filesystem" {
		t.Errorf("Storage.Type mismatch: got %q, want filesystem", cfg.Storage.Type)
	}
	if filepath.Base(cfg.Storage.BasePath) != DefaultAppIdentifier {
		t.Errorf("Storage.BasePath should end in the identifier, got %q", cfg.Storage.BasePath)
	}
	if want := filepath.Join(cfg.Storage.BasePath, "canvas.db"); cfg.Storage.DataSourceName != want {
		t.Errorf("DataSourceName mismatch: got %q, want %q", cfg.Storage.DataSourceName, want)
	}
	if cfg.APITokenSecret != "" {
		t.Errorf("APITokenSecret should be empty, got %q", cfg.APITokenSecret)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("APP_IDENTIFIER", "com.other.app")
	t.Setenv("LOCAL_STORAGE_PATH", "/tmp/canvas")
	t.Setenv("DATA_SOURCE_NAME", "file::memory:")
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("S3_PREFIX", "desk/")
	t.Setenv("API_TOKEN_SECRET", "s3cret")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() failed: %v", err)
	}

	want := Storage{
		Type:           "s3",
		BasePath:       "/tmp/canvas",
		DataSourceName: "file::memory:",
		BucketName:     "bucket",
		Prefix:         "desk/",
	}
	if cfg.Storage != want {
		t.Errorf("Storage mismatch: got %+v, want %+v", cfg.Storage, want)
	}
	if cfg.AppIdentifier != "com.other.app" {
		t.Errorf("AppIdentifier mismatch: got %q", cfg.AppIdentifier)
	}
	if cfg.APITokenSecret != "s3cret" {
		t.Errorf("APITokenSecret mismatch: got %q", cfg.APITokenSecret)
	}
}
