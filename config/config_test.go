package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.FrameRate != 30 {
		t.Errorf("framerate = %d, want 30", cfg.FrameRate)
	}
	if cfg.StartGrace() != 2*time.Second {
		t.Errorf("start grace = %s, want 2s", cfg.StartGrace())
	}
	if cfg.StopGrace() != 5*time.Second {
		t.Errorf("stop grace = %s, want 5s", cfg.StopGrace())
	}
	if cfg.ProbeTimeout() != 10*time.Second {
		t.Errorf("probe timeout = %s, want 10s", cfg.ProbeTimeout())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.OutputDir == "" {
		t.Error("output dir must have a default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "framerate: 60\noutput_dir: /tmp/recordings\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FrameRate != 60 {
		t.Errorf("framerate = %d, want 60", cfg.FrameRate)
	}
	if cfg.OutputDir != "/tmp/recordings" {
		t.Errorf("output dir = %q", cfg.OutputDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.StopGraceSeconds != 5 {
		t.Errorf("stop grace seconds = %d, want default 5", cfg.StopGraceSeconds)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DESKREC_FRAMERATE", "24")
	t.Setenv("DESKREC_FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FrameRate != 24 {
		t.Errorf("framerate = %d, want 24", cfg.FrameRate)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("ffmpeg path = %q", cfg.FFmpegPath)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
