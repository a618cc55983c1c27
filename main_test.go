package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"astarviz/session"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadConfig(t *testing.T) {
	Convey("When the config file does not exist", t, func() {
		cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		So(err, ShouldBeNil)
		So(cfg, ShouldResemble, session.DefaultConfig())
	})

	Convey("When the config file exists", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		So(os.WriteFile(path, []byte("kind: session\ndef:\n  gridSize: 12\n"), 0o644), ShouldBeNil)

		cfg, err := loadConfig(path)
		So(err, ShouldBeNil)
		So(cfg.GridSize, ShouldEqual, 12)
	})

	Convey("The shipped config is valid", t, func() {
		cfg, err := loadConfig("./config.yaml")
		So(err, ShouldBeNil)
		So(cfg.GridSize, ShouldEqual, session.DefaultGridSize)
	})
}

func TestDebugRun(t *testing.T) {
	Convey("The debug layout solves", t, func() {
		So(runDebug(context.Background()), ShouldBeNil)
	})
}

func TestGetEnvWithDefault(t *testing.T) {
	Convey("Env values override defaults", t, func() {
		t.Setenv("ASTARVIZ_TEST_PORT", "9090")
		So(getEnvWithDefault("ASTARVIZ_TEST_PORT", "8080"), ShouldEqual, "9090")
		So(getEnvWithDefault("ASTARVIZ_TEST_UNSET", "8080"), ShouldEqual, "8080")
	})
}
