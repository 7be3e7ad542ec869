// Command arcmesh-studio is the desktop editor: a menu script on one side,
// the tessellated buttons on the other.
package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/holodemo/arcmesh/pkg/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	configPath := pflag.String("config", "", "config file (default ./"+config.FileName+" if present)")
	envFile := pflag.String("env-file", ".env", "file of ARCMESH_* variables to load")
	pflag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("load env", "err", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	app, err := NewAppWithConfig(cfg)
	if err != nil {
		slog.Error("start", "err", err)
		os.Exit(1)
	}

	err = wails.Run(&options.App{
		Title:  "arcmesh",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 16, G: 18, B: 24, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		app.log.Error("wails", "err", err)
		os.Exit(1)
	}
}
