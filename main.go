package main

import (
	"embed"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/chazu/mirage/pkg/config"
	"github.com/chazu/mirage/pkg/logx"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	path := config.Path()
	cfg, err := config.Load(path)
	logx.SetLogger(logx.New(cfg.Log.Level, os.Stderr))
	log := logx.Logger()
	if err != nil {
		log.Warn("using default config", "path", path, "err", err)
	}

	app := NewAppWithConfig(cfg)

	err = wails.Run(&options.App{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Error("wails exited", "err", err)
		os.Exit(1)
	}
}
