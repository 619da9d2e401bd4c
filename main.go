package main

import (
	"github.com/joho/godotenv"

	"mip/config"
	"mip/internal/logs"
	"mip/server"
)

func main() {
	// .env необязателен: в контейнере переменные приходят снаружи
	if err := godotenv.Load(); err != nil {
		logs.Logger.Debugf(".env not loaded: %v", err)
	}

	cfg := config.MustLoad()
	app := &server.App{}
	app.Initialize(cfg)
	if err := app.Run(); err != nil {
		logs.Logger.Fatal(err)
	}
}
