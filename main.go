package main

import (
	"fmt"
	"log"
	"net/http"

	"pagenest/config/database"
	"pagenest/pkg/config"
	"pagenest/pkg/logger"
	"pagenest/router"
	"pagenest/socket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)
	defer logger.Log.Sync() //nolint:errcheck

	db := database.Connect(cfg.Database)
	defer db.Close()

	hub := socket.NewHub()
	go hub.Run()

	handler := router.Setup(db, hub, cfg)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Sugar.Infof("pagenest listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Sugar.Fatalf("Server failed: %v", err)
	}
}
