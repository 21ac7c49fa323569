// Command overworldd runs the UDP overworld server: it loads the
// asset bundle and tiled maps from a data directory, registers the
// default area, and listens until it's signaled to stop.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/lguibr/overworld/area"
	"github.com/lguibr/overworld/assets"
	"github.com/lguibr/overworld/server"
	"github.com/lguibr/overworld/tiled"
)

const defaultDataDir = "data"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := server.DefaultConfig()
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			logger.Error("invalid PORT", "value", portStr, "err", err)
			os.Exit(1)
		}
		cfg.Port = uint16(port)
	}

	dataDir := os.Getenv("OVERWORLD_DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir
	}

	s := server.New(cfg, logger)

	if err := loadWorld(s, dataDir); err != nil {
		logger.Error("failed to load world data", "dataDir", dataDir, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("starting overworld server", "addr", addr)
	if err := s.Listen(ctx, addr); err != nil && ctx.Err() == nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
	logger.Info("overworld server stopped")
}

// loadWorld ingests every file under dataDir/assets into the asset
// store (keyed /server/assets/<relative path>, the form map tileset
// references are rewritten to), parses dataDir/maps/<name>.tmx files into areas, and marks
// the first area found as the default join target. Mirrors the
// teacher's startup-time config/engine wiring in root main.go, adapted
// from "one RoomManagerActor" to "one world populated before Listen".
func loadWorld(s *server.Server, dataDir string) error {
	assetsDir := filepath.Join(dataDir, "assets")
	if err := filepath.WalkDir(assetsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		rel, relErr := filepath.Rel(assetsDir, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		key := "/server/assets/" + filepath.ToSlash(rel)
		s.Store().Set(key, assets.LoadFromMemory(key, data))
		return nil
	}); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("overworldd: load assets: %w", err)
	}

	mapsDir := filepath.Join(dataDir, "maps")
	entries, err := os.ReadDir(mapsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("overworldd: read maps dir: %w", err)
	}

	first := true
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".tmx" {
			continue
		}
		path := filepath.Join(mapsDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("overworldd: read map %s: %w", path, err)
		}
		m, err := tiled.Parse(string(data))
		if err != nil {
			return fmt.Errorf("overworldd: parse map %s: %w", path, err)
		}

		areaID := strings.TrimSuffix(entry.Name(), ".tmx")
		a := area.New(areaID, m)
		for _, dep := range m.Dependencies() {
			a.RequireAsset(dep)
		}
		s.World().AddArea(a)
		if first {
			s.World().SetDefaultAreaID(areaID)
			first = false
		}
	}
	return nil
}
