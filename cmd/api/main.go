package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/EveryDayApps/LinkLock-sub001/internal/config"
	"github.com/EveryDayApps/LinkLock-sub001/internal/crypto"
	"github.com/EveryDayApps/LinkLock-sub001/internal/database"
	"github.com/EveryDayApps/LinkLock-sub001/internal/jobs"
	"github.com/EveryDayApps/LinkLock-sub001/internal/logger"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/server"
	"github.com/EveryDayApps/LinkLock-sub001/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Setup logging with rotation
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		log.Fatalf("ensure log directory: %v", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "linklock.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	mw := io.MultiWriter(os.Stdout, rotator)
	logger.Init(!cfg.IsProduction(), mw)
	log.SetOutput(mw)

	if len(os.Args) > 1 && os.Args[1] == "reset-master-password" {
		resetMasterPassword(cfg, os.Args[2:])
		return
	}

	if cfg.JWTSecret == "" {
		// Ephemeral secret: management sessions do not survive a restart.
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			log.Fatalf("generate jwt secret: %v", err)
		}
		cfg.JWTSecret = hex.EncodeToString(raw)
		logger.Log().Warn("LINKLOCK_JWT_SECRET not set, using an ephemeral secret")
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	logger.WithFields(map[string]interface{}{"version": version.Full()}).Infof("starting %s", version.Name)

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	cronRunner, err := jobs.Start(srv.App)
	if err != nil {
		log.Fatalf("start maintenance jobs: %v", err)
	}
	defer cronRunner.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithFields(map[string]interface{}{"port": cfg.HTTPPort}).Info("listening")
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// resetMasterPassword replaces the stored hash from the CLI. Encrypted
// records cannot be re-keyed without the old password, so they are cleared;
// the usage text says as much.
func resetMasterPassword(cfg config.Config, args []string) {
	if len(args) != 1 {
		log.Fatalf("Usage: %s reset-master-password <new-password>\nWARNING: stored rules, profiles and sessions are unrecoverable without the old password and will be cleared.", os.Args[0])
	}
	newPassword := args[0]

	passwords := crypto.NewPasswordService()
	if err := passwords.ValidateStrength(newPassword); err != nil {
		log.Fatalf("weak password: %v", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&models.StoredRecord{}, &models.SecurityConfig{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var secCfg models.SecurityConfig
	if err := db.First(&secCfg).Error; err != nil {
		log.Fatalf("security config not found: %v", err)
	}

	secCfg.MasterPasswordHash = passwords.HashPassword(newPassword)
	if err := db.Save(&secCfg).Error; err != nil {
		log.Fatalf("save security config: %v", err)
	}

	// Old-key ciphertexts are dead weight once the hash changes.
	if err := db.Where("1 = 1").Delete(&models.StoredRecord{}).Error; err != nil {
		log.Fatalf("clear stored records: %v", err)
	}

	log.Printf("Master password reset. Stored policy records were cleared.")
}
