package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mbacelar/herdlog/internal/config"
	"github.com/mbacelar/herdlog/internal/domain/models"
	"github.com/mbacelar/herdlog/internal/repository/localdb"
	"github.com/mbacelar/herdlog/internal/service/breeding"
	commandsvc "github.com/mbacelar/herdlog/internal/service/commands"
	farmsvc "github.com/mbacelar/herdlog/internal/service/farms"
	healthsvc "github.com/mbacelar/herdlog/internal/service/health"
	historysvc "github.com/mbacelar/herdlog/internal/service/history"
	pasturesvc "github.com/mbacelar/herdlog/internal/service/pastures"
	"github.com/mbacelar/herdlog/internal/storage"
	"github.com/mbacelar/herdlog/pkg/logger"
)

const usage = `herdlog - livestock management log

Usage:
  herdlog farm add <name> [location=... notes=...]
  herdlog farm list | select <id> | update <id> k=v... | remove <id>
  herdlog pasture add <name> [large=N small=N area=H notes=...]
  herdlog pasture list | update <id> k=v... | remove <id>
  herdlog pregnancy add <cowId> [bull=... coverage=YYYY-MM-DD due=YYYY-MM-DD pasture=<id> notes=...]
  herdlog pregnancy list | update <id> k=v... | remove <id>
  herdlog disease add <animalId> <diseaseName> [date=... status=... treatment=... vet=... pasture=... notes=...]
  herdlog disease list | update <id> k=v... | remove <id>
  herdlog history [pasture|pregnancy|disease]
  herdlog reset confirm`

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := localdb.Open(cfg.Store.Path)
	if err != nil {
		baseLogger.Fatal("failed to open local store", zap.String("path", cfg.Store.Path), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close local store", zap.Error(err))
		}
	}()

	loc := cfg.Location()

	farmCol := storage.NewCollection[models.Farm](store, storage.BucketFarms, logger.Named(baseLogger, "col.farms"))
	pastureCol := storage.NewCollection[models.Pasture](store, storage.BucketPastures, logger.Named(baseLogger, "col.pastures"))
	pregnancyCol := storage.NewCollection[models.PregnancyRecord](store, storage.BucketPregnancies, logger.Named(baseLogger, "col.pregnancies"))
	diseaseCol := storage.NewCollection[models.DiseaseRecord](store, storage.BucketDiseases, logger.Named(baseLogger, "col.diseases"))
	historyCol := storage.NewCollection[models.HistoryEntry](store, storage.BucketHistory, logger.Named(baseLogger, "col.history"))

	recorder := historysvc.NewRecorder(historyCol, logger.Named(baseLogger, "svc.history"))
	histSvc := historysvc.NewService(historyCol, loc, logger.Named(baseLogger, "svc.history"))
	farmSvc := farmsvc.NewService(farmCol, store, logger.Named(baseLogger, "svc.farms"))
	farmSvc.OnFarmChanged(func(farmID string) {
		baseLogger.Debug("active farm changed", zap.String("farmId", farmID))
	})
	pastureSvc := pasturesvc.NewService(pastureCol, pregnancyCol, diseaseCol, recorder, logger.Named(baseLogger, "svc.pastures"))
	breedingSvc := breeding.NewService(pregnancyCol, farmSvc, recorder, logger.Named(baseLogger, "svc.breeding"))
	healthSvc := healthsvc.NewService(diseaseCol, farmSvc, recorder, logger.Named(baseLogger, "svc.health"))

	dispatcher := commandsvc.NewService(farmSvc, pastureSvc, breedingSvc, healthSvc, histSvc, store, loc, logger.Named(baseLogger, "svc.commands"))

	cmd := models.ParseCommand(os.Args[1:])
	if cmd.Type == models.CommandUnknown {
		fmt.Println(usage)
		if cmd.Raw != "" {
			os.Exit(2)
		}
		return
	}

	reply, err := dispatcher.HandleCommand(cmd)
	if err != nil {
		switch {
		case errors.Is(err, commandsvc.ErrInvalidArguments), errors.Is(err, commandsvc.ErrUnsupportedCommand):
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		case errors.Is(err, breeding.ErrNoActiveFarm), errors.Is(err, healthsvc.ErrNoActiveFarm):
			fmt.Fprintln(os.Stderr, "No active farm. Run 'herdlog farm select <id>' first.")
			os.Exit(1)
		default:
			baseLogger.Error("command failed", zap.String("command", cmd.Raw), zap.Error(err))
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if !farmSvc.HasFarms() && cmd.Type != models.CommandFarm {
		reply += "\n\nTip: register a farm with 'herdlog farm add <name>' to scope pregnancy and disease records."
	}

	fmt.Println(reply)
}
