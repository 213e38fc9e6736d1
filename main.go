package main

import (
	"github.com/campuslink/campuslink/config"
	"github.com/campuslink/campuslink/models"
	"github.com/campuslink/campuslink/routes"
	"github.com/campuslink/campuslink/store"
	"github.com/campuslink/campuslink/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.College{},
		&models.EmailDomain{},
		&models.Designation{},
		&models.SignUpCode{},
		&models.Tag{},
		&models.File{},
		&models.Post{},
		&models.Reply{},
	)

	files := store.NewFileStore(db, cfg.MediaRoot)
	content := store.NewContentStore(db, files)
	votes := store.NewVoteLedger(db)

	r := routes.SetupRouter(db, files, content, votes)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
