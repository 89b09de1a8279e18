package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/snapfs/snapfs/pkg/checkout"
	"github.com/snapfs/snapfs/pkg/config"
	"github.com/snapfs/snapfs/pkg/importer"
	"github.com/snapfs/snapfs/pkg/store"
)

// service holds everything a command needs to talk to the checkout,
// plus the handles that must be released on exit.
type service struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.SQLiteStore
	helper   *importer.Helper
	checkout *checkout.Checkout
}

// openService loads configuration, opens the byte-store, starts the
// import helper, and assembles the checkout.
func openService(cmd *cobra.Command) (*service, error) {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.HelperPath == "" {
		return nil, fmt.Errorf("helper_path is not configured")
	}
	if cfg.RepoPath == "" {
		return nil, fmt.Errorf("repo_path is not configured")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := store.OpenSQLite(store.SQLiteConfig{Path: cfg.StorePath, Logger: logger})
	if err != nil {
		return nil, err
	}

	helper, err := importer.StartHelper(cfg.HelperPath, cfg.RepoPath, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	blobs := store.NewBlobInfoStore(st)
	co := checkout.New(checkout.Config{
		Store:       st,
		Importer:    importer.New(helper.Channel(), blobs),
		CacheConfig: cfg.CacheConfig(),
		Logger:      logger,
	})

	return &service{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		helper:   helper,
		checkout: co,
	}, nil
}

// close releases the helper and the byte-store.
func (s *service) close() {
	if err := s.helper.Close(); err != nil {
		s.logger.Error("helper shutdown", "error", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("store shutdown", "error", err)
	}
}
