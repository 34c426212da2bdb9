package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/auth"
	"github.com/diewo77/bizdesk/internal/db"
	"github.com/diewo77/bizdesk/internal/models"
	"github.com/diewo77/bizdesk/internal/policy"
	"github.com/diewo77/bizdesk/internal/server"
	"github.com/diewo77/bizdesk/internal/storage"
	"github.com/diewo77/bizdesk/internal/voice"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  `Connect to the database, migrate it, seed the plans when enabled and serve the API until SIGINT or SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	gdb, err := db.Connect(ctx, a.dbOptions())
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	sessions, err := auth.NewSessions(a.cfg.Session.Secret,
		auth.WithTTL(a.cfg.Session.TTL),
		auth.WithSecureCookies(a.cfg.Session.Secure),
		auth.WithVerifier(userExists(gdb)),
	)
	if err != nil {
		return err
	}
	store, err := a.blobStore()
	if err != nil {
		return err
	}
	matcher, err := a.matcher()
	if err != nil {
		return err
	}

	handler := server.New(server.Deps{
		DB:           gdb,
		Sessions:     sessions,
		Entitlements: policy.NewEntitlements(gdb, a.cfg.Entitlements.CacheTTL),
		Matcher:      matcher,
		Store:        store,
		Logger:       a.log,
		DefaultLang:  a.cfg.I18n.DefaultLang,
	})
	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}
	a.log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", a.cfg.Env), zap.String("storage", a.cfg.Storage.Driver))
	return server.ListenAndServe(ctx, srv, a.log)
}

// userExists drops sessions of deleted users.
func userExists(gdb *gorm.DB) auth.UserVerifier {
	return func(ctx context.Context, uid uint) bool {
		var count int64
		if err := gdb.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	}
}

func (a *app) blobStore() (storage.BlobStore, error) {
	switch a.cfg.Storage.Driver {
	case "s3":
		return storage.NewS3Store(a.cfg.Storage.Bucket, a.cfg.Storage.Region, a.cfg.Storage.Prefix)
	case "local":
		return storage.NewLocalStore(a.cfg.Storage.Dir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
	}
}

func (a *app) matcher() (*voice.Matcher, error) {
	table := voice.DefaultTable()
	if path := a.cfg.Voice.Table; path != "" {
		t, err := voice.LoadTable(path)
		if err != nil {
			return nil, err
		}
		table = t
		a.log.Info("voice table loaded", zap.String("path", path), zap.Int("commands", len(table)))
	}
	return voice.NewMatcher(table,
		voice.WithDefaultLocale(a.cfg.Voice.DefaultLocale),
		voice.WithThreshold(a.cfg.Voice.Threshold),
	), nil
}
