package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"mip/config"
	"mip/internal/accounts"
	"mip/internal/auth"
	"mip/internal/db"
	"mip/internal/health"
	"mip/internal/history"
	"mip/internal/logs"
	"mip/internal/middleware"
	"mip/internal/models"
)

const (
	apiName    = "mIP API"
	apiVersion = "1.0.0"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	handler    http.Handler
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

// Initialize поднимает логи, БД, сервисы и роутер. Любая ошибка здесь фатальна.
func (a *App) Initialize(cfg *config.Config) {
	if err := a.init(cfg); err != nil {
		logs.Logger.Fatalf("init: %v", err)
	}
}

func (a *App) init(cfg *config.Config) error {
	a.cfg = cfg
	a.ctx, a.cancel = context.WithCancel(context.Background())

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB (опционально) */
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("db open failed: %w", err)
	}
	a.db = d
	if a.db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.Migrate(ctx, a.db, a.cfg.Database.Driver); err != nil {
			return fmt.Errorf("db migrate failed: %w", err)
		}
	} else {
		logs.Logger.Warn("database driver is empty: using in-memory stores")
	}

	/* 3) Сервисы */
	tokens, err := auth.NewTokenService(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	st := newStores(a.db)

	/* 4) Router; цепочка оборачивает роутер целиком, чтобы 404/405 и preflight шли через неё же */
	a.Router = mux.NewRouter()
	a.handler = chain(a.Router,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
		middleware.SecurityHeaders,
		middleware.CORS(a.cfg.AllowedOrigins()),
	)
	a.Router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	a.Router.NotFoundHandler = http.HandlerFunc(notFound)

	/* 5) Маршруты */
	a.Router.HandleFunc("/", a.info).Methods(http.MethodGet)
	health.RegisterRoutes(a.Router, a.db)
	accounts.RegisterRoutes(a.Router, accounts.NewHandler(st.users, auth.NewBcryptHasher(), tokens))
	history.RegisterRoutes(a.Router, history.NewHandler(st.histories), tokens)

	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := rt.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			return nil
		}
		logs.Logger.Debugf("route: %-8v %s", methods, path)
		return nil
	})
	return nil
}

// chain: первый middleware — внешний.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Handler — корневой обработчик со всей цепочкой middleware.
func (a *App) Handler() http.Handler { return a.handler }

// info — GET /: имя, версия и режим сервиса.
func (a *App) info(w http.ResponseWriter, _ *http.Request) {
	models.WriteJSON(w, http.StatusOK, map[string]string{
		"message":     apiName,
		"version":     apiVersion,
		"status":      "running",
		"environment": a.cfg.App.Env,
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	models.WriteJSON(w, http.StatusNotFound, models.ErrorBody{
		Message:    "Route " + r.Method + " " + r.URL.Path + " not found",
		Error:      http.StatusText(http.StatusNotFound),
		StatusCode: http.StatusNotFound,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	models.WriteJSON(w, http.StatusMethodNotAllowed, models.ErrorBody{
		Message:    "Method " + r.Method + " not allowed on " + r.URL.Path,
		Error:      http.StatusText(http.StatusMethodNotAllowed),
		StatusCode: http.StatusMethodNotAllowed,
	})
}

func (a *App) Run() error {
	if a.handler == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}
	defer func() {
		if err := db.Close(a.db); err != nil {
			logs.Logger.Errorf("db close: %v", err)
		}
	}()

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case s := <-sigs:
			logs.Logger.Infof("shutdown signal: %s", s)
			a.cancel()
		case <-a.ctx.Done():
		}
	}()

	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logs.Logger.Infof("HTTP listening on %s (env=%s)", bind, a.cfg.App.Env)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case <-a.ctx.Done():
	case err := <-errc:
		a.cancel()
		return fmt.Errorf("http server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}

// Stop останавливает Run так же, как сигнал.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
}
