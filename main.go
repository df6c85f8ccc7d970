package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"Envolvente/internal/auth"
	"Envolvente/internal/calc/check"
	"Envolvente/internal/calc/construction"
	"Envolvente/internal/calc/fshobst"
	"Envolvente/internal/calc/indicators"
	"Envolvente/internal/calc/premium/autodesign"
	"Envolvente/internal/calc/premium/batch"
	"Envolvente/internal/calc/premium/importer"
	"Envolvente/internal/calc/premium/recommend"
	"Envolvente/internal/calc/report"
	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/config"
	"Envolvente/internal/logger"
	"Envolvente/internal/metrics"
	"Envolvente/internal/project"
	"Envolvente/internal/repo"
)

var wg sync.WaitGroup

type userStore interface {
	repo.Repository
	repo.ProjectRepository
}

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(r *mux.Router, cfg *config.Config, store userStore, log *zap.SugaredLogger, met *metrics.Metrics) {
	authEnv := &auth.Authenv{JWTkey: cfg.TokenKey, Repo: store, Log: log, Secure: cfg.TLS()}
	obs := met.Observer(log)

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	r.Use(met.Middleware)
	r.Handle("/metrics", met.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	evaluated := func(kind string, f http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			met.Evaluated(kind)
			f(w, r)
		}
	}

	uvalueH := &uvalue.Handler{Log: obs}
	indicatorsH := &indicators.Handler{Log: obs}
	checkH := &check.Handler{Log: obs}
	reportH := &report.Handler{Log: obs}
	importerH := &importer.Handler{Log: obs}
	batchH := &batch.Handler{Log: obs}
	recommendH := &recommend.Handler{Log: obs}

	secureApi.HandleFunc("/envelope/uvalues", evaluated("uvalues", uvalueH.Calc)).Methods("POST")
	secureApi.HandleFunc("/envelope/indicators", evaluated("indicators", indicatorsH.Calc)).Methods("POST")
	secureApi.HandleFunc("/envelope/check", evaluated("check", checkH.Calc)).Methods("POST")
	secureApi.HandleFunc("/envelope/report/pdf", evaluated("report", reportH.Generate)).Methods("POST")
	secureApi.HandleFunc("/envelope/import", evaluated("import", importerH.Model)).Methods("POST")
	secureApi.HandleFunc("/envelope/batch", evaluated("batch", batchH.Calc)).Methods("POST")
	secureApi.HandleFunc("/envelope/limits", evaluated("limits", recommendH.Limits)).Methods("POST")

	fshobstH := &fshobst.Handler{}
	constructionH := &construction.Handler{}
	autodesignH := &autodesign.Handler{}

	secureApi.HandleFunc("/tools/fshobst", fshobstH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/construction/wall", constructionH.Wall).Methods("POST")
	secureApi.HandleFunc("/tools/construction/window", constructionH.Window).Methods("POST")
	secureApi.HandleFunc("/tools/autodesign", autodesignH.Insulation).Methods("POST")

	projectH := &project.ProjectHandler{Repo: store, Log: obs}
	secureApi.HandleFunc("/projects", projectH.List).Methods("GET")
	secureApi.HandleFunc("/projects", projectH.Create).Methods("POST")
	secureApi.HandleFunc("/projects/{id}", projectH.Get).Methods("GET")
	secureApi.HandleFunc("/projects/{id}", projectH.Update).Methods("PUT")
	secureApi.HandleFunc("/projects/{id}", projectH.Delete).Methods("DELETE")
	secureApi.HandleFunc("/projects/{id}/indicators", evaluated("indicators", projectH.Indicators)).Methods("GET")
	secureApi.HandleFunc("/projects/{id}/uvalues", evaluated("uvalues", projectH.UValues)).Methods("GET")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	zl, err := logger.New(cfg.Env)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer zl.Sync()
	log := zl.Sugar()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := auth.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("database unavailable", "err", err)
	}
	defer db.Close()
	if err := repo.Migrate(ctx, db); err != nil {
		log.Fatalw("migrate", "err", err)
	}

	router := mux.NewRouter()
	HandleList(router, cfg, repo.NewPostgresUserDB(db), log, metrics.New())

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: CORS(router),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infow("starting server", "addr", cfg.Addr, "tls", cfg.TLS())
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Infow("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown", "err", err)
	}
	wg.Wait()
	log.Infow("server stopped")
}
