package main

import (
	auth "Acero/internal/auth"
	rebar "Acero/internal/calc/rebar"
	report "Acero/internal/calc/report"
	config "Acero/internal/config"
	repo "Acero/internal/repo"
	session "Acero/internal/session"
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg *config.Config, userRepo repo.Repository, store *session.Store) {
	authEnv := &auth.Authenv{
		JWTkey:   cfg.Auth.TokenKey,
		Repo:     userRepo,
		OnLogout: store.Drop,
		Secure:   cfg.Auth.SecureCookie,
	}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.Auth.RateLimitRPS), cfg.Auth.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	rebarH := &rebar.Handler{Sessions: store, Table: store.Table()}
	reportH := &report.Handler{Sessions: store, Title: cfg.Report.Title}

	secureApi.HandleFunc("/tools/rebar/calc", rebarH.Calc).Methods("POST")

	acero := secureApi.PathPrefix("/acero").Subrouter()
	acero.HandleFunc("/weights", rebarH.Weights).Methods("GET")
	acero.HandleFunc("/placements", rebarH.List).Methods("GET")
	acero.HandleFunc("/placements", rebarH.Add).Methods("POST")
	acero.HandleFunc("/placements", rebarH.Clear).Methods("DELETE")
	acero.HandleFunc("/placements/{id:[0-9]+}", rebarH.Get).Methods("GET")
	acero.HandleFunc("/placements/{id:[0-9]+}", rebarH.Update).Methods("PATCH", "PUT")
	acero.HandleFunc("/placements/{id:[0-9]+}", rebarH.Remove).Methods("DELETE")
	acero.HandleFunc("/rows/{pos:[0-9]+}", rebarH.UpdateAt).Methods("PATCH", "PUT")
	acero.HandleFunc("/rows/{pos:[0-9]+}", rebarH.RemoveAt).Methods("DELETE")
	acero.HandleFunc("/summary", rebarH.Summary).Methods("GET")
	acero.HandleFunc("/export/xlsx", reportH.XLSX).Methods("GET")
	acero.HandleFunc("/export/pdf", reportH.PDF).Methods("GET")

	if _, err := os.Stat(cfg.Server.StaticDir); err == nil {
		mux.PathPrefix("/").
			Handler(http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := auth.InitDB(cfg.Auth.DatabaseURL)
	if err != nil {
		log.Fatalf("Database unavailable: %v", err)
	}
	defer db.Close()
	userRepo := repo.NewPostgresUserDB(db)
	if err := userRepo.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	store := session.NewStore(rebar.NewWeightTable(cfg.Rebar.UnknownDiameter), cfg.Session.TTL)
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Run(ctx, cfg.Session.SweepInterval)
	}()

	mux := mux.NewRouter()
	log.Printf("Starting server on %s (unknown diameters: %s)", cfg.Server.Addr, cfg.Rebar.UnknownDiameter)
	HandleList(mux, cfg, userRepo, store)
	handler := CORS(mux)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.Server.TLS() {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	fmt.Println("Shutdown signal received!")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")

	wg.Wait()
}
