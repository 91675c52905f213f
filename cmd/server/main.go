package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	"connectrpc.com/connect"
	"github.com/aiworkshop/finassist/backend/internal/auth"
	"github.com/aiworkshop/finassist/backend/internal/calendar"
	"github.com/aiworkshop/finassist/backend/internal/config"
	"github.com/aiworkshop/finassist/backend/internal/logger"
	"github.com/aiworkshop/finassist/backend/internal/recurring"
	"github.com/aiworkshop/finassist/backend/internal/service"
	"github.com/aiworkshop/finassist/backend/internal/store"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	// amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	var storeImpl store.Store
	var firebaseAuth *auth.FirebaseAuth

	if cfg.UseMemoryStore {
		log.Info().Msg("using in-memory store for local development")
		storeImpl = store.NewMemoryStore()

		// memory store always runs with mock authentication
		log.Info().Msg("using mock authentication for local development")
	} else {
		firestoreClient, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Firestore client")
		}
		defer firestoreClient.Close()

		if cfg.SkipAuth {
			log.Warn().Msg("SKIP_AUTH enabled - using mock authentication with Firestore (for seeding/testing only)")
		} else {
			firebaseAuth, err = auth.NewFirebaseAuth(ctx, cfg.ProjectID)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize Firebase Auth")
			}
		}

		storeLog := logger.Component(log, "store")
		storeImpl = store.NewRetryingStore(store.NewFirestoreStore(firestoreClient, storeLog), store.DefaultRetryConfig, storeLog)
	}

	detector := recurring.NewDetector(recurring.Config{
		MinOccurrences:     cfg.Detection.MinOccurrences,
		MaxDayVariation:    cfg.Detection.MaxDayVariation,
		MerchantSimilarity: cfg.Detection.MerchantSimilarity,
		AmountDeviation:    cfg.Detection.AmountDeviation,
		Currency:           cfg.Currency,
	}, logger.Component(log, "recurring"))

	generator := calendar.NewGenerator(calendar.Options{
		MaxIterations: cfg.BillProjectionMaxIterations,
		Currency:      cfg.Currency,
	}, logger.Component(log, "calendar"))

	calendarService := service.NewCalendarService(storeImpl, detector, generator, logger.Component(log, "calendar"))

	// Access log outermost so rejected calls are logged; debug interceptor
	// before the others so impersonation wins over the local dev user
	interceptors := []connect.Interceptor{
		service.LoggingInterceptor(logger.Component(log, "rpc")),
		auth.DebugAuthInterceptor(cfg.SkipAuth || cfg.UseMemoryStore),
	}
	if firebaseAuth != nil {
		interceptors = append(interceptors, auth.AuthInterceptor(firebaseAuth, logger.Component(log, "auth")))
	} else {
		interceptors = append(interceptors, auth.LocalDevInterceptor())
	}

	path, handler := service.NewCalendarServiceHandler(
		calendarService,
		connect.WithInterceptors(interceptors...),
	)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:8081", // Expo web
			"http://127.0.0.1:8081",
			"http://localhost:19006",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"Content-Type",
			"User-Agent",
			"X-User-Agent",
			"X-Debug-Impersonate-User",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(c.Handler(mux), &http2.Server{}),
	}

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
