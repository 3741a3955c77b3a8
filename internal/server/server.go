package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/config"
	"github.com/VIDUSHH/kindnesshome-backend/internal/handler"
	"github.com/VIDUSHH/kindnesshome-backend/internal/metrics"
	"github.com/VIDUSHH/kindnesshome-backend/internal/middleware"
	"github.com/VIDUSHH/kindnesshome-backend/internal/pub"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/internal/router"
	"github.com/VIDUSHH/kindnesshome-backend/internal/service/irs"
	"github.com/VIDUSHH/kindnesshome-backend/internal/service/oauth2"
	"github.com/VIDUSHH/kindnesshome-backend/internal/usecase"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/cache"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/jwtutil"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/livefeed"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/receipt"
)

// Server wires repositories, usecases and handlers into one HTTP
// server and owns the lifecycle of the shared clients.
type Server struct {
	httpSrv   *http.Server
	cacheSvc  *cache.CacheService
	publisher *pub.Publisher
	closeDB   func()
	logger    *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	dbPool, err := config.ConnectDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	cacheSvc, err := cache.NewCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
	}
	metrics.RegisterCacheStats(cacheSvc.Stats)

	publisher := pub.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)

	priv, err := jwtutil.LoadRSAPrivateKeyFromPEM(cfg.JWT.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load jwt private key: %w", err)
	}
	pubKey, err := jwtutil.LoadRSAPublicKeyFromPEM(cfg.JWT.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load jwt public key: %w", err)
	}
	tokenGen := jwtutil.NewGenerator(priv, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.KeyID, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	verifier := jwtutil.NewVerifier(pubKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	verifier.AddKey(cfg.JWT.KeyID, pubKey)

	feed := livefeed.NewManager(logger)
	go feed.Heartbeat(30 * time.Second)

	// Repositories
	txm := repository.NewTxManager(dbPool)
	campaignRepo := repository.NewCampaignRepo(dbPool)
	donationRepo := repository.NewDonationRepo(dbPool)
	giftRepo := repository.NewMatchingGiftRepo(dbPool)
	userRepo := repository.NewUserRepo(dbPool)
	orgRepo := repository.NewOrganizationRepo(dbPool)
	pmRepo := repository.NewPaymentMethodRepo(dbPool)
	updateRepo := repository.NewCampaignUpdateRepo(dbPool)

	// Domain services
	irsSvc := irs.NewService(logger)
	googleVerifier := oauth2.NewGoogleVerifier(cfg.Google.ClientID)
	receiptGen := receipt.NewGenerator()

	// Usecases
	settlementUC := usecase.NewSettlementUsecase(campaignRepo, donationRepo, txm, publisher, feed, cacheSvc, logger)
	donationUC := usecase.NewDonationUsecase(donationRepo, orgRepo, userRepo, txm, receiptGen, publisher, logger)
	giftUC := usecase.NewMatchingGiftUsecase(giftRepo, donationRepo, logger)
	campaignUC := usecase.NewCampaignUsecase(campaignRepo, updateRepo, orgRepo, cacheSvc, logger)
	analyticsUC := usecase.NewAnalyticsUsecase(campaignRepo, donationRepo, cacheSvc, logger)
	authUC := usecase.NewAuthUsecase(userRepo, tokenGen, verifier, logger)
	oauthUC := usecase.NewOAuthUsecase(userRepo, googleVerifier, authUC, logger)
	userUC := usecase.NewUserUsecase(userRepo, donationRepo, pmRepo, logger)
	orgUC := usecase.NewOrganizationUsecase(orgRepo, irsSvc, cacheSvc, logger)

	// Handlers
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authUC, logger),
		OAuth:         handler.NewOAuthHandler(oauthUC, logger),
		Organizations: handler.NewOrganizationHandler(orgUC, logger),
		Campaigns:     handler.NewCampaignHandler(campaignUC, settlementUC, analyticsUC, authUC, logger),
		Donations:     handler.NewDonationHandler(donationUC, giftUC, logger),
		MatchingGifts: handler.NewMatchingGiftHandler(giftUC, logger),
		Users:         handler.NewUserHandler(userUC, logger),
		Feed:          handler.NewFeedHandler(feed, campaignUC, logger),
		Health:        handler.NewHealthHandler(dbPool, logger),
	}

	authMW := middleware.NewAuthMiddleware(verifier, logger)
	mux := router.SetupRoutes(handlers, authMW, logger)

	return &Server{
		httpSrv: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		cacheSvc:  cacheSvc,
		publisher: publisher,
		closeDB:   dbPool.Close,
		logger:    logger,
	}, nil
}

func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpSrv.Shutdown(ctx)

	if cerr := s.publisher.Close(); cerr != nil {
		s.logger.Warn("kafka writer close failed", zap.Error(cerr))
	}
	if cerr := s.cacheSvc.Close(); cerr != nil {
		s.logger.Warn("redis close failed", zap.Error(cerr))
	}
	s.closeDB()

	return err
}
