package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paladin-core/internal/audit"
	auditrepo "paladin-core/internal/audit/repository"
	"paladin-core/internal/config"
	"paladin-core/internal/db"
	"paladin-core/internal/events"
	invitationrepo "paladin-core/internal/invitation/repository"
	invitationservice "paladin-core/internal/invitation/service"
	membershiprepo "paladin-core/internal/membership/repository"
	organisationrepo "paladin-core/internal/organisation/repository"
	organisationservice "paladin-core/internal/organisation/service"
	"paladin-core/internal/security"
	"paladin-core/internal/server"
	"paladin-core/internal/telemetry/otel"
	userrepo "paladin-core/internal/user/repository"
	userservice "paladin-core/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "paladin-core", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	var verifier *security.Verifier
	if cfg.JWTPublicKey != "" {
		pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
		if err != nil {
			log.Fatalf("jwt public key: %v", err)
		}
		verifier = security.NewVerifier(pub, cfg.JWTIssuer, cfg.JWTAudience)
	} else {
		log.Println("JWT_PUBLIC_KEY not set; serving health only")
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL must be set")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	producer := events.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.KafkaTopic)
	var eventSink events.Producer
	if producer != nil {
		eventSink = producer
	}

	auditor := audit.NewLogger(auditrepo.NewPostgresRepository(database))

	orgs := organisationrepo.NewPostgresRepository(database)
	members := membershiprepo.NewPostgresRepository(database)
	invites := invitationrepo.NewPostgresRepository(database)
	users := userrepo.NewPostgresRepository(database)

	deps := server.Deps{
		Organisations: organisationservice.NewService(orgs, members, auditor, eventSink),
		Invitations:   invitationservice.NewService(invites, members, users, cfg.InviteLifetime(), auditor, eventSink),
		Users:         userservice.NewService(users),
	}

	s, healthSrv := server.New(verifier, providers)
	server.RegisterServices(healthSrv, deps)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()

	if producer != nil {
		// Let in-flight async emits finish before closing the writer.
		time.Sleep(events.ShutdownDrainDuration)
		if err := producer.Close(); err != nil {
			log.Printf("events: close: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry: %v", err)
	}
	log.Println("gRPC server stopped")
}
