// Package server builds the gRPC server with its interceptor chain and
// standard health service. Service handlers are registered by the caller.
package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	invitationservice "paladin-core/internal/invitation/service"
	organisationservice "paladin-core/internal/organisation/service"
	"paladin-core/internal/security"
	"paladin-core/internal/server/interceptors"
	"paladin-core/internal/telemetry/otel"
	userservice "paladin-core/internal/user/service"
)

// Deps holds the domain services behind the RPC surface.
type Deps struct {
	Organisations *organisationservice.Service
	Invitations   *invitationservice.Service
	Users         *userservice.Service
}

// PublicMethods are full method names served without a bearer token.
var PublicMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
}

// New builds a gRPC server with authentication and OpenTelemetry
// instrumentation, and registers the standard health service. verifier may be
// nil only when no authenticated services are registered. providers may be
// nil; instrumentation then falls back to the global providers.
func New(verifier *security.Verifier, providers *otel.Providers) (*grpc.Server, *health.Server) {
	var opts []grpc.ServerOption

	statsOpts := []otelgrpc.Option{}
	if providers != nil {
		statsOpts = append(statsOpts,
			otelgrpc.WithTracerProvider(providers.TracerProvider),
			otelgrpc.WithMeterProvider(providers.MeterProvider),
		)
	}
	opts = append(opts, grpc.StatsHandler(otelgrpc.NewServerHandler(statsOpts...)))

	if verifier != nil {
		opts = append(opts, grpc.ChainUnaryInterceptor(
			interceptors.AuthUnary(verifier, PublicMethods),
		))
	}

	s := grpc.NewServer(opts...)
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	return s, h
}

// RegisterServices publishes per-service health for the domain services.
// A nil service is reported NOT_SERVING.
func RegisterServices(h *health.Server, deps Deps) {
	report := func(name string, up bool) {
		st := healthpb.HealthCheckResponse_NOT_SERVING
		if up {
			st = healthpb.HealthCheckResponse_SERVING
		}
		h.SetServingStatus(name, st)
	}
	report("paladin.v1.OrganisationService", deps.Organisations != nil)
	report("paladin.v1.InvitationService", deps.Invitations != nil)
	report("paladin.v1.UserService", deps.Users != nil)
}
