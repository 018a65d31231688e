// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/voyager/internal/app/features/auditlog"
	chatsfeature "github.com/dalemusser/voyager/internal/app/features/chats"
	errorsfeature "github.com/dalemusser/voyager/internal/app/features/errors"
	healthfeature "github.com/dalemusser/voyager/internal/app/features/health"
	homefeature "github.com/dalemusser/voyager/internal/app/features/home"
	joinrequestsfeature "github.com/dalemusser/voyager/internal/app/features/joinrequests"
	notificationsfeature "github.com/dalemusser/voyager/internal/app/features/notifications"
	tripsfeature "github.com/dalemusser/voyager/internal/app/features/trips"
	"github.com/dalemusser/voyager/internal/app/services/groupchats"
	"github.com/dalemusser/voyager/internal/app/services/joinrequests"
	"github.com/dalemusser/voyager/internal/app/services/notifications"
	auditstore "github.com/dalemusser/voyager/internal/app/store/audit"
	groupchatstore "github.com/dalemusser/voyager/internal/app/store/groupchats"
	joinrequeststore "github.com/dalemusser/voyager/internal/app/store/joinrequests"
	tripstore "github.com/dalemusser/voyager/internal/app/store/trips"
	"github.com/dalemusser/voyager/internal/app/system/auditlog"
	"github.com/dalemusser/voyager/internal/app/system/metrics"
	"github.com/dalemusser/voyager/internal/app/system/notifycache"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Stores, services and handlers are built
// here and handed their collaborators explicitly; nothing below reaches for
// a global collection handle.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Metrics live on a private registry so tests can build more than one
	// handler in a process.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	auditEvents := auditstore.New(db)
	audit := auditlog.New(auditEvents, logger, auditlog.Config{
		Trips: appCfg.AuditLogTrips,
		Chats: appCfg.AuditLogChats,
	})
	cache := notifycache.New(deps.Redis, appCfg.NotifCountTTL, logger)

	trips := tripstore.New(db)
	requests := joinrequeststore.New(db)

	chatSync := groupchats.New(groupchatstore.New(db), requests, audit, m, logger)
	workflow := joinrequests.New(joinrequests.Deps{
		Trips:    trips,
		Requests: requests,
		Chats:    chatSync,
		Audit:    audit,
		Metrics:  m,
		Cache:    cache,
		Log:      logger,
	})
	feed := notifications.New(requests, trips, cache, audit, m, logger)

	r := chi.NewRouter()
	r.Use(m.Middleware)

	errorsHandler := errorsfeature.NewHandler(logger)
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Trips and the join-request workflow hanging off them
	tripsHandler := tripsfeature.NewHandler(trips, workflow, logger)
	r.Mount("/trips", tripsfeature.Routes(tripsHandler))

	joinHandler := joinrequestsfeature.NewHandler(workflow, deps.Limiter, logger)
	r.Mount("/trips/{tripID}/join-requests", joinrequestsfeature.Routes(joinHandler))

	activityHandler := auditlogfeature.NewHandler(auditEvents, trips, logger)
	r.Mount("/trips/{tripID}/activity", auditlogfeature.Routes(activityHandler))

	notifHandler := notificationsfeature.NewHandler(feed, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notifHandler))

	chatsHandler := chatsfeature.NewHandler(chatSync, deps.Limiter, logger)
	r.Mount("/chats", chatsfeature.Routes(chatsHandler))

	return r, nil
}
