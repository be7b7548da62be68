package main

// POST  /products                     - create a product
// GET   /products/list                - list products (?category= filters)
// GET   /products/{id}                - one product
// GET   /cart/list?session_id=        - cart contents, count and total
// POST  /cart/add | /cart/update | /cart/remove | /cart/clear
// POST  /checkout/order               - validate the form and place the order for a cart
// POST  /orders                       - place an order with precomputed totals
// GET   /orders (?email=)             - all orders, or one customer's, newest first
// GET   /orders/{id}                  - order by id
// GET   /orders/number/{orderNumber}  - order by order number
// PATCH /orders/{id}/status           - overwrite the status
// GET   /healthz

// --- EMBED MIGRATIONS ---
import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"storefront/cart"
	"storefront/config"
	"storefront/email"
	"storefront/handler"
	"storefront/logging"
	"storefront/mailer"
	"storefront/model"
	"storefront/queue"
	"storefront/service"
	"storefront/store"
	"storefront/telemetry"
)

//go:embed migrations.sql
var migrationSQL string

func main() {
	// --- CONFIG ---
	cfg, err := config.Load(os.Getenv("STOREFRONT_CONFIG"))
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: cfg.Tracing.ServiceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Enabled, nil)
	if err != nil {
		log.Fatalf("Tracing setup failed: %v", err)
	}

	// --- Store ---
	st, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer st.Close()

	if cfg.SeedCatalog {
		n, err := store.Seed(ctx, st)
		if err != nil {
			log.Fatalf("Seeding catalog failed: %v", err)
		}
		logger.Info("Catalog seeded", map[string]interface{}{"added": n})
	}

	// --- Redis (optional): task queue and cart storage ---
	var (
		q           queue.Queue
		cartStorage cart.Storage
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}
		q = queue.NewRedisQueue(rdb, cfg.Worker.QueueKey, logger)
		cartStorage = cart.NewRedisStorage(rdb, "", cfg.CartTTL)
		log.Println("Using Redis for tasks and carts")
	} else {
		mq := queue.NewMemoryQueue(0)
		defer mq.Close()
		q = mq
		cartStorage = cart.NewMemoryStorage()
		log.Println("REDIS_URL not set: tasks and carts are kept in memory")
	}

	carts := cart.NewStore(cartStorage)
	unsubscribe := carts.Subscribe(func(e cart.Event) {
		logger.Debug("Cart changed", map[string]interface{}{
			"session_id": e.Session,
			"count":      cart.Count(e.Items),
			"total":      cart.Total(e.Items),
		})
	})
	defer unsubscribe()

	// --- Service ---
	orders := service.NewOrders(st, q, logger)
	catalog := service.NewCatalog(st, logger)
	var (
		_ service.OrderService   = orders
		_ service.CatalogService = catalog
	)

	// --- Confirmation mail worker ---
	worker := queue.NewWorker(q, queue.WorkerConfig{
		Count:          cfg.Worker.Count,
		DequeueTimeout: cfg.Worker.DequeueTimeout,
	}, logger)
	renderer := email.Renderer{SiteOrigin: cfg.SiteOrigin, Brand: cfg.SMTP.FromName}
	if cfg.MailEnabled() {
		dispatcher := mailer.NewDispatcher(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			FromName: cfg.SMTP.FromName,
			Verify:   cfg.SMTP.Verify,
		}, logger)
		err = worker.Register(service.TaskOrderConfirmation, mailer.ConfirmationHandler(dispatcher, renderer, time.Now))
	} else {
		log.Println("SMTP_HOST not set: confirmation emails are logged, not sent")
		err = worker.Register(service.TaskOrderConfirmation, logConfirmation(logger))
	}
	if err != nil {
		log.Fatalf("Worker setup failed: %v", err)
	}
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = worker.Start(ctx)
	}()

	// --- Handlers ---
	h := handler.NewHandler(orders, catalog, carts, logger)

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	// --- Server ---
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      telemetry.Middleware(cfg.Tracing.ServiceName)(r),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	go func() {
		log.Printf("Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	worker.Stop()
	<-workerDone
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracing shutdown: %v", err)
	}
}

// openStore connects to Postgres and runs the migrations, or falls back to
// the in-memory store when no DSN is configured.
func openStore(ctx context.Context, dsn string) (store.Store, error) {
	if dsn == "" {
		log.Println("DATABASE_URL not set: orders and products are kept in memory")
		return store.NewMemoryStore(), nil
	}
	pg, err := store.NewPostgresStore(dsn)
	if err != nil {
		return nil, err
	}

	// --- RUN MIGRATIONS ---
	if err := pg.Migrate(ctx, migrationSQL); err != nil {
		_ = pg.Close()
		return nil, err
	}
	log.Println("Database migrations executed successfully ✔")
	return pg, nil
}

func logConfirmation(logger logging.Logger) queue.Handler {
	return func(_ context.Context, task *queue.Task) error {
		var snap model.OrderSnapshot
		if err := json.Unmarshal(task.Payload, &snap); err != nil {
			return err
		}
		logger.Info("Confirmation email skipped", map[string]interface{}{
			"order_number": snap.OrderNumber,
			"to":           snap.CustomerEmail,
			"subject":      email.Subject(snap.OrderNumber),
		})
		return nil
	}
}
