package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/adapter/handler"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/adapter/metrics"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/adapter/storage"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/config"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/service"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/port"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	if cfg.RunMigrations {
		if err := storage.RunMigrations(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		log.Println("migrations applied")
	}

	mysqlAdapter := storage.NewMySQLAdapter(db)

	// Initialize cart store
	var (
		cartStore port.CartStore
		idem      port.IdempotencyStore
		rdb       *redis.Client
	)
	switch cfg.CartStore {
	case config.CartStoreRedis:
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: cfg.RedisPoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		log.Println("connected to redis")

		redisAdapter := storage.NewRedisAdapter(rdb, cfg.CartTTL, cfg.IdempotencyTTL)
		cartStore = redisAdapter
		idem = redisAdapter
	case config.CartStoreMemory:
		cartStore = storage.NewMemoryCartStore()
		log.Println("using in-memory cart store")
	}

	// Initialize services
	cartService := service.NewCartService(cartStore, mysqlAdapter)
	checkoutService := service.NewCheckoutService(cartStore, mysqlAdapter, mysqlAdapter, idem, service.RolePolicy)
	orderService := service.NewOrderService(mysqlAdapter, service.RolePolicy)
	catalogService := service.NewCatalogService(mysqlAdapter)
	m := metrics.New()

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterCartServiceServer(grpcServer, handler.NewGRPCHandler(cartService, checkoutService, m))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(cartService, checkoutService, orderService, catalogService, m)
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpHandler.Routes(handler.RouterOptions{
			RequestTimeout: cfg.RequestTimeout,
			SecureCookies:  cfg.SecureCookies,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	log.Println("HTTP server stopped")

	// Stop gRPC server
	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	// Close connections
	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Println("connections closed")
}
