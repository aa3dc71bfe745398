package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alharthy/oudshop-backend/internal/checkout"
	"github.com/alharthy/oudshop-backend/internal/config"
	"github.com/alharthy/oudshop-backend/internal/httpx"
	"github.com/alharthy/oudshop-backend/internal/images"
	kafkax "github.com/alharthy/oudshop-backend/internal/kafka"
	"github.com/alharthy/oudshop-backend/internal/orders"
	"github.com/alharthy/oudshop-backend/internal/postgres"
	"github.com/alharthy/oudshop-backend/internal/products"
	"github.com/alharthy/oudshop-backend/internal/redisx"
	"github.com/alharthy/oudshop-backend/internal/reviews"
	"github.com/alharthy/oudshop-backend/internal/thawani"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSettled, 1024)
	prod.Start(ctx)

	// Collaborators
	gateway := thawani.NewClient(cfg.ThawaniAPIURL, cfg.ThawaniAPIKey, cfg.ThawaniPublishKey, cfg.ThawaniCheckoutURL)
	imageSvc := images.NewClient(cfg.ImageUploadURL, cfg.ImageUploadKey)

	orderStore := &orders.Store{DB: db}
	productStore := &products.Store{DB: db}
	reviewStore := &reviews.Store{DB: db}
	pending := &checkout.RedisPending{RDB: rdb}

	sessions := &checkout.Service{
		Gateway:     gateway,
		Pending:     pending,
		SuccessURL:  cfg.CheckoutSuccessURL,
		CancelURL:   cfg.CheckoutCancelURL,
		ServiceName: cfg.ServiceName,
	}
	reconciler := &checkout.Reconciler{
		Gateway:     gateway,
		Orders:      orderStore,
		Products:    productStore,
		Pending:     pending,
		Producer:    prod,
		ServiceName: cfg.ServiceName,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Repo:       orderStore,
		Products:   productStore,
		Checkout:   sessions,
		Reconciler: reconciler,
	}
	oh.Register(router)
	ph := &httpx.ProductsHandler{
		Repo:    productStore,
		Reviews: reviewStore,
		Images:  imageSvc,
	}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	cancel()
	prod.WaitClosed()
}
