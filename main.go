// main.go

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	dbClient   *mongo.Client
	db         *mongo.Database
	cartStore  CartStore
	orderStore OrderStore
	genai      *GenAIClient
	jwtSecret  []byte
	adminEmail string
	logger     *slog.Logger
)

func main() {
	logger = newLogger(getEnv("LOG_LEVEL", "info"))

	jwtSecret = []byte(getEnv("JWT_SECRET", "dev-secret-change-me"))
	adminEmail = os.Getenv("ADMIN_EMAIL")

	mongoURI := os.Getenv("MONGO_PUBLIC_URL")
	if mongoURI == "" {
		mongoURI = getEnv("MONGO_URL", "mongodb://localhost:27017")
	}
	logger.Info("connecting to MongoDB", "uri", mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Error("mongo connect failed", "error", err)
		os.Exit(1)
	}
	dbClient = client
	db = client.Database(getEnv("MONGO_DB", "printcraft"))

	cartStore = newMongoCartStore(db)
	orderStore = newMongoOrderStore(dbClient, db)
	genai = NewGenAIClient(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_API_URL"))

	if err := seedProducts(ctx, db); err != nil {
		logger.Warn("catalog seed failed", "error", err)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(getEnv("CORS_ORIGIN", "http://localhost:3000"), ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Auth
	r.POST("/api/register", register)
	r.POST("/api/login", login)

	// Catalog
	r.GET("/api/products", listProducts)
	r.GET("/api/products/:productId", getProduct)
	r.GET("/api/products/:productId/price", quoteProduct)

	auth := r.Group("/api", AuthMiddleware)
	{
		auth.GET("/user/profile", getProfile)
		auth.PUT("/user/profile", updateProfile)

		// Cart
		auth.GET("/cart", getCart)
		auth.POST("/cart", addToCart)
		auth.PUT("/cart/:itemId", updateCartItem)
		auth.DELETE("/cart/:itemId", removeCartItem)
		auth.POST("/cart/clear", clearCart)

		// Orders
		auth.GET("/orders", getOrders)
		auth.POST("/orders", placeOrder)
		auth.GET("/orders/:orderId", getOrder)

		// Design studio
		auth.POST("/designs/generate", generateDesign)
		auth.GET("/designs", listDesigns)
		auth.POST("/designs", saveDesign)
		auth.DELETE("/designs/:designId", deleteDesign)
		auth.POST("/assistant/faq", answerFAQ)
	}

	admin := r.Group("/api/admin", AuthMiddleware, AdminMiddleware)
	{
		admin.POST("/products", adminCreateProduct)
		admin.PUT("/products/:productId", adminUpdateProduct)
		admin.DELETE("/products/:productId", adminDeleteProduct)
		admin.GET("/orders", adminListOrders)
		admin.PUT("/orders/:orderId/status", adminUpdateOrderStatus)
		admin.POST("/reports/sales", adminSalesReport)
	}

	srv := &http.Server{
		Addr:    ":" + getEnv("PORT", "8080"),
		Handler: r,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	if err := dbClient.Disconnect(shutdownCtx); err != nil {
		logger.Error("mongo disconnect failed", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	l := slog.New(h).With("service", "printcraft-backend")
	slog.SetDefault(l)
	return l
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
