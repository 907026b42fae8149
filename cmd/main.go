package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"solmentions/internal/auth"
	"solmentions/internal/chain"
	"solmentions/internal/database"
	"solmentions/internal/dispatch"
	"solmentions/internal/executors"
	"solmentions/internal/handlers"
	"solmentions/internal/intent"
	"solmentions/internal/store"
	"solmentions/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load database configuration
	dbConfig := database.LoadConfig()

	// Connect to database
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Chain client: every executor side effect goes through this one wallet
	chainConfig := chain.LoadConfig()
	chainClient, err := chain.NewSolanaClient(chainConfig)
	if err != nil {
		log.Fatal("Failed to initialize chain client:", err)
	}
	log.Printf("Chain client ready, wallet %s", chainClient.WalletAddress())

	metadataClient := chain.NewMetadataClient(chainConfig.PinningURL, chainConfig.PinningKey)

	// Stores and pipeline components, explicitly constructed and passed in
	// so tests can substitute fakes.
	posts := store.NewPostStore(database.DB)
	giveaways := store.NewGiveawayStore(database.DB)
	extractor := intent.NewExtractor()

	drawExecutor := executors.NewDrawExecutor(giveaways, chainClient)
	dispatcher := dispatch.NewDispatcher(
		posts,
		extractor,
		dispatch.LoadConfig(),
		executors.NewSwapExecutor(chainClient, chainClient),
		executors.NewTokenExecutor(metadataClient, chainClient),
		executors.NewGiveawayExecutor(giveaways),
		drawExecutor,
	)

	// Initialize and start background workers
	workerService := worker.NewService(dispatcher, posts, giveaways, drawExecutor)
	if err := workerService.Start(); err != nil {
		log.Fatal("Failed to start background workers:", err)
	}

	// Setup graceful shutdown
	setupGracefulShutdown(workerService)

	// Setup HTTP server
	setupServer(dispatcher, posts, giveaways)
}

func setupGracefulShutdown(workerService *worker.Service) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")

		workerService.Stop()
		database.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer(dispatcher *dispatch.Dispatcher, posts *store.PostStore, giveaways *store.GiveawayStore) {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// Initialize handlers
	activityHandler := handlers.NewActivityHandler(dispatcher)
	ingestionHandler := handlers.NewIngestionHandler(posts, giveaways)
	docsHandler := handlers.NewDocsHandler()
	verifier := auth.NewTokenVerifier()

	// Health check
	r.GET("/health", activityHandler.HealthCheck)

	// Serve Markdown documentation as HTML
	r.GET("/doc/:doc", docsHandler.ServeMarkdownAsHTML)

	api := r.Group("/api")
	{
		// Batch trigger; also runs on a timer inside the worker service
		api.GET("/activity/process", activityHandler.ProcessActivity)

		// Giveaway status is public
		api.GET("/giveaways/:id", ingestionHandler.GetGiveaway)

		// Ingestion endpoints require a service token
		authed := api.Group("", verifier.Middleware())
		{
			authed.POST("/posts", ingestionHandler.CreatePost)
			authed.POST("/giveaways/:id/participants", ingestionHandler.AddParticipant)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
