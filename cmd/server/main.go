package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	webAdapter "packflow/internal/adapters/web"
	"packflow/internal/app"
	"packflow/internal/db"
	"packflow/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	var recordStore store.Store
	switch engine := os.Getenv("STORE_ENGINE"); engine {
	case "", "postgres":
		pool, err := db.NewPool(ctx)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		pg, err := store.NewPostgres(ctx, pool)
		if err != nil {
			log.Fatalf("record store: %v", err)
		}
		recordStore = pg
	case "memory":
		log.Println("Warning: STORE_ENGINE=memory — data is lost on restart")
		recordStore = store.NewMemory()
	default:
		log.Fatalf("unknown STORE_ENGINE %q", engine)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}
	creds := app.Credentials{
		Username: os.Getenv("ADMIN_USERNAME"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
	if creds.Username == "" || creds.Password == "" {
		log.Fatal("ADMIN_USERNAME and ADMIN_PASSWORD environment variables not set")
	}

	svc := app.NewApplicationService(app.NewServices(recordStore), creds)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
