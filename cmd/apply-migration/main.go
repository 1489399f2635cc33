package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/config"
	"github.com/JerraForge/hydroponic-backend/internal/repository"

	"github.com/JerraForge/hydroponic-backend/common/database"
	logging "github.com/JerraForge/hydroponic-backend/common/logger"

	"go.uber.org/zap"
)

// Applies the embedded schema, or the SQL file given as the only argument.
func main() {
	logger, err := logging.NewDevelopmentLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if len(os.Args) > 2 {
		log.Fatalf("Usage: %s [migration_file.sql]", os.Args[0])
	}

	script := repository.SchemaSQL()
	source := "embedded schema"
	if len(os.Args) == 2 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			logger.Fatal("Failed to read migration file", zap.String("file", os.Args[1]), zap.Error(err))
		}
		script = string(data)
		source = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Cannot connect to database", zap.String("database", cfg.Database.Database), zap.Error(err))
	}
	defer database.Close(db)

	statements := repository.SplitStatements(script)
	fmt.Printf("Connected to database: %s\nApplying %d statement(s) from %s\n", cfg.Database.Database, len(statements), source)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := repository.ApplyScript(ctx, db, script); err != nil {
		logger.Fatal("Migration failed, rolled back", zap.Error(err))
	}

	fmt.Println("Migration completed successfully")
}
