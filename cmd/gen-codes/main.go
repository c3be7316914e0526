package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/certifex/certifex-backend/internal/config"
	"github.com/certifex/certifex-backend/internal/database"
	"github.com/certifex/certifex-backend/internal/logger"
	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
	"github.com/certifex/certifex-backend/internal/service"
)

// gen-codes mints a batch of access codes for one exam and prints the
// plaintexts to stdout. This is the only moment the plaintexts exist;
// the database keeps bcrypt hashes only.
func main() {
	var examID int64
	var count int
	flag.Int64Var(&examID, "exam", 0, "Exam ID to generate codes for")
	flag.IntVar(&count, "count", 10, "Number of codes to generate")
	flag.Parse()

	if examID < 1 {
		fmt.Println("Error: -exam is required")
		flag.PrintDefaults()
		return
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	examRepo := repository.NewExamRepository(pool)
	codeRepo := repository.NewCodeRepository(pool)
	codeService := service.NewCodeService(cfg, examRepo, codeRepo, log)

	// ─── Logic ─────────────────────────────────────────────────────────
	codes, err := codeService.Generate(ctx, &model.GenerateCodesRequest{
		ExamID: examID,
		Count:  count,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate codes")
	}

	fmt.Printf("Generated %d codes for exam %d:\n", len(codes), examID)
	for _, code := range codes {
		fmt.Printf("%d\t%s\n", code.ID, code.Plaintext)
	}
}
