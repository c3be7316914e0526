package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/certifex/certifex-backend/internal/config"
	"github.com/certifex/certifex-backend/internal/database"
	"github.com/certifex/certifex-backend/internal/logger"
	"github.com/certifex/certifex-backend/internal/model"
	"github.com/certifex/certifex-backend/internal/repository"
	"github.com/certifex/certifex-backend/internal/service"
)

func main() {
	var admin bool
	flag.BoolVar(&admin, "admin", false, "Grant the new account admin rights")
	flag.Parse()

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
	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(cfg, userRepo)
	userService := service.NewUserService(authService, userRepo, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	req := &model.RegisterRequest{
		PersonalID: prompt(reader, "Personal ID (11 digits)"),
		FirstName:  prompt(reader, "First Name"),
		LastName:   prompt(reader, "Last Name"),
		Phone:      prompt(reader, "Phone"),
		Email:      prompt(reader, "Email"),
	}
	if req.PersonalID == "" || req.FirstName == "" || req.LastName == "" || req.Email == "" {
		fmt.Println("Error: personal ID, name and email are required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()
	req.Password = string(bytePassword)
	if len(req.Password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user, err := userService.Register(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	if admin {
		if err := userRepo.SetAdmin(ctx, user.ID, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to grant admin rights")
		}
	}

	fmt.Printf("\nSuccess! User '%s %s' (%s) created with ID %d, code %s, admin=%t\n",
		user.FirstName, user.LastName, user.Email, user.ID, user.Code, admin)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Printf("Enter %s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
