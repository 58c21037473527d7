package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/tuwir2002/maligo-backend/internal/config"
	"github.com/tuwir2002/maligo-backend/internal/database"
	"github.com/tuwir2002/maligo-backend/internal/logger"
	"github.com/tuwir2002/maligo-backend/internal/repository"
	"github.com/tuwir2002/maligo-backend/internal/service"
)

func main() {
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

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	lecturerRepo := repository.NewLecturerRepository(pool)
	authService := service.NewAuthService(cfg, rdb)
	lecturerService := service.NewLecturerService(lecturerRepo, authService)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Lecturer Account ===")

	// NIDN
	fmt.Print("Enter NIDN: ")
	nidn, _ := reader.ReadString('\n')
	nidn = strings.TrimSpace(nidn)
	if nidn == "" {
		fmt.Println("Error: NIDN is required")
		return
	}

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	lecturer, err := lecturerService.Create(ctx, nidn, name, password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create lecturer")
	}

	fmt.Printf("\nSuccess! Lecturer '%s' (NIDN %s) created with ID: %d\n", lecturer.Name, lecturer.NIDN, lecturer.ID)
}
