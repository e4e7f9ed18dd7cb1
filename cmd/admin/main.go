package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"voyago/backend/internal/config"
	"voyago/backend/internal/models"
	"voyago/backend/internal/questionnaire"
	"voyago/backend/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	store := storage.NewService(db, nil) // no redis needed for the admin CLI
	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: promote <email> | demote <email> | confirm <email> | purge-deleted <days> | seed-questionnaire <title>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "promote":
		requireArgs(3, "Usage: admin promote <email>")
		if err := setRole(ctx, store, os.Args[2], models.RoleAdvisor); err != nil {
			log.Fatalf("Error promoting user: %v", err)
		}
		fmt.Printf("User %s is now an advisor.\n", os.Args[2])

	case "demote":
		requireArgs(3, "Usage: admin demote <email>")
		if err := setRole(ctx, store, os.Args[2], models.RoleTraveler); err != nil {
			log.Fatalf("Error demoting user: %v", err)
		}
		fmt.Printf("User %s is now a traveler.\n", os.Args[2])

	case "confirm":
		requireArgs(3, "Usage: admin confirm <email>")
		if err := confirmEmail(ctx, store, os.Args[2]); err != nil {
			log.Fatalf("Error confirming user: %v", err)
		}
		fmt.Printf("User %s is confirmed and can sign in.\n", os.Args[2])

	case "purge-deleted":
		requireArgs(3, "Usage: admin purge-deleted <days>")
		var days int
		if _, err := fmt.Sscanf(os.Args[2], "%d", &days); err != nil || days < 0 {
			fmt.Println("Invalid day count. Please provide a non-negative integer.")
			os.Exit(1)
		}
		cutoff := time.Now().AddDate(0, 0, -days)
		n, err := store.PurgeDeletedMessages(ctx, cutoff)
		if err != nil {
			log.Fatalf("Error purging messages: %v", err)
		}
		fmt.Printf("Purged %d soft-deleted messages older than %s.\n", n, cutoff.Format(time.RFC3339))

	case "seed-questionnaire":
		requireArgs(3, "Usage: admin seed-questionnaire <title>")
		if err := seedQuestionnaire(ctx, store, os.Args[2]); err != nil {
			log.Fatalf("Error seeding questionnaire: %v", err)
		}
		fmt.Printf("Questionnaire %q seeded and published.\n", os.Args[2])

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func requireArgs(n int, usage string) {
	if len(os.Args) < n {
		fmt.Println(usage)
		os.Exit(1)
	}
}

func setRole(ctx context.Context, store *storage.Service, email, role string) error {
	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", email)
	}
	return store.SetUserRole(ctx, user.ID, role)
}

// confirmEmail marks an account confirmed without a token, for operators
// unblocking users whose confirmation email never arrived.
func confirmEmail(ctx context.Context, store *storage.Service, email string) error {
	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", email)
	}
	return store.ConfirmUserEmail(ctx, user.ID)
}

// seedQuestionnaire creates and publishes a starter trip-intake form.
func seedQuestionnaire(ctx context.Context, store *storage.Service, title string) error {
	svc := questionnaire.NewService(store, zerolog.Nop())

	q, err := svc.CreateDraft(ctx, title)
	if err != nil {
		return err
	}

	seed := []questionnaire.QuestionInput{
		{Prompt: "Where would you like to go?", Type: "text", Required: true},
		{Prompt: "What kind of trip is this?", Type: "choice", Options: []string{"Relaxation", "Adventure", "Culture", "Food"}, Required: true},
		{Prompt: "How important is flexibility in your schedule?", Type: "scale"},
	}
	for _, input := range seed {
		if _, err := svc.UpsertQuestion(ctx, q.ID, input); err != nil {
			return err
		}
	}

	_, err = svc.Publish(ctx, q.ID)
	return err
}
