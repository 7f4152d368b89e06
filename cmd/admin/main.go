package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"speeddate/backend/internal/models"
	"speeddate/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for the admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: user <id> | queue-reset | end-session <id>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "user":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin user <user_id>")
			os.Exit(1)
		}
		if err := inspectUser(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error inspecting user: %v", err)
		}
	case "queue-reset":
		if err := resetQueue(db); err != nil {
			log.Fatalf("Error resetting queue: %v", err)
		}
		fmt.Println("Cleared all queue flags.")
	case "end-session":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin end-session <session_id>")
			os.Exit(1)
		}
		if err := endSession(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error ending session: %v", err)
		}
		fmt.Printf("Session %s ended and its messages purged.\n", os.Args[2])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func inspectUser(s *storage.Service, userID string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("User not found.")
		return nil
	}
	fmt.Printf("User %s: in_queue=%v age=%d gender=%s\n", user.ID, user.InQueue, user.Age, user.Gender)

	session, err := s.GetActiveSessionForUser(userID)
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Println("No active session.")
		return nil
	}
	fmt.Printf("Active session %s: phase=%s status=%s started=%s\n",
		session.ID, session.Phase, session.Status, session.StartedAt.Format(time.RFC3339))
	return nil
}

// resetQueue clears stale queue flags left behind by crashed clients.
func resetQueue(db *gorm.DB) error {
	return db.Model(&models.User{}).
		Where("in_queue = ?", true).
		Update("in_queue", false).Error
}

// endSession force-ends a session the way a decision conflict would,
// including the privacy erasure of its messages.
func endSession(s *storage.Service, sessionID string) error {
	return s.Transaction(func(tx storage.Storage) error {
		session, err := tx.GetSession(sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("session %s not found", sessionID)
		}
		now := time.Now()
		session.Status = models.StatusEnded
		session.EndedAt = &now
		if err := tx.SaveSession(session); err != nil {
			return err
		}
		return tx.PurgeMessages(sessionID)
	})
}
