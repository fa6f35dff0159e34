// Command seed manages bootstrap data: sample stories for a fresh
// install and admin account creation.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/config"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// sampleTag marks seeded stories so -remove-samples can find them
// without touching real content.
const sampleTag = "sample"

var sampleVisitors = []string{"Maya R", "Sam K"}

var sampleStories = []store.Story{
	{
		Title:    "The Journey Begins",
		Content:  "<p>Every story starts with a single step. This one starts with yours.</p>",
		Category: "Adventure",
		Tags:     sampleTag,
	},
	{
		Title:    "A Silent Night",
		Content:  "<p>The house was quiet, the kind of quiet that listens back.</p>",
		Category: "Mystery",
		Tags:     sampleTag,
	},
}

func main() {
	initSamples := flag.Bool("init", false, "insert sample stories")
	removeSamples := flag.Bool("remove-samples", false, "delete previously seeded sample stories")
	createAdmin := flag.Bool("create-admin", false, "create or reset an admin account")
	username := flag.String("username", "", "admin username (defaults to SILENTSTORIES_ADMIN_USERNAME)")
	password := flag.String("password", "", "admin password (defaults to SILENTSTORIES_ADMIN_PASSWORD)")
	flag.Parse()

	if !*initSamples && !*removeSamples && !*createAdmin {
		flag.Usage()
		log.Fatal("nothing to do: pass -init, -remove-samples, or -create-admin")
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	dataStore := store.NewPostgresStore(db)

	if *initSamples {
		if err := seedSamples(ctx, dataStore); err != nil {
			log.Fatalf("seed samples: %v", err)
		}
	}
	if *removeSamples {
		if err := deleteSamples(ctx, dataStore); err != nil {
			log.Fatalf("remove samples: %v", err)
		}
	}
	if *createAdmin {
		name := strings.TrimSpace(*username)
		if name == "" {
			name = cfg.AdminUsername
		}
		secret := *password
		if secret == "" {
			secret = cfg.AdminPassword
		}
		if err := upsertAdmin(ctx, dataStore, name, secret); err != nil {
			log.Fatalf("create admin: %v", err)
		}
	}
}

func seedSamples(ctx context.Context, s *store.PostgresStore) error {
	existing, err := s.ListStories(ctx)
	if err != nil {
		return err
	}
	seeded := make(map[string]bool)
	for _, story := range existing {
		if story.Tags == sampleTag {
			seeded[story.Title] = true
		}
	}

	for _, sample := range sampleStories {
		if seeded[sample.Title] {
			log.Printf("sample %q already present, skipping", sample.Title)
			continue
		}
		created, err := s.CreateStory(ctx, sample)
		if err != nil {
			return err
		}
		log.Printf("seeded sample story %s (%q)", created.ID, created.Title)
	}

	for _, name := range sampleVisitors {
		visitor, err := s.UpsertVisitorByName(ctx, name)
		if err != nil {
			return err
		}
		log.Printf("seeded sample visitor %s (%q)", visitor.ID, visitor.Name)
	}
	return nil
}

func deleteSamples(ctx context.Context, s *store.PostgresStore) error {
	stories, err := s.ListStories(ctx)
	if err != nil {
		return err
	}
	removed := 0
	for _, story := range stories {
		if story.Tags != sampleTag {
			continue
		}
		if err := s.DeleteStory(ctx, story.ID); err != nil {
			return err
		}
		removed++
		log.Printf("removed sample story %s (%q)", story.ID, story.Title)
	}

	sampleNames := make(map[string]bool, len(sampleVisitors))
	for _, name := range sampleVisitors {
		sampleNames[name] = true
	}
	visitors, err := s.ListVisitors(ctx)
	if err != nil {
		return err
	}
	for _, visitor := range visitors {
		if !sampleNames[visitor.Name] {
			continue
		}
		if err := s.DeleteVisitor(ctx, visitor.ID); err != nil {
			return err
		}
		removed++
		log.Printf("removed sample visitor %s (%q)", visitor.ID, visitor.Name)
	}
	log.Printf("removed %d sample records", removed)
	return nil
}

func upsertAdmin(ctx context.Context, s *store.PostgresStore, username, password string) error {
	if username == "" || password == "" {
		log.Fatal("admin username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if existing, err := s.GetAdminByUsername(ctx, username); err == nil {
		if err := s.UpdateAdminPassword(ctx, existing.ID, string(hash)); err != nil {
			return err
		}
		log.Printf("reset password for admin %q", username)
		return nil
	} else if !store.IsNotFound(err) {
		return err
	}

	admin, err := s.CreateAdmin(ctx, store.Admin{Username: username, PasswordHash: string(hash)})
	if err != nil {
		return err
	}
	log.Printf("created admin %s (%q)", admin.ID, admin.Username)
	return nil
}
