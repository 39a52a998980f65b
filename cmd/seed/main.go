// Command main runs the database seeder for vidtube.
package main

import (
	"flag"
	"log"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.Users, "Number of users (channels) to create")
	videosPerUser := flag.Int("videos", defaults.VideosPerUser, "Videos per user")
	commentsPerVideo := flag.Int("comments", defaults.CommentsPerVideo, "Comments per published video")
	tweetsPerUser := flag.Int("tweets", defaults.TweetsPerUser, "Tweets per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt (seeded users cannot log in)")
	rngSeed := flag.Int64("seed", 0, "Random seed, 0 picks one from the clock")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d videos each, clean=%v\n", *numUsers, *videosPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		Users:            *numUsers,
		VideosPerUser:    *videosPerUser,
		CommentsPerVideo: *commentsPerVideo,
		TweetsPerUser:    *tweetsPerUser,
		SkipBcrypt:       *fast,
	}, *rngSeed)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	if !*fast {
		log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
	}
}
