package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, quests, achievements")
		dbPath   = flag.String("db", "", "Sqlite database path (uses DATABASE_URL when empty)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	db, err := openDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&model.Quest{}, &model.Achievement{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	switch *seedType {
	case "all":
		log.Println("Seeding quests and achievements...")
		if err := seedQuests(db); err != nil {
			log.Fatalf("Failed to seed quests: %v", err)
		}
		if err := seedAchievements(db); err != nil {
			log.Fatalf("Failed to seed achievements: %v", err)
		}
	case "quests":
		log.Println("Seeding quests only...")
		if err := seedQuests(db); err != nil {
			log.Fatalf("Failed to seed quests: %v", err)
		}
	case "achievements":
		log.Println("Seeding achievements only...")
		if err := seedAchievements(db); err != nil {
			log.Fatalf("Failed to seed achievements: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'quests', or 'achievements'", *seedType)
	}

	log.Println("Seeding completed")
}

func openDatabase(sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Info)}

	if sqlitePath != "" {
		log.Printf("Connecting to sqlite database: %s", sqlitePath)
		return gorm.Open(sqlite.Open(sqlitePath), cfg)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("DATABASE_URL not set, falling back to lumen_api.db")
		return gorm.Open(sqlite.Open("lumen_api.db"), cfg)
	}
	return gorm.Open(postgres.Open(dsn), cfg)
}

func seedQuests(db *gorm.DB) error {
	endOfDay := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	endOfWeek := endOfDay.Add(6 * 24 * time.Hour)

	quests := []model.Quest{
		{
			Title:        "Daily Learner",
			Description:  "Complete 3 tests today",
			Kind:         shared.QuestKindDaily,
			Metric:       shared.MetricTestsCompleted,
			Target:       3,
			RewardPoints: 50,
			ExpiresAt:    &endOfDay,
		},
		{
			Title:        "Curious Mind",
			Description:  "View 5 learning materials today",
			Kind:         shared.QuestKindDaily,
			Metric:       shared.MetricMaterialsViewed,
			Target:       5,
			RewardPoints: 30,
			ExpiresAt:    &endOfDay,
		},
		{
			Title:        "Test Marathon",
			Description:  "Complete 20 tests this week",
			Kind:         shared.QuestKindWeekly,
			Metric:       shared.MetricTestsCompleted,
			Target:       20,
			RewardPoints: 300,
			ExpiresAt:    &endOfWeek,
		},
		{
			Title:        "Point Collector",
			Description:  "Earn 500 points this week",
			Kind:         shared.QuestKindWeekly,
			Metric:       shared.MetricPoints,
			Target:       500,
			RewardPoints: 200,
			ExpiresAt:    &endOfWeek,
		},
		{
			Title:        "Week of Fire",
			Description:  "Keep a 7 day activity streak",
			Kind:         shared.QuestKindSpecial,
			Metric:       shared.MetricStreakCurrent,
			Target:       7,
			RewardPoints: 150,
		},
	}

	for i := range quests {
		quests[i].ID = uuid.Must(uuid.NewV7()).String()
		quests[i].IsActive = true
		if err := db.Create(&quests[i]).Error; err != nil {
			return err
		}
		log.Printf("Seeded quest: %s", quests[i].Title)
	}
	return nil
}

func seedAchievements(db *gorm.DB) error {
	achievements := []model.Achievement{
		{
			Name:         "First Steps",
			Description:  "Complete your first test",
			Metric:       shared.MetricTestsCompleted,
			Threshold:    1,
			RewardPoints: 25,
		},
		{
			Name:         "Dedicated Student",
			Description:  "Complete 50 tests",
			Metric:       shared.MetricTestsCompleted,
			Threshold:    50,
			RewardPoints: 250,
		},
		{
			Name:         "Bookworm",
			Description:  "View 100 learning materials",
			Metric:       shared.MetricMaterialsViewed,
			Threshold:    100,
			RewardPoints: 200,
		},
		{
			Name:         "Streak Master",
			Description:  "Reach a 30 day activity streak",
			Metric:       shared.MetricStreakMax,
			Threshold:    30,
			RewardPoints: 500,
		},
		{
			Name:         "Point Millionaire",
			Description:  "Accumulate 10000 lifetime points",
			Metric:       shared.MetricPoints,
			Threshold:    10000,
			RewardPoints: 1000,
		},
		{
			Name:        "Level 10",
			Description: "Reach level 10",
			Metric:      shared.MetricLevel,
			Threshold:   10,
		},
	}

	for i := range achievements {
		achievements[i].ID = uuid.Must(uuid.NewV7()).String()
		achievements[i].IsActive = true
		if err := db.Create(&achievements[i]).Error; err != nil {
			return err
		}
		log.Printf("Seeded achievement: %s", achievements[i].Name)
	}
	return nil
}

func showHelp() {
	log.Println(`Seeder for quests and achievements.

Usage:
  go run ./seed [flags]

Flags:
  -type   all | quests | achievements (default "all")
  -db     sqlite database path, overrides DATABASE_URL
  -help   show this message`)
}
