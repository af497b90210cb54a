package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo users,
// submissions, votes and comments.
//
// Behavior:
//  1. Clears existing data in all four tables.
//  2. Creates 10 users, the first one an admin.
//  3. Creates 12 submissions (mixed suggestions/bounties) with votes from
//     ~half the users each and a couple of comments.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"votes", "comments", "beatmaps", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE beatmaps AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE votes AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE comments AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('beatmaps', 'votes', 'comments')")
	}

	log.Println("Cleared existing data")

	// --- Seed Users ---
	users := make([]User, 0, 10)
	for i := 1; i <= 10; i++ {
		users = append(users, User{
			ID:          uuid.NewString(),
			DisplayName: fmt.Sprintf("player%d", i),
			IsAdmin:     i == 1,
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Println("Seeded 10 users.")

	// --- Seed Submissions with votes and comments ---
	mods := []string{"NM", "HD", "HR", "DT", "FM"}
	skillTags := []string{"aim", "speed", "reading", "stamina", "tech"}

	for i := 1; i <= 12; i++ {
		submitter := users[r.Intn(len(users))]

		kind := TypeSuggestion
		if i%3 == 0 {
			kind = TypeBounty
		}

		bm := Beatmap{
			Title:       fmt.Sprintf("Demo Artist - Track %02d [Insane]", i),
			URL:         fmt.Sprintf("https://osu.ppy.sh/beatmapsets/%d#osu/%d", 100000+i, 200000+i),
			Stars:       fmt.Sprintf("%.2f", 4+r.Float64()*3),
			CS:          "4",
			AR:          "9",
			OD:          "8.5",
			BPM:         fmt.Sprintf("%d", 140+r.Intn(80)),
			Length:      "2:05",
			Slot:        fmt.Sprintf("%s%d", mods[r.Intn(len(mods))], 1+r.Intn(3)),
			Mod:         mods[r.Intn(len(mods))],
			Skill:       skillTags[r.Intn(len(skillTags))],
			Type:        kind,
			Status:      "pending",
			SubmittedBy: submitter.ID,
		}
		if err := db.Create(&bm).Error; err != nil {
			return fmt.Errorf("failed to seed beatmap: %w", err)
		}

		// ~half the users vote on each map
		for _, u := range users {
			if r.Intn(2) == 0 {
				continue
			}
			voteType := VoteTypeUp
			if r.Intn(100) < 30 {
				voteType = VoteTypeDown
			}
			vote := Vote{BeatmapID: bm.ID, UserID: u.ID, VoteType: voteType}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "beatmap_id"}, {Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"vote_type"}),
			}).Create(&vote).Error; err != nil {
				return fmt.Errorf("failed to seed vote: %w", err)
			}
		}

		commenter := users[r.Intn(len(users))]
		comment := Comment{
			BeatmapID:   bm.ID,
			UserID:      commenter.ID,
			DisplayName: commenter.DisplayName,
			CommentText: "would fit the pool nicely",
		}
		if err := db.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to seed comment: %w", err)
		}
	}

	log.Println("Seeded 12 submissions with votes and comments.")
	return nil
}
