package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wacms/internal/models"
	"wacms/internal/repository"
)

const seedIDPrefix = "seed_"

func newSeedCmd() *cobra.Command {
	var (
		threads int
		clear   bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample conversation feed messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				if clear {
					if err := clearSeedData(db); err != nil {
						return err
					}
				}
				return seedMessages(cmd, db, threads)
			})(cmd, args)
		},
	}

	cmd.Flags().IntVar(&threads, "threads", 4, "Number of conversation threads to create")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear existing seed data before inserting")

	return cmd
}

// clearSeedData removes rows inserted by a previous seed
func clearSeedData(db *sql.DB) error {
	printWarning("Clearing existing seed data...")

	if _, err := db.Exec("DELETE FROM messages WHERE id LIKE $1", seedIDPrefix+"%"); err != nil {
		return fmt.Errorf("failed to delete seed messages: %w", err)
	}

	printSuccess("✓ Seed data cleared\n")
	return nil
}

// seedMessages writes a short exchange per thread through the feed repository
func seedMessages(cmd *cobra.Command, db *sql.DB, threads int) error {
	printInfo(fmt.Sprintf("Seeding %d conversation threads...", threads))

	exchange := []struct {
		direction models.Direction
		content   string
	}{
		{models.DirectionIncoming, "Hi, is my order ready for pickup?"},
		{models.DirectionOutgoing, "Hello! Yes, it is ready at the front desk."},
		{models.DirectionIncoming, "Great, thanks 👍"},
	}

	repo := repository.NewFeedMessageRepository(db)
	base := time.Now().UTC().Add(-time.Duration(threads) * time.Hour)

	created, total := 0, 0
	for i := 1; i <= threads; i++ {
		phone := fmt.Sprintf("+15550100%03d", i)
		for j, line := range exchange {
			status := models.FeedStatusUnread
			if line.direction == models.DirectionOutgoing || i%2 == 0 {
				status = models.FeedStatusRead
			}

			msg := &models.FeedMessage{
				ID:          fmt.Sprintf("%s%03d_%d", seedIDPrefix, i, j),
				CreatedAt:   base.Add(time.Duration(i)*time.Hour + time.Duration(j)*time.Minute),
				PhoneNumber: phone,
				Content:     line.content,
				Direction:   line.direction,
				Status:      status,
			}

			inserted, err := repo.Upsert(cmd.Context(), msg)
			if err != nil {
				return fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
			}
			total++
			if inserted {
				created++
			}
		}
	}

	printSuccess(fmt.Sprintf("✓ Seeded %d messages (refreshed %d existing)", created, total-created))
	return nil
}
