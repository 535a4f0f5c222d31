// Seeds the booking store with fake confirmed bookings for manual
// testing of the availability and console surfaces.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/TejjP/zyero-lead-accelerator/internal/store"
	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

func main() {
	count := flag.Int("count", 10, "number of bookings to create")
	days := flag.Int("days", 14, "spread bookings over this many days ahead")
	flag.Parse()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	baseURL := os.Getenv("STORE_BASE_URL")
	if baseURL == "" {
		logger.Fatal().Msg("STORE_BASE_URL is required")
	}
	client := store.NewClient(baseURL, os.Getenv("STORE_ADMIN_TOKEN"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	created := 0
	for created < *count {
		date := randomOpenDate(*days)
		payload := store.BookingPayload{
			Name:        gofakeit.Name(),
			Email:       gofakeit.Email(),
			Phone:       gofakeit.Phone(),
			Company:     gofakeit.Company(),
			Description: fmt.Sprintf("Budget: %s | Role: %s", gofakeit.RandomString([]string{"<1k", "1k-5k", "5k+"}), gofakeit.JobTitle()),
			Date:        date.String(),
			Time:        gofakeit.RandomString(timeslot.Slots),
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := client.CreateBooking(ctx, payload); err != nil {
			logger.Error().Err(err).Str("date", payload.Date).Str("time", payload.Time).Msg("seed booking failed")
			continue
		}
		created++
		logger.Info().Str("date", payload.Date).Str("time", payload.Time).Str("name", payload.Name).Msg("seeded booking")
	}

	logger.Info().Int("count", created).Msg("seeding complete")
}

// randomOpenDate picks a future date on a day the calendar is open.
func randomOpenDate(days int) timeslot.DateKey {
	today := timeslot.NewDateKey(time.Now())
	for {
		date := today.AddDays(1 + gofakeit.Number(0, days-1))
		if date.Weekday() != timeslot.ClosedWeekday {
			return date
		}
	}
}
