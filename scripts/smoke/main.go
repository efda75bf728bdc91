package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/pkg/client"
)

func main() {
	var (
		baseURL  string
		email    string
		password string
		date     string
		timeout  time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&email, "email", os.Getenv("SMOKE_EMAIL"), "Instructor email")
	flag.StringVar(&password, "password", os.Getenv("SMOKE_PASSWORD"), "Instructor password")
	flag.StringVar(&date, "date", "", "Calendar date (YYYY-MM-DD), defaults to today")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Overall timeout")
	flag.Parse()

	if email == "" || password == "" {
		log.Fatal("email and password are required")
	}

	logr, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx, client.New(baseURL, client.WithLogger(logr)), logr, email, password, date); err != nil {
		logr.Fatal("smoke run failed", zap.Error(err))
	}
}

func run(ctx context.Context, api *client.Client, logr *zap.Logger, email, password, date string) error {
	auth := client.NewAuthContext(api, client.LogAlerter{Logger: logr})

	redirect, err := auth.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer func() {
		if err := auth.Logout(context.Background()); err != nil {
			logr.Warn("logout failed", zap.Error(err))
		}
	}()
	state := auth.State()
	logr.Info("logged in", zap.String("user", state.User.Email), zap.String("redirect", redirect))

	profile, err := api.MyInstructorProfile(ctx, auth.Token())
	if err != nil {
		return fmt.Errorf("instructor profile: %w", err)
	}
	logr.Info("instructor profile", zap.String("id", profile.ID), zap.String("status", string(profile.Status)), zap.Float64("rating", profile.Rating))

	overview, err := api.Calendar(ctx, auth.Token(), profile.ID, date)
	if err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	logr.Info("calendar",
		zap.String("date", overview.Date),
		zap.Int("sessions", len(overview.Sessions)),
		zap.Int("assignments", len(overview.Assignments)),
		zap.Int("classes", len(overview.Classes)),
		zap.Strings("degraded", overview.Degraded),
	)

	analytics, err := api.Analytics(ctx, auth.Token(), profile.ID)
	if err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	logr.Info("analytics",
		zap.Int("total_sessions", analytics.TotalSessions),
		zap.Int("completed_sessions", analytics.CompletedSessions),
		zap.Float64("average_rating", analytics.AverageRating),
	)
	return nil
}
