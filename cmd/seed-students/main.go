package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/classtrack/attendance-backend/internal/config"
	"github.com/classtrack/attendance-backend/internal/database"
	"github.com/classtrack/attendance-backend/internal/logger"
	"github.com/classtrack/attendance-backend/internal/model"
	"github.com/classtrack/attendance-backend/internal/repository"
)

// Development seeder: a handful of courses and 50 students enrolled in all
// of them. All students share the default password below.
const defaultPassword = "student123"

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	courseRepo := repository.NewCourseRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)

	fmt.Println("=== Seeding Courses ===")

	courses := []model.Course{
		{Code: "CS101", Name: "Introduction to Programming"},
		{Code: "CS205", Name: "Data Structures"},
		{Code: "MA110", Name: "Linear Algebra"},
	}
	for i := range courses {
		if err := courseRepo.Upsert(ctx, &courses[i]); err != nil {
			log.Fatal().Err(err).Str("code", courses[i].Code).Msg("Failed to upsert course")
		}
		fmt.Printf("Course %s -> ID %d\n", courses[i].Code, courses[i].ID)
	}

	fmt.Println("=== Seeding 50 Students ===")

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash default password")
	}

	for i := 1; i <= 50; i++ {
		student := &model.Student{
			RegNumber:    fmt.Sprintf("S%04d", i),
			Name:         fmt.Sprintf("Student %02d", i),
			PasswordHash: string(hash),
		}
		if err := studentRepo.Create(ctx, student); err != nil {
			log.Fatal().Err(err).Str("reg_number", student.RegNumber).Msg("Failed to create student")
		}
		for j := range courses {
			if err := enrollmentRepo.Create(ctx, student.ID, courses[j].ID); err != nil {
				log.Fatal().Err(err).
					Int("student_id", student.ID).
					Int("course_id", courses[j].ID).
					Msg("Failed to enroll student")
			}
		}
	}

	fmt.Printf("Done: %d courses, 50 students, all enrolled. Default password: %q\n", len(courses), defaultPassword)
}
