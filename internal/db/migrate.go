package db

import (
	"log"

	"qms-document-control/internal/domain"
	"qms-document-control/internal/user"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&domain.User{},
		&domain.AuditLogEntry{},
	)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}

// SeedData seeds the database with an initial admin account (for development only)
func SeedData() {
	userRepo := user.NewRepository(AppDb)

	adminUser := &domain.User{
		Name:     "QMS Admin",
		Email:    "admin@example.com",
		Password: "password123",
		Role:     domain.RoleAdmin,
		IsActive: true,
	}

	// Check if user exists
	_, err := userRepo.FindByEmail(adminUser.Email)
	if err != nil {
		userService := user.NewService(userRepo)
		// User doesn't exist, create it
		if err := userService.Register(adminUser); err != nil {
			log.Printf("Error creating admin user: %v", err)
		} else {
			log.Printf("Created admin user: %s", adminUser.Email)
		}
	} else {
		log.Printf("Admin user already exists: %s", adminUser.Email)
	}
}
