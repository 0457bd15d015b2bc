package seeders

import (
	"log"

	"musicschool_go/database"
	"musicschool_go/models"
	"musicschool_go/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedAdminUser()
	SeedInstruments()

	log.Println("Database seeding completed successfully!")
}

// SeedAdminUser creates the default admin account on first boot.
func SeedAdminUser() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	hashed, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := models.User{
		Email:    "admin@musicschool.local",
		Password: hashed,
		Role:     models.RoleAdmin,
		Active:   true,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin user: %v", err)
		return
	}

	log.Println("Admin user seeded successfully (change the default password)")
}

// SeedInstruments seeds the instrument lookup table.
func SeedInstruments() {
	var count int64
	database.DB.Model(&models.Instrument{}).Count(&count)
	if count > 0 {
		log.Println("Instruments already seeded, skipping...")
		return
	}

	names := []string{
		"Violino", "Viola", "Violoncelo", "Contrabaixo",
		"Flauta", "Clarinete", "Saxofone", "Trompete",
		"Trombone", "Piano", "Teclado", "Violão",
		"Guitarra", "Baixo", "Bateria", "Percussão", "Canto",
	}

	for _, name := range names {
		instrument := models.Instrument{Name: name, Active: true}
		if err := database.DB.Create(&instrument).Error; err != nil {
			log.Printf("Error seeding instrument %s: %v", name, err)
		}
	}

	log.Println("Instruments seeded successfully")
}
