package main

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"hostelms/internal/config"
	"hostelms/internal/database"
	"hostelms/internal/domain"
	"hostelms/internal/repository"
)

// Seeds a development database with the staff accounts, a handful of
// students, and a block of rooms per hostel. Safe to run once against an
// empty database; reruns fail on the unique email and room number indexes.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	rooms := repository.NewRoomRepository(db)

	seedUsers := []struct {
		email    string
		name     string
		role     domain.Role
		hostel   string
		password string
	}{
		{"admin@hostel.local", "Portal Admin", domain.RoleAdmin, "", "admin123"},
		{"hmc@hostel.local", "HMC Office", domain.RoleHMC, "", "hmc12345"},
		{"warden.lohit.girls@hostel.local", "Warden Lohit Girls", domain.RoleWardenLohitGirls, domain.HostelLohitGirls, "warden123"},
		{"warden.lohit.boys@hostel.local", "Warden Lohit Boys", domain.RoleWardenLohitBoys, domain.HostelLohitBoys, "warden123"},
		{"warden.papum.boys@hostel.local", "Warden Papum Boys", domain.RoleWardenPapumBoys, domain.HostelPapumBoys, "warden123"},
		{"warden.subhanshiri.boys@hostel.local", "Warden Subhanshiri Boys", domain.RoleWardenSubhanshiriBoys, domain.HostelSubhanshiriBoys, "warden123"},
		{"student1@hostel.local", "Aarav Sharma", domain.RoleStudent, "", "student123"},
		{"student2@hostel.local", "Priya Singh", domain.RoleStudent, "", "student123"},
		{"student3@hostel.local", "Rohan Das", domain.RoleStudent, "", "student123"},
	}

	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		u := &domain.User{
			Email:        su.email,
			FullName:     su.name,
			PasswordHash: string(hash),
			Role:         su.role,
			Hostel:       su.hostel,
			IsActive:     true,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed user %s: %v", su.email, err)
		}
		log.Printf("created user %s (%s)", u.Email, u.Role)
	}

	// Two floors of rooms per hostel: singles on the ground floor,
	// doubles and one dormitory above.
	for _, hostel := range domain.Hostels() {
		prefix := roomPrefix(hostel)
		for i := 1; i <= 4; i++ {
			room := &domain.Room{
				Number:   fmt.Sprintf("%s-G%02d", prefix, i),
				Building: hostel,
				Floor:    0,
				Hostel:   hostel,
				Type:     domain.RoomSingle,
				Capacity: 1,
			}
			if err := rooms.Create(ctx, room); err != nil {
				log.Fatalf("seed room %s: %v", room.Number, err)
			}
		}
		for i := 1; i <= 4; i++ {
			room := &domain.Room{
				Number:   fmt.Sprintf("%s-1%02d", prefix, i),
				Building: hostel,
				Floor:    1,
				Hostel:   hostel,
				Type:     domain.RoomDouble,
				Capacity: 2,
			}
			if err := rooms.Create(ctx, room); err != nil {
				log.Fatalf("seed room %s: %v", room.Number, err)
			}
		}
		dorm := &domain.Room{
			Number:   fmt.Sprintf("%s-D01", prefix),
			Building: hostel,
			Floor:    1,
			Hostel:   hostel,
			Type:     domain.RoomDormitory,
			Capacity: 8,
		}
		if err := rooms.Create(ctx, dorm); err != nil {
			log.Fatalf("seed room %s: %v", dorm.Number, err)
		}
		log.Printf("created 9 rooms for %s", hostel)
	}

	log.Println("seed complete")
}

func roomPrefix(hostel string) string {
	switch hostel {
	case domain.HostelLohitGirls:
		return "LG"
	case domain.HostelLohitBoys:
		return "LB"
	case domain.HostelPapumBoys:
		return "PB"
	case domain.HostelSubhanshiriBoys:
		return "SB"
	}
	return "RX"
}
