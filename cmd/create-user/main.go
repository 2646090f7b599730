package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"claim_flow_app_go/config"
	"claim_flow_app_go/db"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/permissions"

	"golang.org/x/term"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	roles := services.NewRoleService(db.DB)
	if err := roles.Load(); err != nil {
		log.Fatalf("Failed to load roles: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	fmt.Println("=== Yeni Kullanıcı ===")
	fmt.Println()

	name := prompt("Ad Soyad: ")
	email := prompt("E-posta: ")
	phone := prompt("Telefon (boş bırakılabilir): ")

	var ids []string
	for _, r := range roles.Registry().Roles() {
		ids = append(ids, r.ID)
	}
	role := prompt(fmt.Sprintf("Rol [%s] (varsayılan %s): ", strings.Join(ids, ", "), permissions.RoleAdmin))
	if role == "" {
		role = permissions.RoleAdmin
	}

	var dealerID string
	if role != permissions.RoleAdmin && role != permissions.RoleStaff {
		dealerID = prompt("Bayi ID: ")
	}

	// Get password securely
	fmt.Print("Parola: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	fmt.Println()

	// The console operator acts with full rights
	operator := &models.User{Role: permissions.RoleAdmin}
	user, err := services.CreateUser(db.DB, roles.Registry(), operator, services.UserInput{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: string(passwordBytes),
		Role:     role,
		DealerID: dealerID,
	})
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ Kullanıcı oluşturuldu")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Ad: %s\n", user.Name)
	fmt.Printf("  E-posta: %s\n", user.Email)
	fmt.Printf("  Rol: %s\n", user.Role)
	fmt.Println()
	fmt.Printf("Giriş adresi: %s/login\n", cfg.AppURL)
}
