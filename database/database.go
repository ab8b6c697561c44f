package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"boutique-service/config"

	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
)

var DB *sql.DB

func InitDB() error {
	cfg := config.LoadConfig()

	// clientFoundRows makes RowsAffected count matched rows, so updates
	// that leave a row unchanged still distinguish "found" from "missing".
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return err
	}

	DB = db

	if err := createTables(); err != nil {
		return err
	}

	if err := seedAdmin(cfg); err != nil {
		log.Printf("Warning: admin bootstrap failed: %v", err)
	}
	seedDefaults()

	return nil
}

func CloseDB() {
	if DB != nil {
		if err := DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

func createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			wood_type VARCHAR(100),
			price DECIMAL(10,2) NOT NULL,
			category VARCHAR(100) NOT NULL,
			stock INT NOT NULL DEFAULT 0,
			image_url VARCHAR(512),
			perlouze_link VARCHAR(512),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS product_images (
			id INT AUTO_INCREMENT PRIMARY KEY,
			product_id INT NOT NULL,
			image_path VARCHAR(512) NOT NULL,
			display_order INT NOT NULL DEFAULT 1,
			is_primary TINYINT(1) NOT NULL DEFAULT 0,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			customer_name VARCHAR(255) NOT NULL,
			customer_email VARCHAR(255) NOT NULL,
			customer_phone VARCHAR(50),
			customer_address TEXT,
			items TEXT NOT NULL,
			subtotal DECIMAL(10,2) NOT NULL DEFAULT 0,
			shipping_cost DECIMAL(10,2) NOT NULL DEFAULT 0,
			total_amount DECIMAL(10,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_method VARCHAR(50),
			payment_id VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			` + "`key`" + ` VARCHAR(100) PRIMARY KEY,
			value TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS wood_types (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'nouveau',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS message_threads (
			id INT AUTO_INCREMENT PRIMARY KEY,
			contact_id INT NULL,
			subject VARCHAR(500) NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			customer_email VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'open',
			last_message_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			admin_last_viewed_at TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS thread_messages (
			id INT AUTO_INCREMENT PRIMARY KEY,
			thread_id INT NOT NULL,
			sender_type VARCHAR(20) NOT NULL,
			sender_name VARCHAR(255) NOT NULL,
			sender_email VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			has_attachments TINYINT(1) NOT NULL DEFAULT 0,
			resend_email_id VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (thread_id) REFERENCES message_threads(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS message_attachments (
			id INT AUTO_INCREMENT PRIMARY KEY,
			message_id INT NOT NULL,
			filename VARCHAR(255) NOT NULL,
			file_path VARCHAR(512) NOT NULL,
			file_size INT NOT NULL DEFAULT 0,
			mime_type VARCHAR(100),
			FOREIGN KEY (message_id) REFERENCES thread_messages(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS boutique_images (
			id INT AUTO_INCREMENT PRIMARY KEY,
			image_path VARCHAR(512) NOT NULL,
			display_order INT NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}
	return nil
}

// seedAdmin creates the bootstrap admin account on first run. Skipped when
// ADMIN_PASSWORD is not set.
func seedAdmin(cfg *config.Config) error {
	if cfg.AdminPassword == "" {
		return nil
	}

	var count int
	if err := DB.QueryRow("SELECT COUNT(*) FROM admins WHERE username = ?", cfg.AdminUsername).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = DB.Exec("INSERT INTO admins (username, password, email) VALUES (?, ?, ?)",
		cfg.AdminUsername, string(hashed), cfg.ContactEmail)
	return err
}

func seedDefaults() {
	defaultSettings := [][2]string{
		{"site_name", "Le ptit bout de bois"},
		{"site_description", "Créations artisanales en bois"},
		{"contact_email", "contact@lepetitboutdebois.fr"},
	}
	for _, kv := range defaultSettings {
		if _, err := DB.Exec("INSERT IGNORE INTO settings (`key`, value) VALUES (?, ?)", kv[0], kv[1]); err != nil {
			log.Printf("Warning: default setting %q not inserted: %v", kv[0], err)
		}
	}

	defaultCategories := []string{"Jeux", "Accessoires", "Bijoux bois & pierres", "Objets décoratifs"}
	for _, name := range defaultCategories {
		if _, err := DB.Exec("INSERT IGNORE INTO categories (name) VALUES (?)", name); err != nil {
			log.Printf("Warning: default category %q not inserted: %v", name, err)
		}
	}

	defaultWoodTypes := []string{"Chêne massif", "Noyer", "Bois de rose", "Bois recyclé"}
	for _, name := range defaultWoodTypes {
		if _, err := DB.Exec("INSERT IGNORE INTO wood_types (name) VALUES (?)", name); err != nil {
			log.Printf("Warning: default wood type %q not inserted: %v", name, err)
		}
	}
}
