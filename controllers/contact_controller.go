package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"boutique-service/database"
	"boutique-service/email"
	"boutique-service/middlewares"
	"boutique-service/models"

	"github.com/gin-gonic/gin"
)

// SubmitContact stores a contact form submission and seeds its
// conversation thread: one contact row, one thread, one customer message,
// all in a single transaction.
func SubmitContact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subject := req.Subject
	if subject == "" {
		subject = fmt.Sprintf("Message de %s", req.Name)
	}

	tx, err := database.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'envoi du message"})
		return
	}

	result, err := tx.Exec(
		"INSERT INTO contacts (name, email, message, status) VALUES (?, ?, ?, 'nouveau')",
		req.Name, req.Email, req.Message,
	)
	if err != nil {
		_ = tx.Rollback()
		log.Printf("Contact insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'envoi du message"})
		return
	}
	contactID, _ := result.LastInsertId()

	threadResult, err := tx.Exec(`
		INSERT INTO message_threads (contact_id, subject, customer_name, customer_email, status, last_message_at)
		VALUES (?, ?, ?, ?, 'open', NOW())`,
		contactID, subject, req.Name, req.Email,
	)
	if err != nil {
		_ = tx.Rollback()
		log.Printf("Thread insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'envoi du message"})
		return
	}
	threadID, _ := threadResult.LastInsertId()

	if _, err := tx.Exec(`
		INSERT INTO thread_messages (thread_id, sender_type, sender_name, sender_email, message)
		VALUES (?, 'customer', ?, ?, ?)`,
		threadID, req.Name, req.Email, req.Message,
	); err != nil {
		_ = tx.Rollback()
		log.Printf("Thread message insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'envoi du message"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'envoi du message"})
		return
	}

	if emailService != nil {
		contact := &models.Contact{
			ID:        int(contactID),
			Name:      req.Name,
			Email:     req.Email,
			Message:   req.Message,
			CreatedAt: time.Now(),
		}
		ctx, cancel := email.Background()
		emailService.SendContactNotification(ctx, contact)
		middlewares.RecordEmailSend("merchant_new_contact")
		cancel()
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Message envoyé avec succès",
		"contactId": contactID,
		"threadId":  threadID,
	})
}

// GetContacts lists contact submissions for the admin.
func GetContacts(c *gin.Context) {
	rows, err := database.DB.Query(
		"SELECT id, name, email, message, status, created_at FROM contacts ORDER BY created_at DESC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer func() { _ = rows.Close() }()

	contacts := make([]models.Contact, 0)
	for rows.Next() {
		var contact models.Contact
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.Email,
			&contact.Message, &contact.Status, &contact.CreatedAt); err != nil {
			log.Printf("Error scanning contact row: %v", err)
			continue
		}
		contacts = append(contacts, contact)
	}

	c.JSON(http.StatusOK, contacts)
}

// UpdateContactStatus marks a contact read/handled.
func UpdateContactStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut requis"})
		return
	}

	result, err := database.DB.Exec("UPDATE contacts SET status = ? WHERE id = ?", req.Status, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message non trouvé"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Statut mis à jour"})
}

// DeleteContact removes a contact submission.
func DeleteContact(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
		return
	}

	if _, err := database.DB.Exec("DELETE FROM contacts WHERE id = ?", id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message supprimé"})
}
