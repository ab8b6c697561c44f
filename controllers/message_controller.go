package controllers

import (
	"database/sql"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"boutique-service/database"
	"boutique-service/email"
	"boutique-service/middlewares"
	"boutique-service/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
)

const (
	maxReplyAttachments   = 5
	maxAttachmentSize     = 10 << 20 // 10 MB
	defaultInboundSubject = "Message sans sujet"
)

var allowedAttachmentExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true, ".pdf": true,
}

// GetThreads lists conversations for the admin inbox, newest activity
// first. The unread count is computed from the admin's last-viewed
// timestamp, not a per-message flag.
func GetThreads(c *gin.Context) {
	rows, err := database.DB.Query(`
		SELECT mt.id, mt.contact_id, mt.subject, mt.customer_name, mt.customer_email,
		       mt.status, mt.last_message_at, mt.admin_last_viewed_at, mt.created_at,
		       (SELECT COUNT(*) FROM thread_messages
		        WHERE thread_id = mt.id AND sender_type = 'customer'
		          AND created_at > COALESCE(mt.admin_last_viewed_at, '1970-01-01')) AS unread_count,
		       COALESCE((SELECT message FROM thread_messages WHERE thread_id = mt.id
		                 ORDER BY created_at DESC, id DESC LIMIT 1), '') AS last_message,
		       COALESCE((SELECT sender_type FROM thread_messages WHERE thread_id = mt.id
		                 ORDER BY created_at DESC, id DESC LIMIT 1), '') AS last_sender
		FROM message_threads mt
		ORDER BY mt.last_message_at DESC`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	defer func() { _ = rows.Close() }()

	threads := make([]models.Thread, 0)
	for rows.Next() {
		var t models.Thread
		var contactID sql.NullInt64
		var viewedAt sql.NullTime
		if err := rows.Scan(&t.ID, &contactID, &t.Subject, &t.CustomerName, &t.CustomerEmail,
			&t.Status, &t.LastMessageAt, &viewedAt, &t.CreatedAt,
			&t.UnreadCount, &t.LastMessage, &t.LastSender); err != nil {
			log.Printf("Error scanning thread row: %v", err)
			continue
		}
		if contactID.Valid {
			id := int(contactID.Int64)
			t.ContactID = &id
		}
		if viewedAt.Valid {
			t.AdminLastViewedAt = &viewedAt.Time
		}
		threads = append(threads, t)
	}

	c.JSON(http.StatusOK, threads)
}

// GetThreadMessages returns a thread's full history, attachments
// included.
func GetThreadMessages(c *gin.Context) {
	threadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return
	}

	rows, err := database.DB.Query(`
		SELECT tm.id, tm.thread_id, tm.sender_type, tm.sender_name, tm.sender_email,
		       tm.message, tm.has_attachments, COALESCE(tm.resend_email_id, ''), tm.created_at,
		       (SELECT COUNT(*) FROM message_attachments WHERE message_id = tm.id) AS attachment_count
		FROM thread_messages tm
		WHERE tm.thread_id = ?
		ORDER BY tm.created_at ASC, tm.id ASC`, threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	defer func() { _ = rows.Close() }()

	messages := make([]models.ThreadMessage, 0)
	for rows.Next() {
		var m models.ThreadMessage
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderType, &m.SenderName, &m.SenderEmail,
			&m.Message, &m.HasAttachments, &m.ResendEmailID, &m.CreatedAt, &m.AttachmentCount); err != nil {
			log.Printf("Error scanning message row: %v", err)
			continue
		}
		messages = append(messages, m)
	}

	for i := range messages {
		if messages[i].HasAttachments {
			messages[i].Attachments = loadAttachments(messages[i].ID)
		}
	}

	c.JSON(http.StatusOK, messages)
}

func loadAttachments(messageID int) []models.Attachment {
	rows, err := database.DB.Query(`
		SELECT id, message_id, filename, file_path, file_size, COALESCE(mime_type, '')
		FROM message_attachments WHERE message_id = ?`, messageID)
	if err != nil {
		log.Printf("Failed to load attachments for message %d: %v", messageID, err)
		return nil
	}
	defer func() { _ = rows.Close() }()

	attachments := make([]models.Attachment, 0)
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.MessageID, &a.Filename, &a.FilePath, &a.FileSize, &a.MimeType); err != nil {
			log.Printf("Error scanning attachment row: %v", err)
			continue
		}
		attachments = append(attachments, a)
	}
	return attachments
}

// MarkThreadRead stamps the admin's last-viewed time, zeroing the unread
// count.
func MarkThreadRead(c *gin.Context) {
	threadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return
	}

	result, err := database.DB.Exec(
		"UPDATE message_threads SET admin_last_viewed_at = NOW() WHERE id = ?", threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread non trouvé"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReplyToThread appends an admin reply, stores its attachments and mails
// the customer with the thread tag in the subject. The email is
// best-effort; the reply persists either way.
func ReplyToThread(c *gin.Context) {
	threadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return
	}

	message := strings.TrimSpace(c.PostForm("message"))
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le message est requis"})
		return
	}

	thread, err := fetchThread(threadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Thread non trouvé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["attachments"]
	}
	if len(files) > maxReplyAttachments {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Trop de pièces jointes"})
		return
	}
	for _, file := range files {
		if file.Size > maxAttachmentSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Pièce jointe trop volumineuse"})
			return
		}
		if !allowedAttachmentExts[strings.ToLower(filepath.Ext(file.Filename))] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Seuls les images et PDF sont autorisés"})
			return
		}
	}

	adminName := c.GetString("adminUsername")
	if adminName == "" {
		adminName = "Le ptit bout de bois"
	}
	senderEmail := cfg.ContactEmail

	result, err := database.DB.Exec(`
		INSERT INTO thread_messages (thread_id, sender_type, sender_name, sender_email, message, has_attachments)
		VALUES (?, 'admin', ?, ?, ?, ?)`,
		threadID, adminName, senderEmail, message, len(files) > 0,
	)
	if err != nil {
		log.Printf("Reply insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	messageID, _ := result.LastInsertId()

	var emailAttachments []*resend.Attachment
	for _, file := range files {
		storedName := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
		storedPath := filepath.Join(cfg.AttachmentsDir, storedName)
		if err := c.SaveUploadedFile(file, storedPath); err != nil {
			log.Printf("Attachment save failed: %v", err)
			continue
		}

		if _, err := database.DB.Exec(`
			INSERT INTO message_attachments (message_id, filename, file_path, file_size, mime_type)
			VALUES (?, ?, ?, ?, ?)`,
			messageID, file.Filename, storedName, file.Size, file.Header.Get("Content-Type"),
		); err != nil {
			log.Printf("Attachment insert failed: %v", err)
		}

		content, err := os.ReadFile(storedPath)
		if err != nil {
			log.Printf("Attachment read failed: %v", err)
			continue
		}
		emailAttachments = append(emailAttachments, &resend.Attachment{
			Filename: file.Filename,
			Content:  content,
		})
	}

	if _, err := database.DB.Exec(`
		UPDATE message_threads
		SET last_message_at = NOW(), status = 'open', admin_last_viewed_at = NOW()
		WHERE id = ?`, threadID); err != nil {
		log.Printf("Thread bump failed: %v", err)
	}

	if emailService != nil {
		ctx, cancel := email.Background()
		emailID, err := emailService.SendThreadReply(ctx, thread, message, emailAttachments)
		cancel()
		middlewares.RecordEmailSend("thread_reply")
		if err != nil {
			log.Printf("Thread reply email failed: %v", err)
		} else if _, err := database.DB.Exec(
			"UPDATE thread_messages SET resend_email_id = ? WHERE id = ?", emailID, messageID); err != nil {
			log.Printf("Failed to record email id: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Réponse envoyée", "messageId": messageID})
}

// InboundEmailWebhook routes a customer reply back into its thread using
// the [#THREAD-<id>] subject tag, or opens a new thread when the tag is
// absent.
func InboundEmailWebhook(c *gin.Context) {
	var payload models.InboundEmail
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Inbound email received from %s: %s", payload.From, payload.Subject)

	body := payload.Text
	if body == "" {
		body = payload.HTML
	}

	threadID, ok := email.ParseThreadTag(payload.Subject)
	if !ok {
		senderName, senderEmail := parseFromAddress(payload.From)
		subject := payload.Subject
		if subject == "" {
			subject = defaultInboundSubject
		}

		threadResult, err := database.DB.Exec(`
			INSERT INTO message_threads (contact_id, subject, customer_name, customer_email, status, last_message_at)
			VALUES (NULL, ?, ?, ?, 'open', NOW())`,
			subject, senderName, senderEmail,
		)
		if err != nil {
			log.Printf("Inbound thread insert failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
			return
		}
		newThreadID, _ := threadResult.LastInsertId()

		if _, err := database.DB.Exec(`
			INSERT INTO thread_messages (thread_id, sender_type, sender_name, sender_email, message)
			VALUES (?, 'customer', ?, ?, ?)`,
			newThreadID, senderName, senderEmail, body,
		); err != nil {
			log.Printf("Inbound message insert failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Nouveau thread créé", "threadId": newThreadID})
		return
	}

	thread, err := fetchThread(threadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Thread non trouvé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	senderName, senderEmail := parseFromAddress(payload.From)
	if senderName == senderEmail && thread.CustomerName != "" {
		senderName = thread.CustomerName
	}

	if _, err := database.DB.Exec(`
		INSERT INTO thread_messages (thread_id, sender_type, sender_name, sender_email, message)
		VALUES (?, 'customer', ?, ?, ?)`,
		threadID, senderName, senderEmail, body,
	); err != nil {
		log.Printf("Inbound message insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	if _, err := database.DB.Exec(`
		UPDATE message_threads SET last_message_at = NOW(), status = 'open' WHERE id = ?`, threadID); err != nil {
		log.Printf("Thread bump failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message reçu et stocké"})
}

// UpdateThreadStatus opens or closes a conversation.
func UpdateThreadStatus(c *gin.Context) {
	threadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=open closed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}

	result, err := database.DB.Exec(
		"UPDATE message_threads SET status = ? WHERE id = ?", req.Status, threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread non trouvé"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Statut mis à jour"})
}

// DeleteThread removes a conversation; messages and attachments cascade.
func DeleteThread(c *gin.Context) {
	threadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return
	}

	result, err := database.DB.Exec("DELETE FROM message_threads WHERE id = ?", threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread non trouvé"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Thread supprimé"})
}

func fetchThread(threadID int) (*models.Thread, error) {
	var t models.Thread
	var contactID sql.NullInt64
	var viewedAt sql.NullTime
	err := database.DB.QueryRow(`
		SELECT id, contact_id, subject, customer_name, customer_email, status,
		       last_message_at, admin_last_viewed_at, created_at
		FROM message_threads WHERE id = ?`, threadID).Scan(
		&t.ID, &contactID, &t.Subject, &t.CustomerName, &t.CustomerEmail, &t.Status,
		&t.LastMessageAt, &viewedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if contactID.Valid {
		id := int(contactID.Int64)
		t.ContactID = &id
	}
	if viewedAt.Valid {
		t.AdminLastViewedAt = &viewedAt.Time
	}
	return &t, nil
}

var fromAddressRe = regexp.MustCompile(`<(.+?)>`)

// parseFromAddress splits "Name <addr>" email headers; a bare address
// doubles as the name.
func parseFromAddress(from string) (name, address string) {
	if m := fromAddressRe.FindStringSubmatch(from); m != nil {
		address = strings.TrimSpace(m[1])
		name = strings.TrimSpace(fromAddressRe.ReplaceAllString(from, ""))
		if name == "" {
			name = address
		}
		return name, address
	}
	address = strings.TrimSpace(from)
	return address, address
}
