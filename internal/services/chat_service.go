package services

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/chandankhang/CompTrack/internal/models"
)

// TrackingLookup is the single storage dependency the chat responder has:
// resolving a tracking number to a complaint.
type TrackingLookup interface {
	FindByNumber(number string) (*models.Complaint, error)
}

var trackingNumberPattern = regexp.MustCompile(`(?i)comp-[0-9]+-[a-z0-9]+`)

// ChatService is a keyword-matched canned-response responder, not a learned
// model. Rules are evaluated in order and the first match wins.
type ChatService struct {
	lookup TrackingLookup
}

// NewChatService creates a new ChatService.
func NewChatService(lookup TrackingLookup) *ChatService {
	return &ChatService{lookup: lookup}
}

// Reply produces a response for a chat message.
func (s *ChatService) Reply(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))

	switch {
	case strings.Contains(lower, "status") || strings.Contains(lower, "track"):
		return "Please provide your complaint ID (e.g., COMP-123456789) to check its status."
	case strings.Contains(lower, "hi") || strings.Contains(lower, "hello") || strings.Contains(lower, "hey"):
		return "Hi there! How can I assist you today?"
	case strings.Contains(lower, "help") || strings.Contains(lower, "support"):
		return "I'm here to help! What do you need assistance with? You can ask about tracking complaints, filing a new one, or anything else!"
	case strings.Contains(lower, "file") || strings.Contains(lower, "submit"):
		return "To file a complaint, log in and use the dashboard. Need help with the process?"
	case strings.Contains(lower, "comp-"):
		return s.replyWithStatus(message)
	case strings.Contains(lower, "thanks") || strings.Contains(lower, "thank you"):
		return "You're welcome! Anything else I can do for you?"
	default:
		return "Hmm, I'm not sure how to answer that yet. Try asking about complaint status, filing help, or just say hi!"
	}
}

// replyWithStatus extracts a tracking number from the message and performs
// the one live lookup the responder is allowed.
func (s *ChatService) replyWithStatus(message string) string {
	number := trackingNumberPattern.FindString(message)
	if number == "" {
		return "No complaint found with that ID. Please check the number and try again."
	}

	// Stored numbers use an uppercase prefix and lowercase suffix.
	number = "COMP" + strings.ToLower(number[4:])

	complaint, err := s.lookup.FindByNumber(number)
	if err != nil {
		log.Printf("chat lookup failed for %s: %v", number, err)
		return "No complaint found with that ID. Please check the number and try again."
	}

	return fmt.Sprintf("Complaint %s is currently %s. Filed on %s.",
		complaint.ComplaintNumber,
		complaint.Status,
		complaint.CreatedAt.Format("Jan 2, 2006"),
	)
}
