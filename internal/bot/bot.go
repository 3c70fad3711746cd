// Package bot answers WhatsApp messages relayed by Twilio: owners can ask
// which plants need water and log a watering without opening the app.
package bot

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	myopenai "github.com/pathakanu/myPlants/internal/openai"
	"github.com/pathakanu/myPlants/internal/schedule"
	"github.com/pathakanu/myPlants/internal/tracker"
	"github.com/sirupsen/logrus"
)

// Classifier infers intent for messages the keyword rules do not match.
type Classifier interface {
	ClassifyIntent(ctx context.Context, content string) (myopenai.Intent, error)
}

// Verifier authenticates an inbound webhook request. The form is parsed
// before Verify is called.
type Verifier interface {
	Verify(r *http.Request) bool
}

// Bot handles the Twilio WhatsApp webhook.
type Bot struct {
	plants   *tracker.Service
	openAI   Classifier
	verifier Verifier
	state    *conversationStore
	logger   logrus.FieldLogger
}

// New creates a Bot. openAI may be nil. Requests failing verifier are
// refused; with a nil verifier every request is refused.
func New(plants *tracker.Service, openAI Classifier, verifier Verifier, logger logrus.FieldLogger) *Bot {
	return &Bot{
		plants:   plants,
		openAI:   openAI,
		verifier: verifier,
		state:    newConversationStore(),
		logger:   logger,
	}
}

// Handler returns the HTTP handler for incoming Twilio messages.
func (b *Bot) Handler() http.HandlerFunc {
	return b.handleIncomingMessage
}

func (b *Bot) handleIncomingMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		b.logger.WithError(err).Warn("webhook: parse error")
		b.writeTwilioResponse(w, "Sorry, I couldn't understand that request.")
		return
	}
	if b.verifier == nil || !b.verifier.Verify(r) {
		b.logger.WithField("remote", r.RemoteAddr).Warn("webhook: rejected unsigned request")
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	from := r.PostFormValue("From")
	body := strings.TrimSpace(r.PostFormValue("Body"))
	if from == "" || body == "" {
		b.writeTwilioResponse(w, "I need a message to work with. Please try again.")
		return
	}

	ctx := r.Context()
	userID, err := b.plants.UserByWhatsApp(ctx, from)
	if err != nil {
		if !errors.Is(err, tracker.ErrNotFound) && !errors.Is(err, tracker.ErrUnauthenticated) {
			b.logger.WithError(err).Error("webhook: resolve sender")
		}
		b.writeTwilioResponse(w, "I don't know this number yet. Add it to your profile in the app first.")
		return
	}

	b.writeTwilioResponse(w, b.reply(ctx, userID, body))
}

func (b *Bot) reply(ctx context.Context, userID, body string) string {
	if choices, ok := b.state.Pending(userID); ok {
		if index, err := strconv.Atoi(strings.TrimSpace(body)); err == nil {
			b.state.Clear(userID)
			if index < 1 || index > len(choices) {
				return fmt.Sprintf("Please reply with a number between 1 and %d.", len(choices))
			}
			return b.water(ctx, userID, choices[index-1])
		}
		b.state.Clear(userID)
	}

	intent, name := b.determineIntent(ctx, body)
	switch intent {
	case myopenai.IntentListDue:
		return b.listDue(ctx, userID)
	case myopenai.IntentWaterPlant:
		return b.waterByName(ctx, userID, name)
	default:
		return helpResponse()
	}
}

func (b *Bot) determineIntent(ctx context.Context, message string) (myopenai.Intent, string) {
	lower := strings.ToLower(message)
	if isHelpRequest(lower) {
		return myopenai.IntentHelp, ""
	}
	if isListRequest(lower) {
		return myopenai.IntentListDue, ""
	}
	if name, ok := extractWateredName(message); ok {
		return myopenai.IntentWaterPlant, name
	}

	if b.openAI == nil {
		return myopenai.IntentHelp, ""
	}
	intent, err := b.openAI.ClassifyIntent(ctx, message)
	if err != nil {
		if !errors.Is(err, myopenai.ErrClientNotInitialised) {
			b.logger.WithError(err).Warn("intent classification error")
		}
		return myopenai.IntentHelp, ""
	}
	return intent, ""
}

// listDue returns the plants that are overdue or due today.
func (b *Bot) listDue(ctx context.Context, userID string) string {
	plants, err := b.plants.ListPlants(ctx, userID)
	if err != nil {
		b.logger.WithError(err).WithField("user_id", userID).Error("list plants")
		return "I couldn't load your plants. Please try again later."
	}

	var sb strings.Builder
	count := 0
	for _, p := range plants {
		if p.Status != schedule.StatusOverdue && p.Status != schedule.StatusDueToday {
			continue
		}
		count++
		sb.WriteString(fmt.Sprintf("%d. %s: %s\n", count, p.Name, describeDue(p)))
	}
	if count == 0 {
		return "All your plants are fine for today."
	}
	return "These plants need water:\n" + sb.String()
}

func (b *Bot) waterByName(ctx context.Context, userID, name string) string {
	if strings.TrimSpace(name) != "" {
		plant, err := b.plants.FindPlantByName(ctx, userID, name)
		if errors.Is(err, tracker.ErrNotFound) {
			return fmt.Sprintf("I couldn't find a plant called '%s'.", name)
		}
		if err != nil {
			b.logger.WithError(err).Error("find plant")
			return "I couldn't look that plant up. Please try again."
		}
		return b.water(ctx, userID, plant.ID)
	}

	plants, err := b.plants.ListPlants(ctx, userID)
	if err != nil {
		b.logger.WithError(err).Error("list plants")
		return "I couldn't load your plants. Please try again later."
	}
	var due []tracker.PlantView
	for _, p := range plants {
		if p.Status == schedule.StatusOverdue || p.Status == schedule.StatusDueToday {
			due = append(due, p)
		}
	}
	switch len(due) {
	case 0:
		return "Which plant did you water? Reply \"watered <plant name>\"."
	case 1:
		return b.water(ctx, userID, due[0].ID)
	}

	choices := make([]uuid.UUID, 0, len(due))
	var sb strings.Builder
	sb.WriteString("Which one did you water? Reply with its number:\n")
	for i, p := range due {
		choices = append(choices, p.ID)
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, p.Name))
	}
	b.state.SetPending(userID, choices)
	return sb.String()
}

func (b *Bot) water(ctx context.Context, userID string, plantID uuid.UUID) string {
	res, err := b.plants.QuickWater(ctx, userID, plantID)
	var scheduleErr *tracker.ScheduleUpdateError
	switch {
	case errors.As(err, &scheduleErr):
		return "Watering saved, but I couldn't update the schedule. It will be fixed shortly."
	case err != nil:
		b.logger.WithError(err).WithField("plant_id", plantID).Error("quick water")
		return "I couldn't save that watering. Please try again."
	}
	return fmt.Sprintf("Logged %d ml for %s. Next watering %s.", res.Event.Amount, res.Plant.Name, res.Plant.NextWatering.Format("Mon Jan 02"))
}

func describeDue(p tracker.PlantView) string {
	if p.DaysUntil == nil || *p.DaysUntil >= 0 {
		return "due today"
	}
	days := -*p.DaysUntil
	if days == 1 {
		return "1 day late"
	}
	return fmt.Sprintf("%d days late", days)
}

func (b *Bot) writeTwilioResponse(w http.ResponseWriter, message string) {
	twiml := struct {
		XMLName xml.Name `xml:"Response"`
		Message string   `xml:"Message"`
	}{
		Message: message,
	}

	w.Header().Set("Content-Type", "application/xml")
	if err := xml.NewEncoder(w).Encode(twiml); err != nil {
		b.logger.WithError(err).Warn("twilio response encode")
	}
}

func isListRequest(body string) bool {
	return body == "due" ||
		body == "list" ||
		strings.Contains(body, "need water") ||
		strings.Contains(body, "needs water") ||
		strings.Contains(body, "what should i water") ||
		(strings.Contains(body, "list") && strings.Contains(body, "plant"))
}

func isHelpRequest(body string) bool {
	return body == "help" || body == "?" || body == "menu"
}

func helpResponse() string {
	return "You can say things like:\n- \"due\" to see which plants need water\n- \"watered fern\" to log a watering for your fern\n- \"watered\" to pick from the plants that are due"
}

var wateredRegex = regexp.MustCompile(`(?i)^\s*(?:i\s+)?(?:watered|water)\b(?:\s+(?:the|my)\b)?\s*(.*?)[.!]?\s*$`)

func extractWateredName(message string) (string, bool) {
	matches := wateredRegex.FindStringSubmatch(message)
	if len(matches) < 2 {
		return "", false
	}
	return strings.TrimSpace(matches[1]), true
}

// conversationStore remembers the numbered choices offered to a user.
type conversationStore struct {
	mu    sync.Mutex
	state map[string][]uuid.UUID
}

func newConversationStore() *conversationStore {
	return &conversationStore{state: make(map[string][]uuid.UUID)}
}

func (c *conversationStore) SetPending(userID string, choices []uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[userID] = choices
}

func (c *conversationStore) Pending(userID string) ([]uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	choices, ok := c.state[userID]
	return choices, ok
}

func (c *conversationStore) Clear(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.state, userID)
}
