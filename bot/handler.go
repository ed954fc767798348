// Package bot wires the Telegram intake flow: command dispatch, the
// per-user submission state machine, scoring and persistence.
package bot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"grievbot/bot/db"
	"grievbot/bot/genai"
	"grievbot/bot/issue"
	"grievbot/bot/priority"
	"grievbot/bot/ratelimit"
	"grievbot/bot/submission"
	"grievbot/bot/telegram"

	"github.com/apex/log"
)

const (
	welcomeMessage = "Welcome to the Civic Grievance Bot!\n\n" +
		"Describe your problem in a message (or use /register) and I will file it " +
		"with the right municipal department.\n\n" +
		"Commands:\n" +
		"/register - file a new grievance\n" +
		"/status - see your filed grievances\n" +
		"/skip_photo - skip the photo step"

	registerPrompt  = "Please describe your grievance after /register, for example:\n/register The streetlight on Oak Lane has been out for a week."
	photoOnlyPrompt = "I'm waiting for a photo of the issue. Send one now or use /skip_photo."
	noPhotoExpected = "I wasn't expecting a photo right now. Describe your grievance in a message to file a new one."
	limitMessage    = "You have reached the daily limit of grievance reports. Please try again tomorrow."
	savedTemplate   = "Your grievance has been registered.\n\nID: %d\nCategory: %s\nLocation: %s\nPriority score: %.3f\n\n%s"
	saveFailed      = "Something went wrong while saving your grievance. Please try again."

	statusListLimit = 5
)

// Transport is the slice of the Telegram client the handler needs.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	DownloadPhoto(ctx context.Context, sizes []telegram.PhotoSize) ([]byte, error)
}

// Assistant is the slice of the Gemini client the handler needs. The
// scorer holds its own reference for sentiment rating.
type Assistant interface {
	ExtractIssueAndLocation(ctx context.Context, text string, categories []string, fallback string) genai.Classification
	Reply(ctx context.Context, text string) string
}

// Handler processes one Telegram update at a time.
type Handler struct {
	catalog   *issue.Config
	store     submission.Store
	scorer    *priority.Scorer
	assistant Assistant
	transport Transport
	db        *sql.DB
	limiter   *ratelimit.Limiter
}

func NewHandler(catalog *issue.Config, store submission.Store, scorer *priority.Scorer,
	assistant Assistant, transport Transport, database *sql.DB, limiter *ratelimit.Limiter) *Handler {
	return &Handler{
		catalog:   catalog,
		store:     store,
		scorer:    scorer,
		assistant: assistant,
		transport: transport,
		db:        database,
		limiter:   limiter,
	}
}

// HandleUpdate dispatches one update. Errors from the Telegram transport
// are returned; everything else is handled by messaging the user.
func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, userID, msg.Photo)
	}

	text := strings.TrimSpace(msg.Text)
	command, args := splitCommand(text)

	switch command {
	case "/start":
		return h.transport.SendMessage(ctx, chatID, welcomeMessage)
	case "/register":
		if args == "" {
			return h.transport.SendMessage(ctx, chatID, registerPrompt)
		}
		return h.register(ctx, chatID, msg.From, args)
	case "/skip_photo":
		return h.skipPhoto(ctx, chatID, userID)
	case "/status":
		return h.status(ctx, chatID, userID)
	}

	if text == "" {
		return nil
	}
	return h.handleText(ctx, chatID, msg.From, text)
}

// register opens a new submission from the grievance text. An already
// open submission for the user is discarded in favor of the new report.
func (h *Handler) register(ctx context.Context, chatID int64, from *telegram.User, text string) error {
	if !h.limiter.Allow(ctx, from.ID) {
		return h.transport.SendMessage(ctx, chatID, limitMessage)
	}

	if old, ok := h.store.Get(from.ID); ok {
		log.Warnf("User %d started a new grievance, discarding open one in state %s", from.ID, old.State)
	}

	result := h.assistant.ExtractIssueAndLocation(ctx, text, h.catalog.Categories(), h.catalog.Fallback)
	log.Infof("User %d grievance classified as %q at %q", from.ID, result.Issue, result.Location)

	s := &submission.Submission{
		UserID:      from.ID,
		Username:    from.Username,
		Grievance:   text,
		Issue:       result.Issue,
		Requirement: h.catalog.RequirementFor(result.Issue),
		Location:    result.Location,
	}
	h.store.Put(s)

	return h.advance(ctx, chatID, s)
}

// handleText feeds free text into the open submission, or starts a new
// one when nothing is open.
func (h *Handler) handleText(ctx context.Context, chatID int64, from *telegram.User, text string) error {
	s, ok := h.store.Get(from.ID)
	if !ok {
		return h.register(ctx, chatID, from, text)
	}

	switch s.State {
	case submission.AwaitingLocation:
		s.Location = text
	case submission.AwaitingExtraDetail:
		s.ExtraDetail = text
	case submission.AwaitingPhoto:
		return h.transport.SendMessage(ctx, chatID, photoOnlyPrompt)
	default:
		return h.register(ctx, chatID, from, text)
	}
	h.store.Put(s)

	return h.advance(ctx, chatID, s)
}

func (h *Handler) handlePhoto(ctx context.Context, chatID, userID int64, sizes []telegram.PhotoSize) error {
	s, ok := h.store.Get(userID)
	if !ok || s.State != submission.AwaitingPhoto {
		return h.transport.SendMessage(ctx, chatID, noPhotoExpected)
	}

	photo, err := h.transport.DownloadPhoto(ctx, sizes)
	if err != nil {
		log.Errorf("Failed to download photo from user %d: %v", userID, err)
		return h.transport.SendMessage(ctx, chatID, "I couldn't download that photo. Please try sending it again or use /skip_photo.")
	}
	s.Photo = photo
	h.store.Put(s)

	return h.advance(ctx, chatID, s)
}

func (h *Handler) skipPhoto(ctx context.Context, chatID, userID int64) error {
	s, ok := h.store.Get(userID)
	if !ok || s.State != submission.AwaitingPhoto {
		return h.transport.SendMessage(ctx, chatID, "There is no photo to skip right now.")
	}
	s.PhotoDeclined = true
	h.store.Put(s)

	return h.advance(ctx, chatID, s)
}

func (h *Handler) status(ctx context.Context, chatID, userID int64) error {
	list, err := db.ListByUser(h.db, userID, statusListLimit)
	if err != nil {
		return h.transport.SendMessage(ctx, chatID, "Couldn't fetch your grievances right now. Please try again later.")
	}
	if len(list) == 0 {
		return h.transport.SendMessage(ctx, chatID, "You haven't filed any grievances yet.")
	}

	var b strings.Builder
	b.WriteString("Your recent grievances:\n")
	for _, g := range list {
		fmt.Fprintf(&b, "\n#%d [%s] %s\nStatus: %s, priority %.3f\n", g.ID, g.Issue, g.Grievance, g.Status, g.PriorityScore)
	}
	return h.transport.SendMessage(ctx, chatID, b.String())
}

// advance runs the state machine and either prompts for the next missing
// field or finalizes the submission.
func (h *Handler) advance(ctx context.Context, chatID int64, s *submission.Submission) error {
	state, prompt := s.Advance()
	if state != submission.Complete {
		return h.transport.SendMessage(ctx, chatID, prompt)
	}
	return h.finalize(ctx, chatID, s)
}

// finalize scores the grievance, generates the acknowledgment and saves
// the record. The submission is closed whether or not the save succeeds.
func (h *Handler) finalize(ctx context.Context, chatID int64, s *submission.Submission) error {
	defer h.store.Delete(s.UserID)

	scores := h.scorer.Score(ctx, s.Grievance, s.Issue)
	reply := h.assistant.Reply(ctx, s.Grievance)

	id, err := db.SaveGrievance(h.db, &db.Grievance{
		UserID:         s.UserID,
		Username:       s.Username,
		Grievance:      s.Grievance,
		Issue:          s.Issue,
		Location:       s.Location,
		Photo:          s.Photo,
		AdditionalData: s.ExtraDetail,
		AIReply:        reply,
		SentimentScore: scores.Sentiment,
		KeywordScore:   scores.KeywordSeverity,
		FrequencyScore: scores.Frequency,
		PriorityScore:  scores.Index,
	})
	if err != nil {
		log.Errorf("Failed to save grievance for user %d: %v", s.UserID, err)
		return h.transport.SendMessage(ctx, chatID, saveFailed)
	}

	log.Infof("Grievance %d saved for user %d with priority %.3f", id, s.UserID, scores.Index)
	return h.transport.SendMessage(ctx, chatID,
		fmt.Sprintf(savedTemplate, id, s.Issue, s.Location, scores.Index, reply))
}

// splitCommand separates a leading /command from its argument text.
// Telegram group-style suffixes like /status@MyBot are stripped.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	command, args, _ := strings.Cut(text, " ")
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	return command, strings.TrimSpace(args)
}
