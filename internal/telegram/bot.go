// Package telegram is the chat front end of the trainer: commands, typed and
// spoken answers, feedback display and daily digests.
package telegram

import (
	"context"
	"html"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"verbal-trainer/internal/auth"
	"verbal-trainer/internal/progress"
	"verbal-trainer/internal/session"
	"verbal-trainer/internal/speech"
	"verbal-trainer/internal/trainer"
)

// maxMessageLen is the Bot API limit for a single text message.
const maxMessageLen = 4096

type Deps struct {
	Coach       *trainer.Coach
	Store       progress.Recorder
	Transcriber speech.Transcriber
	// Auth is the allow-list; nil leaves the bot open.
	Auth        *auth.Service
	AdminUserID int64
	ParseMode   string
}

type Bot struct {
	api        *tgbotapi.BotAPI
	s          sender
	files      fileFetcher
	httpClient *http.Client
	coach      *trainer.Coach
	store      progress.Recorder
	stt        speech.Transcriber
	sessions   *session.Manager
	authSvc    *auth.Service
	adminID    int64
	parseMode  string
	now        func() time.Time
}

func New(botToken string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, api, deps)
	b.api = api
	return b, nil
}

func newBot(s sender, files fileFetcher, deps Deps) *Bot {
	authSvc := deps.Auth
	if authSvc == nil {
		authSvc, _ = auth.NewWithRepo(nil, nil)
	}
	return &Bot{
		s:          s,
		files:      files,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		coach:      deps.Coach,
		store:      deps.Store,
		stt:        deps.Transcriber,
		sessions:   session.NewManager(),
		authSvc:    authSvc,
		adminID:    deps.AdminUserID,
		parseMode:  deps.ParseMode,
		now:        time.Now,
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return
		}
		if !b.isAllowed(msg.From.ID) {
			log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
			b.sendMessage(msg.Chat.ID, b.escapeIfNeeded("Sorry, this trainer is private."))
			return
		}
		switch {
		case msg.IsCommand():
			b.handleCommand(ctx, msg)
		case msg.Voice != nil || msg.Audio != nil:
			b.handleVoice(ctx, msg)
		default:
			b.handleText(ctx, msg)
		}
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.From == nil || !b.isAllowed(cb.From.ID) {
			return
		}
		b.handleCallback(cb)
	}
}

// isAllowed reports whether userID may use the bot. The admin always may.
func (b *Bot) isAllowed(userID int64) bool {
	return (b.adminID != 0 && userID == b.adminID) || b.authSvc.IsAllowed(userID)
}

func (b *Bot) parseModeValue() string {
	if strings.EqualFold(b.parseMode, tgbotapi.ModeHTML) {
		return tgbotapi.ModeHTML
	}
	return ""
}

func (b *Bot) escapeIfNeeded(s string) string {
	if b.parseModeValue() == tgbotapi.ModeHTML {
		return html.EscapeString(s)
	}
	return s
}

// escapeLimit escapes s and cuts it so the escaped text stays within limit
// runes. Cuts fall between source runes, never inside an entity.
func (b *Bot) escapeLimit(s string, limit int) string {
	if b.parseModeValue() != tgbotapi.ModeHTML {
		return truncate(s, limit)
	}
	escaped := html.EscapeString(s)
	if utf8.RuneCountInString(escaped) <= limit {
		return escaped
	}
	var sb strings.Builder
	used := 0
	for _, r := range s {
		e := html.EscapeString(string(r))
		n := utf8.RuneCountInString(e)
		if used+n > limit-1 {
			break
		}
		sb.WriteString(e)
		used += n
	}
	sb.WriteString("…")
	return sb.String()
}

// bold wraps already escaped text.
func (b *Bot) bold(s string) string {
	if b.parseModeValue() == tgbotapi.ModeHTML {
		return "<b>" + s + "</b>"
	}
	return s
}

func (b *Bot) italic(s string) string {
	if b.parseModeValue() == tgbotapi.ModeHTML {
		return "<i>" + s + "</i>"
	}
	return s
}

func (b *Bot) newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessageLen))
	msg.ParseMode = b.parseModeValue()
	return msg
}

// sendMessage delivers text; when Telegram rejects the HTML the same text is
// resent without markup.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := b.newMessage(chatID, text)
	_, err := b.s.Send(msg)
	if err == nil {
		return
	}
	log.Printf("failed to send message: %v", err)
	if msg.ParseMode != tgbotapi.ModeHTML {
		return
	}
	plain := tgbotapi.NewMessage(chatID, truncate(stripHTML(text), maxMessageLen))
	if _, err := b.s.Send(plain); err != nil {
		log.Printf("failed to send plain message: %v", err)
	}
}

var markupTags = strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "")

// stripHTML turns the markup produced by this package back into plain text.
func stripHTML(s string) string {
	return html.UnescapeString(markupTags.Replace(s))
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
