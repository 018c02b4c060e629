package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"verbal-trainer/internal/analytics"
	"verbal-trainer/internal/auth"
	"verbal-trainer/internal/progress"
	"verbal-trainer/internal/speech"
	"verbal-trainer/internal/trainer"
)

const modulePrefix = "module:"

const welcomeText = "Welcome to the Verbal Communication Skills Trainer! Choose a module and input method to get started."

const helpText = `Send a typed answer or a voice message and I will score its clarity, tone and engagement.

/module - choose a training module
/topic - draw a new topic for the current module
/record - start recording a longer spoken answer
/stop - finish recording and get feedback
/history - show your recorded progress
/progress - show your score averages and trends`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID, userID := msg.Chat.ID, msg.From.ID
	switch msg.Command() {
	case "start", "help":
		out := b.newMessage(chatID, b.bold(b.escapeIfNeeded(welcomeText))+"\n\n"+b.escapeIfNeeded(helpText))
		out.ReplyMarkup = b.moduleKeyboard()
		b.send(out)
	case "module":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			out := b.newMessage(chatID, b.escapeIfNeeded("Choose a module:"))
			out.ReplyMarkup = b.moduleKeyboard()
			b.send(out)
			return
		}
		m, err := trainer.ParseModule(arg)
		if err != nil {
			b.sendMessage(chatID, b.escapeIfNeeded("Unknown module. Available: "+moduleIDs()))
			return
		}
		b.selectModule(chatID, userID, m)
	case "topic":
		st := b.sessions.Get(userID)
		if !st.Module.Training() {
			b.sendMessage(chatID, b.escapeIfNeeded("Topics are part of the training modules. Pick one with /module."))
			return
		}
		topic := b.coach.NextTopic()
		b.sessions.SetTopic(userID, topic)
		b.sendMessage(chatID, b.topicLine(topic))
	case "record":
		if b.stt == nil {
			b.sendMessage(chatID, b.escapeIfNeeded("Voice input is not configured."))
			return
		}
		if _, err := b.sessions.UpdateCapture(userID, speech.Capture.Start); err != nil {
			b.sendMessage(chatID, b.escapeIfNeeded("Already recording. Send voice messages, then /stop."))
			return
		}
		b.sendMessage(chatID, b.escapeIfNeeded("🎙 Listening... Send one or more voice messages, then /stop to get feedback."))
	case "stop":
		c, err := b.sessions.UpdateCapture(userID, speech.Capture.Stop)
		if err != nil {
			b.sendMessage(chatID, b.escapeIfNeeded("Nothing is being recorded. Use /record to start."))
			return
		}
		if strings.TrimSpace(c.Transcript) == "" {
			b.sendMessage(chatID, b.escapeIfNeeded("No speech captured. Use /record to try again."))
			return
		}
		b.evaluate(ctx, chatID, userID, c.Transcript, progress.KindVoice, "")
	case "history":
		b.sendMessage(chatID, b.formatHistory(progress.ForUser(b.store.LoadAll(), userID)))
	case "progress":
		report := analytics.Analyze(b.store.LoadAll(), userID)
		b.sendMessage(chatID, b.escapeIfNeeded(report.Summary()))
	case "allow", "revoke", "allowlist":
		b.handleAdminCommand(msg)
	default:
		b.sendMessage(chatID, b.escapeIfNeeded("Unknown command. Use /help."))
	}
}

// handleAdminCommand manages the allow-list; only the configured admin may use it.
func (b *Bot) handleAdminCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if b.adminID == 0 || msg.From.ID != b.adminID {
		b.sendMessage(chatID, b.escapeIfNeeded("This command is only available to the administrator."))
		return
	}
	switch msg.Command() {
	case "allowlist":
		users := b.authSvc.List()
		if len(users) == 0 {
			b.sendMessage(chatID, b.escapeIfNeeded("Allow-list is empty, the bot is open to everyone."))
			return
		}
		var bld strings.Builder
		bld.WriteString("Allow-list:\n")
		for _, u := range users {
			bld.WriteString(fmt.Sprintf("- id=%d", u.ID))
			if u.Username != "" {
				bld.WriteString(" @" + u.Username)
			}
			bld.WriteString("\n")
		}
		b.sendMessage(chatID, b.escapeIfNeeded(bld.String()))
	case "allow":
		args := strings.Fields(msg.CommandArguments())
		if len(args) < 1 || len(args) > 2 {
			b.sendMessage(chatID, b.escapeIfNeeded("Usage: /allow <user_id> [username]"))
			return
		}
		uid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.sendMessage(chatID, b.escapeIfNeeded("Invalid user_id"))
			return
		}
		user := auth.User{ID: uid}
		if len(args) == 2 {
			user.Username = strings.TrimPrefix(args[1], "@")
		}
		if err := b.authSvc.Upsert(user); err != nil {
			log.Printf("❌ Failed to persist allow-list: %v", err)
			b.sendMessage(chatID, b.escapeIfNeeded(fmt.Sprintf("Failed to save allow-list: %v", err)))
			return
		}
		b.sendMessage(chatID, b.escapeIfNeeded(fmt.Sprintf("✅ User %d added to the allow-list", uid)))
	case "revoke":
		args := strings.Fields(msg.CommandArguments())
		if len(args) != 1 {
			b.sendMessage(chatID, b.escapeIfNeeded("Usage: /revoke <user_id>"))
			return
		}
		uid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.sendMessage(chatID, b.escapeIfNeeded("Invalid user_id"))
			return
		}
		if err := b.authSvc.Remove(uid); err != nil {
			log.Printf("❌ Failed to persist allow-list: %v", err)
			b.sendMessage(chatID, b.escapeIfNeeded(fmt.Sprintf("Failed to save allow-list: %v", err)))
			return
		}
		b.sendMessage(chatID, b.escapeIfNeeded(fmt.Sprintf("User %d removed from the allow-list", uid)))
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	log.Printf("Incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)
	b.evaluate(ctx, msg.Chat.ID, msg.From.ID, msg.Text, progress.KindText, "")
}

func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	chatID, userID := msg.Chat.ID, msg.From.ID
	if b.stt == nil {
		b.sendMessage(chatID, b.escapeIfNeeded("Voice input is not configured."))
		return
	}

	audio := speech.Audio{Filename: "voice.ogg", MimeType: "audio/ogg"}
	var fileID string
	if msg.Voice != nil {
		fileID = msg.Voice.FileID
		if msg.Voice.MimeType != "" {
			audio.MimeType = msg.Voice.MimeType
		}
	} else {
		fileID = msg.Audio.FileID
		audio.MimeType = msg.Audio.MimeType
		if msg.Audio.FileName != "" {
			audio.Filename = msg.Audio.FileName
		}
	}
	log.Printf("🎙 Voice message from %d (%s)", userID, audio.MimeType)

	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.Printf("❌ Voice download failed for user %d: %v", userID, err)
		b.sendMessage(chatID, b.escapeIfNeeded("⚠️ Could not download the voice message, please try again."))
		return
	}
	audio.Data = data

	text, err := b.stt.Transcribe(ctx, audio)
	if errors.Is(err, speech.ErrNoSpeech) {
		b.sendMessage(chatID, b.escapeIfNeeded("Could not understand audio. Please try again."))
		return
	}
	if err != nil {
		log.Printf("❌ Transcription failed for user %d: %v", userID, err)
		b.sendMessage(chatID, b.escapeIfNeeded("⚠️ Speech recognition is unavailable right now, please try again later."))
		return
	}

	if b.sessions.Get(userID).Capture.State == speech.Listening {
		add := func(c speech.Capture) (speech.Capture, error) { return c.Add(text) }
		if _, err := b.sessions.UpdateCapture(userID, add); err == nil {
			b.sendMessage(chatID, b.bold("You said:")+" "+b.escapeIfNeeded(text))
			return
		}
	}
	b.evaluate(ctx, chatID, userID, text, progress.KindVoice, b.bold("Transcribed Text:")+" "+b.escapeLimit(text, prefixBudget))
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("failed to answer callback: %v", err)
	}
	if cb.Message == nil || !strings.HasPrefix(cb.Data, modulePrefix) {
		return
	}
	m, err := trainer.ParseModule(strings.TrimPrefix(cb.Data, modulePrefix))
	if err != nil {
		return
	}
	b.selectModule(cb.Message.Chat.ID, cb.From.ID, m)
}

// selectModule switches the user's module and, for training modules, draws the first topic.
func (b *Bot) selectModule(chatID, userID int64, m trainer.Module) {
	b.sessions.SetModule(userID, m)
	info, _ := m.Info()
	text := b.bold(b.escapeIfNeeded(info.Title)) + "\n" + b.italic(b.escapeIfNeeded(info.Placeholder))
	if m.Training() {
		topic := b.coach.NextTopic()
		b.sessions.SetTopic(userID, topic)
		text += "\n\n" + b.topicLine(topic)
	}
	b.sendMessage(chatID, text)
}

// evaluate runs one round and replies with the feedback and, when available, a voice note.
func (b *Bot) evaluate(ctx context.Context, chatID, userID int64, input, kind, prefix string) {
	st := b.sessions.Get(userID)
	if _, err := b.s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Printf("failed to send chat action: %v", err)
	}

	ev, err := b.coach.Evaluate(ctx, trainer.Request{
		UserID: userID,
		Module: st.Module,
		Topic:  st.Topic,
		Input:  input,
		Kind:   kind,
	})
	if errors.Is(err, trainer.ErrEmptyInput) {
		b.sendMessage(chatID, b.escapeIfNeeded("Please provide input to get feedback."))
		return
	}
	if err != nil {
		log.Printf("❌ Evaluation failed for user %d: %v", userID, err)
		b.sendMessage(chatID, b.escapeIfNeeded("❌ Error generating feedback. Please try again."))
		return
	}
	log.Printf("LLM response [model=%s, tokens: prompt=%d, completion=%d, total=%d]",
		ev.Response.Model, ev.Response.PromptTokens, ev.Response.CompletionTokens, ev.Response.TotalTokens)

	var parts []string
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, b.formatFeedback(ev))
	if ev.SaveErr != nil {
		parts = append(parts, b.escapeIfNeeded("⚠️ Failed to save progress."))
	}
	b.sendMessage(chatID, strings.Join(parts, "\n\n"))

	if len(ev.Audio) > 0 {
		voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "feedback.ogg", Bytes: ev.Audio})
		b.send(voice)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.s.Send(c); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) moduleKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, info := range trainer.Modules() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(info.Title, modulePrefix+string(info.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) topicLine(topic string) string {
	return b.bold("Your Topic:") + " " + b.escapeIfNeeded(topic)
}

func moduleIDs() string {
	var ids []string
	for _, info := range trainer.Modules() {
		ids = append(ids, string(info.ID))
	}
	return strings.Join(ids, ", ")
}
