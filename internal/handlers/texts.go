package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"daily-bible-bot/internal/models"
	"daily-bible-bot/internal/plans"
	"daily-bible-bot/internal/progress"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	btnBibleYear    = "📖 Bible in One Year"
	btnPsalmsMonth  = "🙏 Psalms in One Month"
	btnNewTestament = "✝️ New Testament in 6 Months"

	txtRegisterFirst   = "Please use /start to register first!"
	txtAlreadyRead     = "You've already read today's passage! 📖"
	txtPlanComplete    = "🎉 Congratulations! You've completed your reading plan!"
	txtFetchFailed     = "❌ Couldn't fetch today's reading. Please try again later."
	txtSomethingBroken = "❌ Something went wrong. Please try again later."
	txtCancelled       = "Registration cancelled. Use /start to begin again."
	txtChooseTr        = "📖 Choose your preferred Bible translation:"
	txtShareHint       = "Use /today to get today's reading and share it!"
	txtReminder        = "⏰ Your daily reading is waiting. Use /today to read it."
	txtNoHistory       = "No readings yet. Use /today to start."

	txtHelp = "Use /today to get today's reading\n" +
		"Use /progress to see your progress\n" +
		"Use /history to see your last readings\n" +
		"Use /settings to change your plan"

	progressBars = 20
	historySize  = 7
)

var planButtons = map[string]plans.Key{
	btnBibleYear:    plans.BibleInOneYear,
	btnPsalmsMonth:  plans.PsalmsInOneMonth,
	btnNewTestament: plans.NewTestamentInSixMonths,
}

// planFromButton falls back to the default plan for unknown text.
func planFromButton(text string) plans.Key {
	if k, ok := planButtons[strings.TrimSpace(text)]; ok {
		return k
	}
	return plans.DefaultKey
}

func planKB() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBibleYear),
			tgbotapi.NewKeyboardButton(btnPsalmsMonth),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnNewTestament),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func translationKB() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, t := range models.Translations() {
		row = append(row, tgbotapi.NewKeyboardButton(string(t)))
	}
	kb := tgbotapi.NewReplyKeyboard(row)
	kb.OneTimeKeyboard = true
	return kb
}

func welcomeText(firstName string) string {
	return fmt.Sprintf("👋 Welcome %s to Daily Bible Reader!\n\n📚 Choose your reading plan:", firstName)
}

func registeredText(p *plans.Plan, tr models.Translation) string {
	return fmt.Sprintf("✅ Registration complete!\n\n📚 Plan: %s\n📖 Translation: %s (%s)\n\n%s",
		p.Name, tr, tr.Name(), txtHelp)
}

// progressBar renders pct (0..100) as a 20-cell bar.
func progressBar(pct float64) string {
	filled := int(pct / 100 * progressBars)
	filled = max(0, min(filled, progressBars))
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBars-filled)
}

func dayLine(day, total int) string {
	pct := float64(day) / float64(total) * 100
	return fmt.Sprintf("📊 Day %d of %d (%.1f%%)", day, total, pct)
}

func progressText(st *progress.Status) string {
	var b strings.Builder
	b.WriteString("📊 Your Reading Progress\n\n")
	fmt.Fprintf(&b, "📚 Plan: %s\n", st.Plan.Name)
	fmt.Fprintf(&b, "📖 Translation: %s\n", st.User.Translation)
	fmt.Fprintf(&b, "📅 Started: %s\n", st.User.StartDate)
	fmt.Fprintf(&b, "🔢 Days Read: %d of %d\n", st.DaysRead, st.TotalDays)
	fmt.Fprintf(&b, "📈 Progress: %.1f%%\n", st.Percent())
	switch {
	case st.Complete():
		b.WriteString("🎉 Plan complete\n")
	case st.ReadToday:
		b.WriteString("✅ Today's reading done\n")
	default:
		b.WriteString("⏳ Today's reading is waiting: /today\n")
	}
	b.WriteString("\n")
	b.WriteString(progressBar(st.Percent()))
	return b.String()
}

// shareCommand builds "/share_Song_of_Solomon_2"; Telegram commands can't
// contain spaces.
func shareCommand(book string, chapter int) string {
	return "/share_" + strings.ReplaceAll(book, " ", "_") + "_" + strconv.Itoa(chapter)
}

// parseShare reverses shareCommand for a command name without the slash.
func parseShare(cmd string) (string, int, bool) {
	rest, ok := strings.CutPrefix(cmd, "share_")
	if !ok {
		return "", 0, false
	}
	i := strings.LastIndex(rest, "_")
	if i <= 0 {
		return "", 0, false
	}
	chapter, err := strconv.Atoi(rest[i+1:])
	if err != nil {
		return "", 0, false
	}
	book := strings.ReplaceAll(rest[:i], "_", " ")
	if !plans.ValidChapter(book, chapter) {
		return "", 0, false
	}
	return book, chapter, true
}

func historyText(recs []models.ProgressRecord) string {
	var b strings.Builder
	b.WriteString("🗓 Recent readings\n")
	for _, r := range recs {
		ref := r.Reference
		if ref == "" {
			ref = fmt.Sprintf("%s %d", r.Book, r.Chapter)
		}
		fmt.Fprintf(&b, "\n%s · Day %d · %s", r.Date, r.Day, ref)
	}
	return b.String()
}

func shareText(book string, chapter int) string {
	return fmt.Sprintf("📖 %s Chapter %d\n\nShared via Daily Bible Reader Bot\nStart your reading plan with /start",
		book, chapter)
}
