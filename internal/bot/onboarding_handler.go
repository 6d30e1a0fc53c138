package bot

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/storage"
)

// OnboardingHandler runs the registration flow: name, grade, school code.
// A profile is required before scanning or trading.
type OnboardingHandler struct {
	store storage.Store
}

func NewOnboardingHandler(store storage.Store) *OnboardingHandler {
	return &OnboardingHandler{store: store}
}

// HandleStart handles the /start command.
// Called from session worker - no locking needed.
func (h *OnboardingHandler) HandleStart(session *UserSession) {
	profile, err := h.store.GetProfile(session.userId)
	if err != nil {
		session.replyWithError(err)
		return
	}
	if profile != nil {
		session.profile = profile
		session.reply(MsgAlreadyOnboarded, profile.DisplayName)
		return
	}

	session.step = stepAskName
	session.onboarding = OnboardingState{}
	session.reply(MsgWelcome)
}

// HandleMessage consumes text input while an onboarding step is pending.
// Returns true if the message was handled.
// Called from session worker - no locking needed.
func (h *OnboardingHandler) HandleMessage(session *UserSession, text string) bool {
	switch session.step {
	case stepAskName:
		h.handleName(session, text)
		return true
	case stepAskGrade:
		h.handleGrade(session, text)
		return true
	case stepAskSchool:
		h.handleSchool(session, text)
		return true
	default:
		return false
	}
}

func (h *OnboardingHandler) handleName(session *UserSession, text string) {
	name := strings.TrimSpace(text)
	if name == "" {
		session.reply(MsgWelcome)
		return
	}

	session.onboarding.Name = name
	session.step = stepAskGrade
	session.reply(MsgAskGrade, name)
}

func (h *OnboardingHandler) handleGrade(session *UserSession, text string) {
	grade := strings.TrimSpace(text)
	if !lunchbox.ValidGrade(grade) {
		session.reply(MsgInvalidGrade)
		return
	}

	session.onboarding.Grade = grade
	session.step = stepAskSchool
	session.reply(MsgAskSchool)
}

func (h *OnboardingHandler) handleSchool(session *UserSession, text string) {
	schoolCode := strings.TrimSpace(text)
	if schoolCode == "" {
		session.reply(MsgAskSchool)
		return
	}

	profile := &lunchbox.Profile{
		UserID:      session.userId,
		DisplayName: session.onboarding.Name,
		Grade:       session.onboarding.Grade,
		SchoolCode:  schoolCode,
	}

	if err := h.store.SaveProfile(profile); err != nil {
		session.replyWithError(err)
		return
	}

	session.profile = profile
	session.step = stepIdle
	session.onboarding = OnboardingState{}

	log.Info().
		Int64("user_id", profile.UserID).
		Str("grade", profile.Grade).
		Str("school_code", profile.SchoolCode).
		Msg("user onboarded")

	session.reply(MsgOnboardingDone, profile.DisplayName)
}
