package respond

import users "stride/internal/services/users/domain"

type key struct {
	kind EventKind
	p    users.Personality
}

// voices maps each personality to its synthesis voice
var voices = map[users.Personality]string{
	users.PersonalityGentle:     "aria_soft",
	users.PersonalitySupportive: "aria_warm",
	users.PersonalityDirect:     "nolan_plain",
	users.PersonalityAssertive:  "nolan_firm",
	users.PersonalityToughLove:  "drill_low",
}

// emotions labels the delivery per event and personality
var emotions = map[key]string{
	{EventCheckin, users.PersonalityGentle}:     "calm",
	{EventCheckin, users.PersonalitySupportive}: "friendly",
	{EventCheckin, users.PersonalityDirect}:     "neutral",
	{EventCheckin, users.PersonalityAssertive}:  "firm",
	{EventCheckin, users.PersonalityToughLove}:  "gruff",

	{EventCheckinWithStreak, users.PersonalityGentle}:     "warm",
	{EventCheckinWithStreak, users.PersonalitySupportive}: "encouraging",
	{EventCheckinWithStreak, users.PersonalityDirect}:     "neutral",
	{EventCheckinWithStreak, users.PersonalityAssertive}:  "firm",
	{EventCheckinWithStreak, users.PersonalityToughLove}:  "gruff",

	// celebrations always synthesize cheerful, whatever the register
	{EventCelebration, users.PersonalityGentle}:     "cheerful",
	{EventCelebration, users.PersonalitySupportive}: "cheerful",
	{EventCelebration, users.PersonalityDirect}:     "cheerful",
	{EventCelebration, users.PersonalityAssertive}:  "cheerful",
	{EventCelebration, users.PersonalityToughLove}:  "cheerful",

	{EventStruggle, users.PersonalityGentle}:     "concerned",
	{EventStruggle, users.PersonalitySupportive}: "concerned",
	{EventStruggle, users.PersonalityDirect}:     "serious",
	{EventStruggle, users.PersonalityAssertive}:  "stern",
	{EventStruggle, users.PersonalityToughLove}:  "stern",
}

// templates holds per-locale variant lists; args per kind:
//
//	checkin             greeting, tracker
//	checkin_with_streak greeting, tracker, streak
//	celebration         milestone, tracker
//	struggle            tracker, misses
var templates = map[string]map[key][]string{
	"en": {
		{EventCheckin, users.PersonalityGentle}: {
			"%s. [calm] Whenever you're ready, how did %s go today?",
			"%s. No rush at all, just checking in on %s.",
		},
		{EventCheckin, users.PersonalitySupportive}: {
			"%s! [friendly] How did %s go today? You've got this.",
			"%s! Quick check-in on %s whenever you have a moment.",
		},
		{EventCheckin, users.PersonalityDirect}: {
			"%s. Did you do %s today?",
			"%s. Status on %s?",
		},
		{EventCheckin, users.PersonalityAssertive}: {
			"%s. Time to log %s. Done or not?",
			"%s. %s needs an answer. Which is it?",
		},
		{EventCheckin, users.PersonalityToughLove}: {
			"%s. <sigh> You know the drill. %s, yes or no?",
			"%s. No excuses today. Did %s happen?",
		},

		{EventCheckinWithStreak, users.PersonalityGentle}: {
			"%s. [warm] %s is at a lovely %d-day run. How did today go?",
			"%s. You've kept %s going %d days now. Today?",
		},
		{EventCheckinWithStreak, users.PersonalitySupportive}: {
			"%s! %s is on a %d-day streak, let's keep it rolling. How was today?",
			"%s! Day %[3]d of %[2]s coming up. Did it happen?",
		},
		{EventCheckinWithStreak, users.PersonalityDirect}: {
			"%s. %s: %d days running. Today?",
			"%s. Streak on %s is %d. Log today.",
		},
		{EventCheckinWithStreak, users.PersonalityAssertive}: {
			"%s. %s has %d days banked. Don't break it now.",
			"%s. Protect the %s streak. %d days and counting.",
		},
		{EventCheckinWithStreak, users.PersonalityToughLove}: {
			"%s. %s, %d days. Streaks die in one lazy evening. Report.",
			"%s. %[3]d days into %[2]s and this is where people quit. Not you.",
		},

		{EventCelebration, users.PersonalityGentle}: {
			"[delighted] %d days of %s! That is genuinely wonderful. 🌱",
			"%d whole days of %s. <chuckle> Quietly proud of you. ✨",
		},
		{EventCelebration, users.PersonalitySupportive}: {
			"[excited] %d days of %s! Huge milestone, you earned this! 🎉",
			"%d days straight on %s! <cheer> That's the stuff! 🎉",
		},
		{EventCelebration, users.PersonalityDirect}: {
			"%d days of %s. Milestone reached.",
			"%[2]s has hit %[1]d days. Noted and logged.",
		},
		{EventCelebration, users.PersonalityAssertive}: {
			"[proud] %d days of %s. That's discipline. Keep the pressure on!",
			"%d days on %s. Strong. Now raise the bar!",
		},
		{EventCelebration, users.PersonalityToughLove}: {
			"%d days of %s. <grunt> Fine, that's actually impressive!",
			"%d days on %s. Don't get comfortable, but yes, well done!",
		},

		{EventStruggle, users.PersonalityGentle}: {
			"[concerned] I noticed %s has slipped for %d days. Anything making it hard right now?",
			"%s has been quiet for %d days. Be kind to yourself, and tell me what's up?",
		},
		{EventStruggle, users.PersonalitySupportive}: {
			"Hey, %s has gone %d days without a check-in. Want to restart small today?",
			"%[2]d days off %[1]s happens to everyone. What would make today a win?",
		},
		{EventStruggle, users.PersonalityDirect}: {
			"%s: %d days missed. What's the blocker?",
			"No %s for %d days. Identify the problem.",
		},
		{EventStruggle, users.PersonalityAssertive}: {
			"%s has slipped %d days. That trend stops today. What's the plan?",
			"%[2]d missed days on %[1]s. Decide right now: recommit or drop it.",
		},
		{EventStruggle, users.PersonalityToughLove}: {
			"<sigh> %s. %d days. You didn't forget, you chose. Choose differently tonight.",
			"%[2]d days of nothing on %[1]s. The streak you're building now is the wrong one.",
		},
	},
	"es": {
		{EventCheckin, users.PersonalityGentle}: {
			"%s. [calm] Cuando quieras, ¿cómo fue %s hoy?",
		},
		{EventCheckin, users.PersonalitySupportive}: {
			"%s! ¿Cómo fue %s hoy? ¡Tú puedes!",
		},
		{EventCheckin, users.PersonalityDirect}: {
			"%s. ¿Hiciste %s hoy?",
		},
		{EventCheckin, users.PersonalityAssertive}: {
			"%s. Toca registrar %s. ¿Hecho o no?",
		},
		{EventCheckin, users.PersonalityToughLove}: {
			"%s. Ya sabes cómo va esto. %s, ¿sí o no?",
		},
		{EventCheckinWithStreak, users.PersonalityGentle}: {
			"%s. [warm] %s lleva %d días seguidos. ¿Y hoy?",
		},
		{EventCheckinWithStreak, users.PersonalitySupportive}: {
			"%s! %s lleva una racha de %d días. ¿Cómo fue hoy?",
		},
		{EventCheckinWithStreak, users.PersonalityDirect}: {
			"%s. %s: %d días seguidos. ¿Hoy?",
		},
		{EventCheckinWithStreak, users.PersonalityAssertive}: {
			"%s. %s lleva %d días. No la rompas ahora.",
		},
		{EventCheckinWithStreak, users.PersonalityToughLove}: {
			"%s. %s, %d días. Las rachas mueren en una noche floja. Reporta.",
		},
		{EventCelebration, users.PersonalityGentle}: {
			"[delighted] ¡%d días de %s! Qué maravilla. 🌱",
		},
		{EventCelebration, users.PersonalitySupportive}: {
			"[excited] ¡%d días de %s! ¡Gran hito! 🎉",
		},
		{EventCelebration, users.PersonalityDirect}: {
			"%d días de %s. Hito alcanzado.",
		},
		{EventCelebration, users.PersonalityAssertive}: {
			"[proud] %d días de %s. Eso es disciplina. ¡Sigue así!",
		},
		{EventCelebration, users.PersonalityToughLove}: {
			"%d días de %s. <grunt> Vale, eso sí impresiona!",
		},
		{EventStruggle, users.PersonalityGentle}: {
			"[concerned] Veo que %s lleva %d días parado. ¿Algo lo está haciendo difícil?",
		},
		{EventStruggle, users.PersonalitySupportive}: {
			"Oye, %s lleva %d días sin registro. ¿Retomamos con algo pequeño hoy?",
		},
		{EventStruggle, users.PersonalityDirect}: {
			"%s: %d días perdidos. ¿Cuál es el bloqueo?",
		},
		{EventStruggle, users.PersonalityAssertive}: {
			"%s lleva %d días caído. Eso termina hoy. ¿Cuál es el plan?",
		},
		{EventStruggle, users.PersonalityToughLove}: {
			"%s. %d días. No lo olvidaste, lo elegiste. Elige distinto esta noche.",
		},
	},
}
