package bot

// =============================================================================
// General messages
// =============================================================================

const (
	MsgUnexpectedErr = `שגיאה לא צפויה: %s`
	MsgStartPrompt   = "שלחו תמונה של קופסת האוכל כדי לסרוק אותה 📸"
	MsgCancelled     = "בוטל."
)

// =============================================================================
// Onboarding flow messages
// =============================================================================

const (
	MsgWelcome            = "היי! אני בוט קופסת האוכל 🍱\nאיך קוראים לך?"
	MsgAskGrade           = "נעים מאוד, %s! באיזו כיתה אתם? (א-ו)"
	MsgInvalidGrade       = "כיתה לא מוכרת. כתבו אות בין א ל-ו."
	MsgAskSchool          = "מה קוד בית הספר שלכם?"
	MsgOnboardingDone     = "מעולה, %s! שלחו תמונה של קופסת האוכל כדי להתחיל 📸"
	MsgOnboardingRequired = "קודם צריך להירשם. שלחו /start כדי להתחיל."
	MsgAlreadyOnboarded   = "כבר נרשמתם, %s. שלחו תמונה של קופסת האוכל כדי לסרוק 📸"
)

// =============================================================================
// Scan flow messages
// =============================================================================

const (
	MsgAnalyzing      = "רגע, מזהה את הפריטים בקופסה... 🔎"
	MsgAnalyzeFailed  = "שגיאה בזיהוי הפריטים. אפשר להוסיף פריטים עם /add או לשלוח תמונה חדשה."
	MsgNoItemsFound   = "לא זיהיתי פריטים בתמונה. אפשר להוסיף אותם עם /add."
	MsgDownloadFailed = "שגיאה בהורדת התמונה. נסו שוב."
	MsgItemListHeader = "זיהיתי את הפריטים האלה:"
	MsgItemListHelp   = "/add להוספה, /remove להסרה, /save לשמירה, /cancel לביטול"

	MsgAddUsage         = "שימוש: `/add <שם פריט>`"
	MsgRemoveUsage      = "שימוש: `/remove <מספר פריט>`"
	MsgRemoveOutOfRange = "אין פריט מספר %d ברשימה"
	MsgNoActiveScan     = "אין סריקה פעילה. שלחו תמונה כדי להתחיל."

	MsgEmptyItemList  = "נא להוסיף לפחות פריט אחד"
	MsgScanSaved      = "הקופסה נשמרה! 🎉 אפשר להציע החלפה עם /offer"
	MsgScanSaveFailed = "שגיאה בשמירה. נסו שוב."
	MsgScanExists     = "כבר סרקתם קופסה היום. שלחו /today כדי לראות אותה."

	MsgNoScanToday = "עדיין לא סרקתם את קופסת האוכל היום. שלחו תמונה קודם 📸"
	MsgTodayScan   = "הקופסה של היום:"
)

// =============================================================================
// Trade offer messages
// =============================================================================

const (
	MsgOfferPickItem   = "מה תרצו להציע להחלפה?"
	MsgOfferAskMessage = "רוצים להוסיף הודעה להצעה? כתבו אותה, או שלחו /skip לדלג."
	MsgOfferCreated    = "ההצעה פורסמה! 🤝"
	MsgOfferFailed     = "שגיאה בפרסום ההצעה. נסו שוב."
	MsgOfferStale      = "ההצעה כבר לא בתוקף. התחילו שוב עם /offer."

	MsgMarketEmpty  = "אין כרגע הצעות החלפה בבית הספר שלכם."
	MsgMarketHeader = "*הצעות החלפה בבית הספר:*"
)
