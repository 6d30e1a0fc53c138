package lunchbox

import "time"

// DateFormat is the calendar-date serialization used for scan dates.
// Date granularity (not timestamps) is what gates trade eligibility.
const DateFormat = "2006-01-02"

// LocalDate formats t as the caller's local calendar date.
func LocalDate(t time.Time) string {
	return t.Format(DateFormat)
}

// Scan is one committed lunchbox: the captured image plus its item list,
// scoped to one owner and one calendar day. Scans are inserted once and never
// mutated by the scan flow.
type Scan struct {
	ID       string
	OwnerID  int64
	ScanDate string // YYYY-MM-DD, the owner's local date at commit time
	ImageURL string
	Items    []FoodItem
	IsActive bool
}

// TradeOffer is a barter offer for one item out of a committed scan.
type TradeOffer struct {
	ID        string
	CreatorID int64
	ScanID    string
	ItemName  string
	Message   string
	Status    string
	CreatedAt time.Time
}

// OfferStatusActive marks an offer that is open on the marketplace.
const OfferStatusActive = "active"

// Profile is the identity a scan or offer belongs to.
type Profile struct {
	UserID      int64
	DisplayName string
	Grade       string
	SchoolCode  string
}

// Grades are the school grades offered during onboarding.
var Grades = []string{"א", "ב", "ג", "ד", "ה", "ו"}

// ValidGrade reports whether g is one of the known school grades.
func ValidGrade(g string) bool {
	for _, grade := range Grades {
		if g == grade {
			return true
		}
	}
	return false
}
